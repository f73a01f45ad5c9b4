// Package apperror defines the typed error kinds returned by services.
// Handlers translate a Kind into an HTTP status; nothing below the
// transport layer knows about status codes.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	Forbidden
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a Kind, a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind and message, so package-level
// sentinels keep working with errors.Is after being re-wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BadRequestf(format string, args ...any) *Error {
	return Newf(BadRequest, format, args...)
}

func Unauthorizedf(format string, args ...any) *Error {
	return Newf(Unauthorized, format, args...)
}

func Forbiddenf(format string, args ...any) *Error {
	return Newf(Forbidden, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return Newf(NotFound, format, args...)
}

func Conflictf(format string, args ...any) *Error {
	return Newf(Conflict, format, args...)
}

// Wrap returns err unchanged when it already carries a Kind. Anything else
// becomes Internal with the cause attached for logging.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: Internal, Message: message, Err: err}
}

// KindOf reports the Kind carried by err, or Internal when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Message returns the client-facing message for err. Internal errors never
// expose their cause.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Kind == Internal && appErr.Message == "" {
			return "Internal server error"
		}
		return appErr.Message
	}
	return "Internal server error"
}
