package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"twii/internal/apperror"
)

// Error codes returned in the error envelope
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the error envelope:
// {"error": {"code": "ERROR_CODE", "message": "Human readable message"}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("encode response")
		}
	}
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, MessageResponse{Message: message})
}

func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// WriteAppError maps the error's kind to a status. Internal errors are
// logged with their cause and reach the client as a generic message.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status, code := statusFor(kind)

	if kind == apperror.Internal {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		WriteError(w, status, code, "Internal server error")
		return
	}
	WriteError(w, status, code, apperror.Message(err))
}

func statusFor(kind apperror.Kind) (int, string) {
	switch kind {
	case apperror.BadRequest:
		return http.StatusBadRequest, ErrCodeBadRequest
	case apperror.Unauthorized:
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case apperror.Forbidden:
		return http.StatusForbidden, ErrCodeForbidden
	case apperror.NotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case apperror.Conflict:
		return http.StatusConflict, ErrCodeConflict
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// DecodeJSON reads a single JSON object into dst. An empty body leaves dst untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.New(apperror.BadRequest, "Invalid request body")
	}
	return nil
}

// QueryInt parses a query parameter, returning 0 when absent or malformed.
func QueryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

// QueryBool parses a query parameter, returning def when absent or malformed.
func QueryBool(r *http.Request, name string, def bool) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return b
}

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// SetAuthCookie stores the session token in an httpOnly, SameSite=Lax cookie.
func SetAuthCookie(w http.ResponseWriter, opts CookieOptions, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		Expires:  time.Now().Add(opts.MaxAge),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
