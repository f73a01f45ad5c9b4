package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"twii/internal/apperror"
	"twii/internal/httputil"
	"twii/internal/model"
)

// SessionResolver turns a bearer token into the caller's identity.
type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (model.Identity, error)
}

// Session extracts the caller from the auth cookie or, failing that, the
// Authorization header, and hands the identity to the handler as a parameter.
type Session struct {
	resolver   SessionResolver
	cookieName string
}

func NewSession(resolver SessionResolver, cookieName string) *Session {
	return &Session{resolver: resolver, cookieName: cookieName}
}

// Required rejects the request with 401 before the handler runs when there is
// no valid session.
func (s *Session) Required(next func(w http.ResponseWriter, r *http.Request, id model.Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.resolve(r)
		if err != nil {
			httputil.WriteAppError(w, r, err)
			return
		}
		next(w, r, id)
	}
}

// Optional runs the handler with a nil identity when the session is missing
// or invalid.
func (s *Session) Optional(next func(w http.ResponseWriter, r *http.Request, id *model.Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.resolve(r)
		if err != nil {
			if apperror.KindOf(err) == apperror.Internal {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("session lookup failed, continuing anonymously")
			}
			next(w, r, nil)
			return
		}
		next(w, r, &id)
	}
}

var errNoSession = apperror.New(apperror.Unauthorized, "Unauthorized")

// resolve tries the cookie token first and then the bearer token, so a stale
// cookie does not shadow a valid Authorization header. Internal failures stop
// the search.
func (s *Session) resolve(r *http.Request) (model.Identity, error) {
	tokens := tokensFromRequest(r, s.cookieName)
	if len(tokens) == 0 {
		return model.Identity{}, errNoSession
	}

	var err error
	for _, token := range tokens {
		var id model.Identity
		id, err = s.resolver.Authenticate(r.Context(), token)
		if err == nil {
			return id, nil
		}
		if apperror.KindOf(err) == apperror.Internal {
			return model.Identity{}, err
		}
	}
	return model.Identity{}, err
}

// TokenFromRequest prefers the cookie and falls back to "Authorization: Bearer".
func TokenFromRequest(r *http.Request, cookieName string) string {
	if tokens := tokensFromRequest(r, cookieName); len(tokens) > 0 {
		return tokens[0]
	}
	return ""
}

func tokensFromRequest(r *http.Request, cookieName string) []string {
	var tokens []string
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		if bearer := strings.TrimSpace(parts[1]); bearer != "" && (len(tokens) == 0 || tokens[0] != bearer) {
			tokens = append(tokens, bearer)
		}
	}
	return tokens
}
