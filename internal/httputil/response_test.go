package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twii/internal/apperror"
)

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"bad request", apperror.New(apperror.BadRequest, "bad"), http.StatusBadRequest, ErrCodeBadRequest, "bad"},
		{"unauthorized", apperror.New(apperror.Unauthorized, "who"), http.StatusUnauthorized, ErrCodeUnauthorized, "who"},
		{"forbidden", apperror.New(apperror.Forbidden, "no"), http.StatusForbidden, ErrCodeForbidden, "no"},
		{"not found", apperror.New(apperror.NotFound, "gone"), http.StatusNotFound, ErrCodeNotFound, "gone"},
		{"conflict", apperror.New(apperror.Conflict, "dup"), http.StatusConflict, ErrCodeConflict, "dup"},
		{"wrapped internal hides cause", apperror.Wrap(errors.New("pq: password authentication failed"), "Failed"), http.StatusInternalServerError, ErrCodeInternal, "Internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteAppError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ana"}`))
	require.NoError(t, DecodeJSON(rec, req, &dst))
	assert.Equal(t, "ana", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	err := DecodeJSON(rec, req, &dst)
	assert.Equal(t, apperror.BadRequest, apperror.KindOf(err))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.NoError(t, DecodeJSON(rec, req, &dst))
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x&only=false", nil)
	assert.Equal(t, 5, QueryInt(req, "limit"))
	assert.Equal(t, 0, QueryInt(req, "bad"))
	assert.False(t, QueryBool(req, "only", true))
	assert.True(t, QueryBool(req, "missing", true))
}

func TestAuthCookies(t *testing.T) {
	opts := CookieOptions{Name: "auth_token", MaxAge: 7 * 24 * time.Hour, Secure: true}

	rec := httptest.NewRecorder()
	SetAuthCookie(rec, opts, "tok")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "auth_token", c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 604800, c.MaxAge)

	rec = httptest.NewRecorder()
	ClearAuthCookie(rec, opts)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.True(t, cleared[0].MaxAge < 0)
}
