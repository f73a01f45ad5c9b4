package handler

import (
	"net/http"

	"twii/internal/config"
	"twii/internal/httputil"
	"twii/internal/model"
	"twii/internal/service"
)

// AuthHandler serves registration, login and email verification.
type AuthHandler struct {
	authService *service.AuthService
	cookie      httputil.CookieOptions
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie: httputil.CookieOptions{
			Name:   cfg.CookieName,
			MaxAge: cfg.TokenTTL(),
			Secure: cfg.IsProduction(),
		},
	}
}

type userMessageResponse struct {
	Message string          `json:"message"`
	User    *model.SafeUser `json:"user"`
}

type loginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

// Register handles POST /auth/register (and POST /users).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, userMessageResponse{
		Message: "User registered successfully. Please check your email to verify your account.",
		User:    user,
	})
}

// Login handles POST /auth/login. The token is set as an httpOnly cookie for
// browsers and returned in the body for bearer clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	token, err := h.authService.Login(r.Context(), req)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.SetAuthCookie(w, h.cookie, token)
	httputil.WriteJSON(w, http.StatusOK, loginResponse{Message: "Login successful", AccessToken: token})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, _ model.Identity) {
	httputil.ClearAuthCookie(w, h.cookie)
	httputil.WriteMessage(w, http.StatusOK, "Logout successful")
}

// VerifyEmail handles GET /auth/verify-email?token=
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userMessageResponse{Message: "Email verified successfully", User: user})
}

// ResendVerification handles POST /auth/resend-verification.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req model.ResendVerificationRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	if err := h.authService.ResendVerification(r.Context(), req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Verification email sent successfully")
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, id model.Identity) {
	user, err := h.authService.Me(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
