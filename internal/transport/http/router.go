package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"twii/internal/handler"
	"twii/internal/httputil"
	authmw "twii/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	FollowHandler  *handler.FollowHandler
	FeedHandler    *handler.FeedHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	Session        *authmw.Session
	FrontendURL    string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s := cfg.Session

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Get("/verify-email", cfg.AuthHandler.VerifyEmail)
		r.Post("/resend-verification", cfg.AuthHandler.ResendVerification)
		r.Post("/logout", s.Required(cfg.AuthHandler.Logout))
		r.Get("/me", s.Required(cfg.AuthHandler.Me))
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", cfg.UserHandler.List)
		r.Post("/", cfg.AuthHandler.Register)

		r.Get("/{id}", s.Optional(cfg.UserHandler.GetProfile))
		r.Patch("/{id}", s.Required(cfg.UserHandler.Update))
		r.Delete("/{id}", s.Required(cfg.UserHandler.Delete))
		r.Delete("/{id}/avatar", s.Required(cfg.UserHandler.RemoveAvatar))

		r.Post("/{id}/follow", s.Required(cfg.FollowHandler.Follow))
		r.Post("/{id}/unfollow", s.Required(cfg.FollowHandler.Unfollow))
		r.Get("/{id}/followers", cfg.FollowHandler.GetFollowers)
		r.Get("/{id}/following", cfg.FollowHandler.GetFollowing)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", s.Optional(cfg.PostHandler.List))
		r.Post("/", s.Required(cfg.PostHandler.Create))

		// Static segments are matched before {id}.
		r.Get("/feed", s.Required(cfg.FeedHandler.GetFeed))
		r.Patch("/comments/{id}", s.Required(cfg.CommentHandler.Update))
		r.Delete("/comments/{id}", s.Required(cfg.CommentHandler.Delete))

		r.Get("/{id}", s.Optional(cfg.PostHandler.GetByID))
		r.Patch("/{id}", s.Required(cfg.PostHandler.Update))
		r.Delete("/{id}", s.Required(cfg.PostHandler.Delete))
		r.Post("/{id}/like", s.Required(cfg.PostHandler.Like))
		r.Post("/{id}/unlike", s.Required(cfg.PostHandler.Unlike))
		r.Get("/{id}/comments", cfg.CommentHandler.List)
		r.Post("/{id}/comments", s.Required(cfg.CommentHandler.Create))
	})

	return r
}
