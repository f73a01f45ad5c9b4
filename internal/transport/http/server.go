package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"twii/internal/auth"
	"twii/internal/config"
	"twii/internal/database"
	"twii/internal/handler"
	"twii/internal/logger"
	"twii/internal/mail"
	"twii/internal/queue"
	"twii/internal/redis"
	"twii/internal/repository"
	"twii/internal/service"
	"twii/internal/storage"
	authmw "twii/internal/transport/http/middleware"
	"twii/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// 3. Outbound services
	var images service.ImageStore = storage.Disabled{}
	if r2, err := storage.NewR2Store(ctx, cfg); err != nil {
		log.Warn().Err(err).Msg("image uploads disabled")
	} else {
		images = r2
	}

	mailer, err := mail.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure mailer: %w", err)
	}

	var (
		publisher queue.Publisher
		workers   *worker.Manager
	)
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to configure redis: %w", err)
		}
		defer rdb.Close()

		if err := rdb.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		publisher = queue.NewPublisher(rdb.Client)
		workers = worker.NewManager(queue.NewConsumer(rdb.Client), worker.NewHandler(images), worker.DefaultManagerConfig())
		if err := workers.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer workers.Stop()
	} else {
		log.Info().Msg("REDIS_URL not set, image cleanup runs inline")
	}

	// 4. Wire repositories, services and handlers
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	follows := repository.NewFollowRepository(db)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL())
	cleaner := service.NewImageCleaner(images, publisher)

	authService := service.NewAuthService(users, auth.NewBcryptHasher(0), tokens, mailer, cfg)
	userService := service.NewUserService(users, posts, follows, images, cleaner)
	followService := service.NewFollowService(follows, users)
	postService := service.NewPostService(posts, comments, images, cleaner)
	commentService := service.NewCommentService(comments, posts, users)

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(authService, cfg),
		UserHandler:    handler.NewUserHandler(userService),
		FollowHandler:  handler.NewFollowHandler(followService),
		FeedHandler:    handler.NewFeedHandler(postService),
		PostHandler:    handler.NewPostHandler(postService),
		CommentHandler: handler.NewCommentHandler(commentService),
		Session:        authmw.NewSession(authService, cfg.CookieName),
		FrontendURL:    cfg.FrontendURL,
	})

	// 5. Serve until interrupted
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
