package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookhub/database"
	"bookhub/internal/config"
	"bookhub/internal/logger"
	"bookhub/internal/microservices/http-api/handler"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 2. Logger
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("could not initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Log

	// 3. Connect to the database
	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Session backend
	sessions, closeSessions, err := newSessionStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeSessions()

	// 5. Services
	userRepo := repository.NewUserRepository(db)
	svcs := handler.Services{
		Auth:      service.NewAuthService(userRepo, sessions, cfg),
		Favorites: service.NewFavoriteService(repository.NewFavoriteRepository(db), userRepo),
		Ratings:   service.NewRatingService(repository.NewRatingRepository(db), userRepo, cfg.RatingsListLimit),
	}

	// 6. Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := handler.NewRouter(svcs, handler.RouterOptions{
		Logger:        log,
		LoginLimiter:  middleware.NewIPRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst),
		EnableMetrics: cfg.PrometheusEnabled,
		HealthCheck: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Server running", "addr", srv.Addr, "tls", cfg.TLSEnabled, "sessions", cfg.SessionBackend)
		if cfg.TLSEnabled {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// newSessionStore picks the session backend named by SESSION_BACKEND
func newSessionStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (repository.SessionStore, func(), error) {
	switch cfg.SessionBackend {
	case "database":
		return repository.NewDBSessionStore(db), func() {}, nil
	case "redis":
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisSessionStore(client), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
