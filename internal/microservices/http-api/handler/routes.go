package handler

import (
	"fmt"
	"net/http"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services are the dependencies the HTTP API serves
type Services struct {
	Auth      service.AuthService
	Favorites service.FavoriteService
	Ratings   service.RatingService
}

// RouterOptions tune the ambient middleware
type RouterOptions struct {
	Logger        *zap.SugaredLogger
	LoginLimiter  *middleware.IPRateLimiter
	EnableMetrics bool
	HealthCheck   func() error
}

// NewRouter wires every route of the API onto a fresh gin engine
func NewRouter(svcs Services, opts RouterOptions) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(middleware.LoggingMiddleware(opts.Logger))
	}
	if opts.EnableMetrics {
		r.Use(middleware.MetricsMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/check-conn", func(c *gin.Context) {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.AuthMiddleware(svcs.Auth)

	authHandler := NewAuthHandler(svcs.Auth)
	authGroup := r.Group("/auth")
	{
		var limited []gin.HandlerFunc
		if opts.LoginLimiter != nil {
			limited = append(limited, middleware.RateLimitMiddleware(opts.LoginLimiter))
		}
		authGroup.POST("/register", append(limited, authHandler.Register)...)
		authGroup.POST("/login", append(limited, authHandler.Login)...)
		authGroup.POST("/logout", requireAuth, authHandler.Logout)
	}

	public := r.Group("/api")
	protected := r.Group("/api", requireAuth)

	NewFavoriteHandler(svcs.Favorites).RegisterRoutes(protected.Group("/favorites"))
	NewRatingHandler(svcs.Ratings).RegisterRoutes(public, protected)

	return r, nil
}
