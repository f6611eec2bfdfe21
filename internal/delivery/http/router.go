package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/delivery/http/middleware"
	"github.com/Harsh-BH/csvflag/internal/usecase"
)

// RouterDeps holds everything the HTTP layer needs.
type RouterDeps struct {
	SubmitUC        *usecase.SubmitJobUsecase
	GetJobUC        *usecase.GetJobUsecase
	FetchUC         *usecase.FetchArtifactUsecase
	Logger          *zap.Logger
	RateLimitPerMin int
	MaxUploadBytes  int64
	StreamInterval  time.Duration
	HealthChecks    map[string]HealthCheck
}

// NewRouter creates and configures the Gin router with all routes and
// middleware. ctx bounds background middleware work.
func NewRouter(ctx context.Context, deps *RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(deps.Logger))

	// Metrics endpoint (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/API")
	{
		// Health check (no rate limiting)
		healthHandler := NewHealthHandler(deps.HealthChecks, deps.Logger)
		api.GET("/health", healthHandler.Health)

		limited := api.Group("", middleware.RateLimiter(ctx, deps.RateLimitPerMin))

		fileHandler := NewFileHandler(deps.SubmitUC, deps.FetchUC, deps.Logger)
		limited.POST("/upload", middleware.BodySizeLimit(deps.MaxUploadBytes), fileHandler.Upload)
		limited.GET("/download/:id", fileHandler.Download)

		statusHandler := NewStatusHandler(deps.GetJobUC, deps.Logger)
		limited.GET("/status/:id", statusHandler.GetByID)

		// WebSocket for real-time updates
		wsHandler := NewWebSocketHandler(deps.GetJobUC, deps.StreamInterval, deps.Logger)
		limited.GET("/status/:id/stream", wsHandler.Stream)
	}

	return router
}
