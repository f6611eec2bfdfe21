package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harsh-BH/csvflag/internal/config"
	handler "github.com/Harsh-BH/csvflag/internal/delivery/http"
	"github.com/Harsh-BH/csvflag/internal/pool"
	"github.com/Harsh-BH/csvflag/internal/publisher"
	"github.com/Harsh-BH/csvflag/internal/repository"
	"github.com/Harsh-BH/csvflag/internal/repository/memory"
	redisrepo "github.com/Harsh-BH/csvflag/internal/repository/redis"
	"github.com/Harsh-BH/csvflag/internal/storage"
	"github.com/Harsh-BH/csvflag/internal/sweeper"
	"github.com/Harsh-BH/csvflag/internal/transform"
	"github.com/Harsh-BH/csvflag/internal/usecase"
	"github.com/Harsh-BH/csvflag/internal/validator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting csvflag server")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
	logger.Info("csvflag server stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage root on the local filesystem
	store, err := storage.NewArtifactStore(afero.NewOsFs(), cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	logger.Info("Storage ready", zap.String("dir", store.Root()))

	checks := map[string]handler.HealthCheck{
		"storage": func(context.Context) error { return store.Ping() },
	}

	// Job registry
	var jobRepo repository.JobRegistry
	switch cfg.Registry.Backend {
	case config.BackendRedis:
		redisOpts, err := goredis.ParseURL(cfg.Registry.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := goredis.NewClient(redisOpts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("Connected to Redis")

		jobRepo = redisrepo.NewRedisJobRegistry(rdb, cfg.Retention.Window)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	default:
		jobRepo = memory.NewJobRegistry()
	}

	// Job-finished events
	var pub publisher.Publisher = publisher.Noop{}
	if cfg.RabbitMQ.URL != "" {
		pub, err = publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
		if err != nil {
			return fmt.Errorf("init rabbitmq publisher: %w", err)
		}
		logger.Info("Connected to RabbitMQ")
	}
	defer pub.Close()

	// Pipeline
	rows := transform.NewRowTransformer(validator.IsEmail, cfg.Transform.Uppercase)
	files := transform.NewFileTransformer(rows, cfg.Transform.FlagColumn)
	processUC := usecase.NewProcessJobUsecase(jobRepo, store, files, pub, cfg.Worker.RetainFailed, logger)

	workerPool := pool.NewWorkerPool(cfg.Worker.PoolSize, cfg.Worker.QueueSize, processUC, cfg.Worker.JobTimeout, logger)
	workerPool.Start(ctx)

	submitUC := usecase.NewSubmitJobUsecase(jobRepo, store, workerPool, cfg.Storage.MaxUploadBytes, logger)
	getJobUC := usecase.NewGetJobUsecase(jobRepo, logger)
	fetchUC := usecase.NewFetchArtifactUsecase(getJobUC, store, logger)

	sweep := sweeper.New(store.Fs(), store.Root(), cfg.Retention.Window, cfg.Retention.SweepInterval, logger,
		sweeper.WithSweepOnStart(cfg.Retention.SweepOnStart),
	)

	router := handler.NewRouter(ctx, &handler.RouterDeps{
		SubmitUC:        submitUC,
		GetJobUC:        getJobUC,
		FetchUC:         fetchUC,
		Logger:          logger,
		RateLimitPerMin: cfg.Server.RateLimit,
		MaxUploadBytes:  cfg.Storage.MaxUploadBytes,
		HealthChecks:    checks,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sweep.Run(gctx)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()

	// The HTTP server no longer schedules; cancel in-flight work and wait.
	stop()
	workerPool.Stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
