package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"cityconnect/internal/cache"
	"cityconnect/internal/database"
	"cityconnect/internal/handlers"
	"cityconnect/internal/jobs"
	"cityconnect/internal/middleware"
	"cityconnect/internal/queue"
	"cityconnect/internal/realtime"
	"cityconnect/internal/repository"
	"cityconnect/internal/security"
	"cityconnect/internal/server"
	"cityconnect/internal/service"
	"cityconnect/internal/storage"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default command)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, "cityconnect-api")
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}()

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init image store: %w", err)
	}

	tokens, err := security.NewTokenManager(cfg.Security.SigningKeys, cfg.Security.TokenTTL)
	if err != nil {
		return err
	}

	producer := queue.NewProducer(redisClient, cfg.Worker.Stream)
	broker := realtime.NewBroker(redisClient)

	users := repository.NewUserRepository(dbPool)
	services := handlers.Services{
		Auth:          service.NewAuthService(users, tokens, logger),
		Posts:         service.NewPostService(repository.NewPostRepository(dbPool), producer, logger),
		Complaints:    service.NewComplaintService(repository.NewComplaintRepository(dbPool), logger),
		Reviews:       service.NewReviewService(repository.NewReviewRepository(dbPool), logger),
		Announcements: service.NewAnnouncementService(repository.NewAnnouncementRepository(dbPool), logger),
		Groups:        service.NewGroupService(repository.NewGroupRepository(dbPool), users, broker, logger),
		Moderation:    service.NewModerationService(repository.NewModerationRepository(dbPool)),
		Uploads:       service.NewUploadService(images, cfg.Storage.MaxUploadBytes, logger),
	}

	var authLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		store, err := middleware.NewRateLimitStore(redisClient)
		if err != nil {
			return err
		}
		if authLimit, err = middleware.RateLimit(store, cfg.RateLimit.Auth, logger); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		database.NewPoolCollector(dbPool),
	)

	handlerSet := handlers.NewHandlerSet(logger, handlers.Deps{
		Services:    services,
		Tokens:      tokens,
		Environment: cfg.Environment,
		AuthLimit:   authLimit,
		Stream:      broker,
		Database:    dbPool,
		Cache:       cache.Pinger{Client: redisClient},
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, middleware.NewMetrics(registry), registry)

	scheduler := jobs.NewScheduler(producer, cfg.Worker.SweepSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	scheduler.Stop(shutdownCtx)

	logger.Info().Msg("server exited cleanly")
	return nil
}
