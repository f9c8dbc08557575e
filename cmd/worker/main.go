package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"cityconnect/internal/cache"
	"cityconnect/internal/config"
	"cityconnect/internal/database"
	"cityconnect/internal/log"
	"cityconnect/internal/queue"
	"cityconnect/internal/repository"
	"cityconnect/internal/storage"
	"cityconnect/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.LogLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, "cityconnect-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init image store")
	}

	processor := tasks.NewProcessor(images, repository.NewImageRepository(dbPool), cfg.Worker.OrphanGrace, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)

	logger.Info().Str("stream", cfg.Worker.Stream).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped unexpectedly")
		os.Exit(1)
	}
	logger.Info().Msg("worker stopped")
}
