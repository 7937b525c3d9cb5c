package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"moderator/internal/cache"
	"moderator/internal/classifier"
	"moderator/internal/config"
	"moderator/internal/database"
	"moderator/internal/log"
	"moderator/internal/metrics"
	"moderator/internal/notifier"
	"moderator/internal/queue"
	"moderator/internal/repository"
	"moderator/internal/service"
	"moderator/internal/tasks"
)

// Standalone consumer for the deferred image pipeline. The API binary runs
// the same consumer in-process; both share one consumer group, so running
// extra workers only spreads the load.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	promMetrics := metrics.New(prometheus.NewRegistry())

	moderationService := service.NewModerationService(
		repository.NewRequestRepository(dbPool),
		repository.NewResultRepository(dbPool),
		repository.NewNotificationRepository(dbPool),
		classifier.New(cfg.LLM, logger),
		notifier.NewSlack(cfg.Alerts.SlackWebhookURL, logger),
		notifier.NewEmail(cfg.Alerts, logger),
		queue.NewProducer(redisClient, cfg.Redis.Stream),
		promMetrics,
		logger,
	)

	consumer := queue.NewConsumer(
		redisClient,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		30*time.Second,
		logger,
		tasks.NewProcessor(moderationService, promMetrics, logger),
	)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := consumer.Start(runCtx); err != nil && err != context.Canceled {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-runCtx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
