package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"moderator/internal/cache"
	"moderator/internal/classifier"
	"moderator/internal/config"
	"moderator/internal/database"
	"moderator/internal/handlers"
	"moderator/internal/jobs"
	"moderator/internal/log"
	"moderator/internal/metrics"
	"moderator/internal/notifier"
	"moderator/internal/queue"
	"moderator/internal/repository"
	"moderator/internal/server"
	"moderator/internal/service"
	"moderator/internal/storage"
	"moderator/internal/tasks"
)

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
	if err := database.Migrate(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	promMetrics := metrics.New(registry)

	requestRepo := repository.NewRequestRepository(dbPool)
	resultRepo := repository.NewResultRepository(dbPool)
	notificationRepo := repository.NewNotificationRepository(dbPool)
	analyticsRepo := repository.NewAnalyticsRepository(dbPool)

	contentClassifier := classifier.New(cfg.LLM, logger)
	slackAlerter := notifier.NewSlack(cfg.Alerts.SlackWebhookURL, logger)
	emailAlerter := notifier.NewEmail(cfg.Alerts, logger)
	producer := queue.NewProducer(redisClient, cfg.Redis.Stream)

	moderationService := service.NewModerationService(
		requestRepo,
		resultRepo,
		notificationRepo,
		contentClassifier,
		slackAlerter,
		emailAlerter,
		producer,
		promMetrics,
		logger,
	)
	analyticsService := service.NewAnalyticsService(analyticsRepo)

	if cfg.Storage.Endpoint != "" {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		moderationService.AttachArchive(objectStore)
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, moderationService, analyticsService, dbPool, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, registry)

	scheduler := jobs.NewScheduler(requestRepo, promMetrics, cfg.Jobs, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	// The deferred image pipeline runs in-process; cmd/worker exists for
	// running it separately.
	consumer := queue.NewConsumer(
		redisClient,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		30*time.Second,
		logger,
		tasks.NewProcessor(moderationService, promMetrics, logger),
	)
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	go func() {
		if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("queue consumer stopped")
		}
	}()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, stopConsumer, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, stopConsumer context.CancelFunc, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	stopConsumer()
	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
