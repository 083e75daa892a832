package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nazmulhossain/shopdesk-backend/internal/audit"
	"github.com/nazmulhossain/shopdesk-backend/internal/courier"
	"github.com/nazmulhossain/shopdesk-backend/internal/cron"
	"github.com/nazmulhossain/shopdesk-backend/internal/orders"
	"github.com/nazmulhossain/shopdesk-backend/pkg/config"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
	"github.com/nazmulhossain/shopdesk-backend/pkg/metrics"
	"github.com/nazmulhossain/shopdesk-backend/pkg/migrate"
	"github.com/nazmulhossain/shopdesk-backend/pkg/outbox"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pathao"
	"github.com/nazmulhossain/shopdesk-backend/pkg/redis"
)

const lockKeyFormat = "shopdesk:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pathaoClient, err := pathao.NewClient(cfg.Pathao)
	if err != nil {
		logg.Error(context.Background(), "failed to create pathao client", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	auditor := audit.NewRecorder(dbClient.DB(), logg)
	courierMetrics := metrics.NewCourierMetrics(prometheus.DefaultRegisterer)

	reconciler, err := courier.NewReconciler(dbClient, ordersRepo, pathaoClient, events, auditor, courierMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create courier reconciler", err)
		os.Exit(1)
	}

	syncJob, err := cron.NewCourierSyncJob(cron.CourierSyncJobParams{
		Logger:     logg,
		Orders:     ordersRepo,
		Reconciler: reconciler,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create courier sync job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outbox.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(syncJob, retentionJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
