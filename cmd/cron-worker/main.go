package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/exhale-app/exhale-backend/internal/cron"
	"github.com/exhale-app/exhale-backend/internal/users"
	"github.com/exhale-app/exhale-backend/pkg/config"
	"github.com/exhale-app/exhale-backend/pkg/db"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/metrics"
	"github.com/exhale-app/exhale-backend/pkg/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "exhale-cron"}).
			Error(context.Background(), "loading config", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "exhale-cron",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	userRepo := users.NewRepository(dbClient.DB())
	userService, err := users.NewService(users.ServiceParams{Repo: userRepo, Log: logg})
	if err != nil {
		return err
	}

	registry := cron.NewRegistry()
	registry.Register(cron.NewEntitlementSweepJob(
		userService, logg, cfg.Cron.Interval, cfg.Cron.EntitlementGrace,
	))

	jobMetrics := metrics.NewCronJobMetrics(prometheus.NewRegistry())
	runner, err := cron.NewService(cron.ServiceParams{
		Registry: registry,
		Lock:     cron.NewRedisLock(redisClient, cfg.Cron.Interval),
		Log:      logg,
		Metrics:  jobMetrics,
		Tick:     cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	logg.Info(ctx, "cron worker started")
	return runner.Run(ctx)
}
