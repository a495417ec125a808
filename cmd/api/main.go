package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/exhale-app/exhale-backend/api/controllers"
	"github.com/exhale-app/exhale-backend/api/controllers/webhooks"
	"github.com/exhale-app/exhale-backend/api/middleware"
	"github.com/exhale-app/exhale-backend/api/routes"
	authsvc "github.com/exhale-app/exhale-backend/internal/auth"
	"github.com/exhale-app/exhale-backend/internal/cravings"
	"github.com/exhale-app/exhale-backend/internal/entitlements"
	"github.com/exhale-app/exhale-backend/internal/journal"
	"github.com/exhale-app/exhale-backend/internal/streaks"
	"github.com/exhale-app/exhale-backend/internal/users"
	"github.com/exhale-app/exhale-backend/pkg/config"
	"github.com/exhale-app/exhale-backend/pkg/db"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/metrics"
	"github.com/exhale-app/exhale-backend/pkg/migrate"
	"github.com/exhale-app/exhale-backend/pkg/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "exhale-api"}).
			Error(context.Background(), "loading config", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "exhale-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)
	streakMetrics := metrics.NewStreakMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	streakRepo := streaks.NewRepository(dbClient.DB())
	entitlementRepo := entitlements.NewRepository(dbClient.DB())
	cravingRepo := cravings.NewRepository(dbClient.DB())
	journalRepo := journal.NewRepository(dbClient.DB())

	userService, err := users.NewService(users.ServiceParams{Repo: userRepo, Log: logg})
	if err != nil {
		return err
	}
	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Users:    userRepo,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Log:      logg,
	})
	if err != nil {
		return err
	}
	streakService, err := streaks.NewService(streaks.ServiceParams{
		Repo:    streakRepo,
		Users:   userRepo,
		Log:     logg,
		Metrics: streakMetrics,
	})
	if err != nil {
		return err
	}
	entitlementService, err := entitlements.NewService(entitlements.ServiceParams{
		Repo:  entitlementRepo,
		Users: userRepo,
		Tx:    dbClient,
		Log:   logg,
	})
	if err != nil {
		return err
	}
	cravingService, err := cravings.NewService(cravings.ServiceParams{Repo: cravingRepo, Log: logg})
	if err != nil {
		return err
	}
	journalService, err := journal.NewService(journal.ServiceParams{Repo: journalRepo, Log: logg})
	if err != nil {
		return err
	}

	limiter := middleware.NewAuthRateLimiter(redisClient, cfg.AuthRateLimit, logg)

	revenueCatController, err := webhooks.NewRevenueCatController(webhooks.RevenueCatControllerParams{
		Service:        entitlementService,
		Idempotency:    redisClient,
		Metrics:        webhookMetrics,
		Log:            logg,
		AuthSecret:     cfg.Billing.RevenueCatAuthSecret,
		IdempotencyTTL: cfg.Billing.WebhookIdempotencyTTL,
	})
	if err != nil {
		return err
	}
	lemonSqueezyController, err := webhooks.NewLemonSqueezyController(webhooks.LemonSqueezyControllerParams{
		Service:        entitlementService,
		Idempotency:    redisClient,
		Metrics:        webhookMetrics,
		Log:            logg,
		SigningSecret:  cfg.Billing.LemonSqueezySigningSecret,
		IdempotencyTTL: cfg.Billing.WebhookIdempotencyTTL,
	})
	if err != nil {
		return err
	}

	router := routes.New(routes.Params{
		Health:       controllers.NewHealthController(dbClient, redisClient, logg),
		Auth:         controllers.NewAuthController(authService, limiter, logg),
		Profile:      controllers.NewProfileController(userService, logg),
		Streaks:      controllers.NewStreaksController(streakService, logg),
		Cravings:     controllers.NewCravingsController(cravingService, logg),
		Journal:      controllers.NewJournalController(journalService, logg),
		RevenueCat:   revenueCatController,
		LemonSqueezy: lemonSqueezyController,
		RateLimiter:  limiter,
		JWT:          cfg.JWT,
		Log:          logg,
		Prometheus:   registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "api server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logg.Info(shutdownCtx, "shutting down api server")
	return server.Shutdown(shutdownCtx)
}
