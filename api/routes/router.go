package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/exhale-app/exhale-backend/api/controllers"
	"github.com/exhale-app/exhale-backend/api/controllers/webhooks"
	"github.com/exhale-app/exhale-backend/api/middleware"
	"github.com/exhale-app/exhale-backend/pkg/config"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

// Params collects everything the router mounts.
type Params struct {
	Health       *controllers.HealthController
	Auth         *controllers.AuthController
	Profile      *controllers.ProfileController
	Streaks      *controllers.StreaksController
	Cravings     *controllers.CravingsController
	Journal      *controllers.JournalController
	RevenueCat   *webhooks.RevenueCatController
	LemonSqueezy *webhooks.LemonSqueezyController
	RateLimiter  *middleware.AuthRateLimiter
	JWT          config.JWTConfig
	Log          *logger.Logger
	Prometheus   prometheus.Gatherer
}

// New assembles the HTTP router.
func New(params Params) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(params.Log))
	r.Use(middleware.Recoverer(params.Log))
	r.Use(middleware.Logging(params.Log))

	r.Get("/healthz", params.Health.Live)
	r.Get("/readyz", params.Health.Ready)
	if params.Prometheus != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Prometheus, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(params.RateLimiter.LimitRegisterByIP).Post("/register", params.Auth.Register)
			r.With(params.RateLimiter.LimitLoginByIP).Post("/login", params.Auth.Login)
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/revenuecat", params.RevenueCat.Handle)
			r.Post("/lemonsqueezy", params.LemonSqueezy.Handle)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(params.JWT, params.Log))

			r.Get("/me", params.Profile.Get)
			r.Patch("/me", params.Profile.Update)

			r.Route("/streaks", func(r chi.Router) {
				r.Post("/confirm", params.Streaks.Confirm)
				r.Get("/", params.Streaks.Summary)
				r.Get("/confirmations", params.Streaks.Confirmations)
			})

			r.Route("/cravings", func(r chi.Router) {
				r.Post("/", params.Cravings.Create)
				r.Get("/", params.Cravings.List)
				r.Get("/stats", params.Cravings.Stats)
			})

			r.Route("/journal", func(r chi.Router) {
				r.Post("/", params.Journal.Create)
				r.Get("/", params.Journal.List)
				r.Patch("/{id}", params.Journal.Update)
				r.Delete("/{id}", params.Journal.Delete)
			})
		})
	})

	return r
}
