package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/exhale-app/exhale-backend/api/responses"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

// Pinger is any dependency with a health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and readiness.
type HealthController struct {
	db    Pinger
	redis Pinger
	log   *logger.Logger
}

func NewHealthController(db, redis Pinger, logg *logger.Logger) *HealthController {
	return &HealthController{db: db, redis: redis, log: logg}
}

// Live always succeeds while the process is serving.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the datastore dependencies with a short deadline.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"db": "ok", "redis": "ok"}
	healthy := true

	if err := c.db.Ping(ctx); err != nil {
		checks["db"] = "unavailable"
		healthy = false
		c.log.Error(ctx, "db health check failed", err)
	}
	if err := c.redis.Ping(ctx); err != nil {
		checks["redis"] = "unavailable"
		healthy = false
		c.log.Error(ctx, "redis health check failed", err)
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	responses.WriteSuccess(w, status, checks)
}
