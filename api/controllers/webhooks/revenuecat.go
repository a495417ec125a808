package webhooks

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/exhale-app/exhale-backend/api/responses"
	"github.com/exhale-app/exhale-backend/internal/entitlements"
	"github.com/exhale-app/exhale-backend/pkg/enums"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/metrics"
	"github.com/exhale-app/exhale-backend/pkg/redis"
)

// RevenueCatController receives RevenueCat webhook deliveries. RevenueCat
// authenticates with a static Authorization header rather than a payload
// signature, so this is the lower-trust path; events still only act on users
// the payload can name.
type RevenueCatController struct {
	service    *entitlements.Service
	guard      *guard
	metrics    *metrics.WebhookMetrics
	log        *logger.Logger
	authSecret string
}

// RevenueCatControllerParams holds constructor dependencies.
type RevenueCatControllerParams struct {
	Service        *entitlements.Service
	Idempotency    redis.IdempotencyStore
	Metrics        *metrics.WebhookMetrics
	Log            *logger.Logger
	AuthSecret     string
	IdempotencyTTL time.Duration
}

func NewRevenueCatController(params RevenueCatControllerParams) (*RevenueCatController, error) {
	if params.Service == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhooks: entitlement service is required")
	}
	if params.Idempotency == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhooks: idempotency store is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhooks: logger is required")
	}
	return &RevenueCatController{
		service:    params.Service,
		guard:      newGuard(params.Idempotency, params.IdempotencyTTL),
		metrics:    params.Metrics,
		log:        params.Log,
		authSecret: params.AuthSecret,
	}, nil
}

// Handle processes POST /api/v1/webhooks/revenuecat. Handled and ignored
// events both acknowledge with 200; only transient failures return an error
// status so RevenueCat retries.
func (c *RevenueCatController) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := c.log.WithProvider(r.Context(), enums.BillingProviderRevenueCat.String())
	provider := enums.BillingProviderRevenueCat.String()

	if c.authSecret == "" ||
		subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte("Bearer "+c.authSecret)) != 1 {
		c.metrics.IncRejected(provider, "bad_auth")
		c.log.Warn(ctx, "revenuecat webhook rejected, bad authorization")
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook credentials"))
		return
	}

	body, err := readBody(r)
	if err != nil {
		c.metrics.IncRejected(provider, "unreadable_body")
		responses.WriteError(w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading webhook body"))
		return
	}

	event, err := entitlements.ParseRevenueCatEvent(body)
	if err != nil {
		c.metrics.IncRejected(provider, "malformed_payload")
		c.log.Warn(ctx, "revenuecat webhook rejected, malformed payload")
		responses.WriteError(w, err)
		return
	}

	deliveryID := event.EventID
	if deliveryID == "" {
		deliveryID = bodyDigest(body)
	}

	fresh, err := c.guard.CheckAndMark(ctx, provider, deliveryID)
	if err != nil {
		responses.WriteError(w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency check failed"))
		return
	}
	if !fresh {
		c.metrics.IncEvent(provider, "duplicate")
		responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "already_processed"})
		return
	}

	result, err := c.service.Apply(ctx, event)
	if err != nil {
		c.guard.Release(ctx, provider, deliveryID)
		c.log.Error(ctx, "applying revenuecat event", err)
		responses.WriteError(w, err)
		return
	}

	c.metrics.IncEvent(provider, result.Reason)
	responses.WriteSuccess(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"applied": result.Applied,
	})
}
