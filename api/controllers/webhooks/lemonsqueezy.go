package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
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

const lemonSqueezySignatureHeader = "X-Signature"

// LemonSqueezyController receives Lemon Squeezy webhook deliveries. Every
// delivery carries an HMAC-SHA256 signature over the raw body; unsigned or
// mis-signed deliveries never reach the reconciler.
type LemonSqueezyController struct {
	service       *entitlements.Service
	guard         *guard
	metrics       *metrics.WebhookMetrics
	log           *logger.Logger
	signingSecret string
}

// LemonSqueezyControllerParams holds constructor dependencies.
type LemonSqueezyControllerParams struct {
	Service        *entitlements.Service
	Idempotency    redis.IdempotencyStore
	Metrics        *metrics.WebhookMetrics
	Log            *logger.Logger
	SigningSecret  string
	IdempotencyTTL time.Duration
}

func NewLemonSqueezyController(params LemonSqueezyControllerParams) (*LemonSqueezyController, error) {
	if params.Service == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhooks: entitlement service is required")
	}
	if params.Idempotency == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhooks: idempotency store is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhooks: logger is required")
	}
	if params.SigningSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhooks: lemonsqueezy signing secret is required")
	}
	return &LemonSqueezyController{
		service:       params.Service,
		guard:         newGuard(params.Idempotency, params.IdempotencyTTL),
		metrics:       params.Metrics,
		log:           params.Log,
		signingSecret: params.SigningSecret,
	}, nil
}

// Handle processes POST /api/v1/webhooks/lemonsqueezy.
func (c *LemonSqueezyController) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := c.log.WithProvider(r.Context(), enums.BillingProviderLemonSqueezy.String())
	provider := enums.BillingProviderLemonSqueezy.String()

	body, err := readBody(r)
	if err != nil {
		c.metrics.IncRejected(provider, "unreadable_body")
		responses.WriteError(w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading webhook body"))
		return
	}

	if !c.validSignature(body, r.Header.Get(lemonSqueezySignatureHeader)) {
		c.metrics.IncRejected(provider, "bad_signature")
		c.log.Warn(ctx, "lemonsqueezy webhook rejected, bad signature")
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
		return
	}

	event, err := entitlements.ParseLemonSqueezyEvent(body)
	if err != nil {
		c.metrics.IncRejected(provider, "malformed_payload")
		c.log.Warn(ctx, "lemonsqueezy webhook rejected, malformed payload")
		responses.WriteError(w, err)
		return
	}

	deliveryID := bodyDigest(body)
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
		c.log.Error(ctx, "applying lemonsqueezy event", err)
		responses.WriteError(w, err)
		return
	}

	c.metrics.IncEvent(provider, result.Reason)
	responses.WriteSuccess(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"applied": result.Applied,
	})
}

func (c *LemonSqueezyController) validSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.signingSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
