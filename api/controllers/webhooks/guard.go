package webhooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/exhale-app/exhale-backend/pkg/redis"
)

const (
	maxWebhookBody  = 1 << 20
	processedMarker = "processed"
)

// readBody drains the delivery payload with a hard size cap.
func readBody(r *http.Request) ([]byte, error) {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	return io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
}

// bodyDigest derives a stable delivery id from the raw payload for providers
// that do not send one.
func bodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// guard is the Redis-backed idempotency check shared by both webhook
// endpoints. CheckAndMark wins the right to process a delivery; Release
// hands it back when processing fails so the provider's retry goes through.
type guard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func newGuard(store redis.IdempotencyStore, ttl time.Duration) *guard {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &guard{store: store, ttl: ttl}
}

// CheckAndMark returns true when this delivery has not been seen before and
// marks it as in flight.
func (g *guard) CheckAndMark(ctx context.Context, scope, id string) (bool, error) {
	key := g.store.IdempotencyKey(scope, id)
	return g.store.SetNX(ctx, key, processedMarker, g.ttl)
}

// Release removes the mark so the provider's retry can be processed.
func (g *guard) Release(ctx context.Context, scope, id string) {
	key := g.store.IdempotencyKey(scope, id)
	_ = g.store.Del(ctx, key)
}
