package entitlements

import (
	"time"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/enums"
)

// BillingEvent is the provider-neutral form every webhook payload is mapped
// into before it can touch entitlement state. Exactly one of the lookup keys
// is set per provider: RevenueCat events carry the app user id, Lemon Squeezy
// events carry the external subscription id.
type BillingEvent struct {
	Provider  enums.BillingProvider
	EventID   string
	EventType string
	Outcome   enums.BillingOutcome

	UserID                 uuid.UUID
	ExternalSubscriptionID string

	Status    enums.SubscriptionStatus
	Platform  *enums.SubscriptionPlatform
	ExpiresAt *time.Time
}

// IsActivation reports whether the event grants or extends access.
func (e BillingEvent) IsActivation() bool {
	return e.Outcome == enums.BillingOutcomeActivation
}

// IsDeactivation reports whether the event revokes access.
func (e BillingEvent) IsDeactivation() bool {
	return e.Outcome == enums.BillingOutcomeDeactivation
}
