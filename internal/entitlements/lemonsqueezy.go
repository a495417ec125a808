package entitlements

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/enums"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
)

// lemonSqueezyPayload is the JSON:API envelope Lemon Squeezy posts.
type lemonSqueezyPayload struct {
	Meta struct {
		EventName  string `json:"event_name"`
		CustomData struct {
			UserID string `json:"user_id"`
		} `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status      string     `json:"status"`
			RenewsAt    *time.Time `json:"renews_at"`
			EndsAt      *time.Time `json:"ends_at"`
			TrialEndsAt *time.Time `json:"trial_ends_at"`
		} `json:"attributes"`
	} `json:"data"`
}

var lemonSqueezyActivationEvents = map[string]struct{}{
	"subscription_created":  {},
	"subscription_updated":  {},
	"subscription_resumed":  {},
	"subscription_unpaused": {},
}

var lemonSqueezyDeactivationEvents = map[string]struct{}{
	"subscription_expired":        {},
	"subscription_cancelled":      {},
	"subscription_payment_failed": {},
}

// ParseLemonSqueezyEvent maps a raw Lemon Squeezy webhook body into a
// BillingEvent. The subscription id in data.id keys later deliveries back to
// the user; the user id itself only travels in meta.custom_data, which the
// checkout attaches on creation. A past_due status keeps the entitlement
// alive through the provider's dunning window; paused updates are ignored
// until the provider settles them into a terminal event.
func ParseLemonSqueezyEvent(body []byte) (BillingEvent, error) {
	var payload lemonSqueezyPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return BillingEvent{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed lemonsqueezy payload")
	}
	if payload.Meta.EventName == "" {
		return BillingEvent{}, pkgerrors.New(pkgerrors.CodeValidation, "lemonsqueezy payload missing event_name")
	}
	if payload.Data.ID == "" {
		return BillingEvent{}, pkgerrors.New(pkgerrors.CodeValidation, "lemonsqueezy payload missing subscription id")
	}

	platform := enums.SubscriptionPlatformWeb
	event := BillingEvent{
		Provider:               enums.BillingProviderLemonSqueezy,
		EventID:                payload.Meta.EventName + ":" + payload.Data.ID,
		EventType:              payload.Meta.EventName,
		Outcome:                enums.BillingOutcomeIgnored,
		ExternalSubscriptionID: payload.Data.ID,
		Platform:               &platform,
	}
	if id, err := uuid.Parse(payload.Meta.CustomData.UserID); err == nil {
		event.UserID = id
	}

	attrs := payload.Data.Attributes
	if _, ok := lemonSqueezyActivationEvents[payload.Meta.EventName]; ok {
		switch attrs.Status {
		case "active", "past_due":
			event.Outcome = enums.BillingOutcomeActivation
			event.Status = enums.SubscriptionStatusActive
			event.ExpiresAt = firstTime(attrs.RenewsAt, attrs.EndsAt)
		case "on_trial":
			event.Outcome = enums.BillingOutcomeActivation
			event.Status = enums.SubscriptionStatusTrial
			event.ExpiresAt = firstTime(attrs.TrialEndsAt, attrs.RenewsAt, attrs.EndsAt)
		case "expired", "cancelled":
			event.Outcome = enums.BillingOutcomeDeactivation
			event.Status = enums.SubscriptionStatusExpired
		}
		return event, nil
	}
	if _, ok := lemonSqueezyDeactivationEvents[payload.Meta.EventName]; ok {
		event.Outcome = enums.BillingOutcomeDeactivation
		event.Status = enums.SubscriptionStatusExpired
	}
	return event, nil
}

func firstTime(candidates ...*time.Time) *time.Time {
	for _, candidate := range candidates {
		if candidate != nil {
			value := candidate.UTC()
			return &value
		}
	}
	return nil
}
