package entitlements

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/enums"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
)

// revenueCatPayload is the envelope RevenueCat posts to webhook endpoints.
type revenueCatPayload struct {
	Event revenueCatEvent `json:"event"`
}

type revenueCatEvent struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	AppUserID      string `json:"app_user_id"`
	PeriodType     string `json:"period_type"`
	Store          string `json:"store"`
	ExpirationAtMs int64  `json:"expiration_at_ms"`
}

var revenueCatOutcomes = map[string]enums.BillingOutcome{
	"INITIAL_PURCHASE":      enums.BillingOutcomeActivation,
	"RENEWAL":               enums.BillingOutcomeActivation,
	"UNCANCELLATION":        enums.BillingOutcomeActivation,
	"PRODUCT_CHANGE":        enums.BillingOutcomeActivation,
	"NON_RENEWING_PURCHASE": enums.BillingOutcomeActivation,
	"CANCELLATION":          enums.BillingOutcomeDeactivation,
	"EXPIRATION":            enums.BillingOutcomeDeactivation,
	"BILLING_ISSUE":         enums.BillingOutcomeDeactivation,
}

// ParseRevenueCatEvent maps a raw RevenueCat webhook body into a BillingEvent.
// Unknown event types come back as Ignored rather than an error so new
// provider events never fail deliveries. The app_user_id is our user id; an
// unparseable one (anonymous RevenueCat ids included) leaves UserID zero and
// the reconciler drops the event.
func ParseRevenueCatEvent(body []byte) (BillingEvent, error) {
	var payload revenueCatPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return BillingEvent{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed revenuecat payload")
	}
	if payload.Event.Type == "" {
		return BillingEvent{}, pkgerrors.New(pkgerrors.CodeValidation, "revenuecat payload missing event type")
	}

	event := BillingEvent{
		Provider:  enums.BillingProviderRevenueCat,
		EventID:   payload.Event.ID,
		EventType: payload.Event.Type,
		Outcome:   enums.BillingOutcomeIgnored,
	}
	outcome, known := revenueCatOutcomes[payload.Event.Type]
	if !known {
		return event, nil
	}
	event.Outcome = outcome

	if id, err := uuid.Parse(payload.Event.AppUserID); err == nil {
		event.UserID = id
	}

	switch event.Outcome {
	case enums.BillingOutcomeActivation:
		event.Status = enums.SubscriptionStatusActive
		if payload.Event.PeriodType == "TRIAL" {
			event.Status = enums.SubscriptionStatusTrial
		}
		event.Platform = revenueCatPlatform(payload.Event.Store)
		if payload.Event.ExpirationAtMs > 0 {
			expiry := time.UnixMilli(payload.Event.ExpirationAtMs).UTC()
			event.ExpiresAt = &expiry
		}
	case enums.BillingOutcomeDeactivation:
		event.Status = enums.SubscriptionStatusExpired
	}
	return event, nil
}

func revenueCatPlatform(store string) *enums.SubscriptionPlatform {
	var platform enums.SubscriptionPlatform
	switch store {
	case "APP_STORE", "MAC_APP_STORE":
		platform = enums.SubscriptionPlatformIOS
	case "PLAY_STORE", "AMAZON":
		platform = enums.SubscriptionPlatformAndroid
	case "STRIPE":
		platform = enums.SubscriptionPlatformWeb
	default:
		return nil
	}
	return &platform
}
