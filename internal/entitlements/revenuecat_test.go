package entitlements

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/enums"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
)

func revenueCatBody(eventType, appUserID, periodType, store string, expirationMs int64) []byte {
	return []byte(fmt.Sprintf(`{
		"event": {
			"id": "evt_123",
			"type": %q,
			"app_user_id": %q,
			"period_type": %q,
			"store": %q,
			"expiration_at_ms": %d
		}
	}`, eventType, appUserID, periodType, store, expirationMs))
}

func TestParseRevenueCatActivationEvents(t *testing.T) {
	userID := uuid.New()
	expiry := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	for _, eventType := range []string{
		"INITIAL_PURCHASE", "RENEWAL", "UNCANCELLATION", "PRODUCT_CHANGE", "NON_RENEWING_PURCHASE",
	} {
		body := revenueCatBody(eventType, userID.String(), "NORMAL", "APP_STORE", expiry.UnixMilli())
		event, err := ParseRevenueCatEvent(body)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", eventType, err)
		}
		if !event.IsActivation() {
			t.Fatalf("%s: expected activation, got %s", eventType, event.Outcome)
		}
		if event.Status != enums.SubscriptionStatusActive {
			t.Fatalf("%s: expected active status, got %s", eventType, event.Status)
		}
		if event.UserID != userID {
			t.Fatalf("%s: expected user id carried through", eventType)
		}
		if event.Platform == nil || *event.Platform != enums.SubscriptionPlatformIOS {
			t.Fatalf("%s: expected ios platform, got %v", eventType, event.Platform)
		}
		if event.ExpiresAt == nil || !event.ExpiresAt.Equal(expiry) {
			t.Fatalf("%s: expected expiry %v, got %v", eventType, expiry, event.ExpiresAt)
		}
	}
}

func TestParseRevenueCatTrialPeriod(t *testing.T) {
	body := revenueCatBody("INITIAL_PURCHASE", uuid.NewString(), "TRIAL", "PLAY_STORE", 0)
	event, err := ParseRevenueCatEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Status != enums.SubscriptionStatusTrial {
		t.Fatalf("expected trial status, got %s", event.Status)
	}
	if event.Platform == nil || *event.Platform != enums.SubscriptionPlatformAndroid {
		t.Fatalf("expected android platform, got %v", event.Platform)
	}
	if event.ExpiresAt != nil {
		t.Fatalf("expected nil expiry when expiration_at_ms absent, got %v", event.ExpiresAt)
	}
}

func TestParseRevenueCatDeactivationEvents(t *testing.T) {
	for _, eventType := range []string{"CANCELLATION", "EXPIRATION", "BILLING_ISSUE"} {
		body := revenueCatBody(eventType, uuid.NewString(), "NORMAL", "APP_STORE", 0)
		event, err := ParseRevenueCatEvent(body)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", eventType, err)
		}
		if !event.IsDeactivation() {
			t.Fatalf("%s: expected deactivation, got %s", eventType, event.Outcome)
		}
		if event.Status != enums.SubscriptionStatusExpired {
			t.Fatalf("%s: expected expired status, got %s", eventType, event.Status)
		}
	}
}

func TestParseRevenueCatUnknownTypeIgnored(t *testing.T) {
	body := revenueCatBody("TEST", uuid.NewString(), "NORMAL", "APP_STORE", 0)
	event, err := ParseRevenueCatEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Outcome != enums.BillingOutcomeIgnored {
		t.Fatalf("expected ignored outcome, got %s", event.Outcome)
	}
}

func TestParseRevenueCatAnonymousUserIDLeftUnset(t *testing.T) {
	body := revenueCatBody("RENEWAL", "$RCAnonymousID:abcdef", "NORMAL", "APP_STORE", 0)
	event, err := ParseRevenueCatEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.UserID != uuid.Nil {
		t.Fatalf("expected nil user id for anonymous id, got %s", event.UserID)
	}
}

func TestParseRevenueCatMalformedPayload(t *testing.T) {
	if _, err := ParseRevenueCatEvent([]byte(`{not json`)); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseRevenueCatEvent([]byte(`{"event": {}}`)); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing type, got %v", err)
	}
}
