package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/enums"
)

const testAuthSecret = "rc-test-secret"

func revenueCatDelivery(eventID, eventType, appUserID string) []byte {
	return []byte(fmt.Sprintf(`{
		"event": {
			"id": %q,
			"type": %q,
			"app_user_id": %q,
			"period_type": "NORMAL",
			"store": "APP_STORE",
			"expiration_at_ms": 1775606400000
		}
	}`, eventID, eventType, appUserID))
}

func newRevenueCatController(t *testing.T, userRepo *stubUserRepo, store *stubIdempotencyStore) *RevenueCatController {
	t.Helper()
	controller, err := NewRevenueCatController(RevenueCatControllerParams{
		Service:     newEntitlementService(t, userRepo, newStubRecordRepo()),
		Idempotency: store,
		Log:         testLogger(),
		AuthSecret:  testAuthSecret,
	})
	if err != nil {
		t.Fatalf("building controller: %v", err)
	}
	return controller
}

func postRevenueCat(controller *RevenueCatController, body []byte, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/revenuecat", bytes.NewReader(body))
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	controller.Handle(rec, req)
	return rec
}

func TestRevenueCatRejectsMissingAuth(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	controller := newRevenueCatController(t, newStubUserRepo(user), newStubIdempotencyStore())

	rec := postRevenueCat(controller, revenueCatDelivery("evt_1", "RENEWAL", user.ID.String()), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRevenueCatRejectsWrongSecret(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	controller := newRevenueCatController(t, newStubUserRepo(user), newStubIdempotencyStore())

	rec := postRevenueCat(controller, revenueCatDelivery("evt_1", "RENEWAL", user.ID.String()), "Bearer wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRevenueCatActivatesOnAuthorizedDelivery(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	userRepo := newStubUserRepo(user)
	controller := newRevenueCatController(t, userRepo, newStubIdempotencyStore())

	rec := postRevenueCat(controller, revenueCatDelivery("evt_1", "INITIAL_PURCHASE", user.ID.String()), "Bearer "+testAuthSecret)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stored := userRepo.users[user.ID]
	if stored.SubscriptionStatus != enums.SubscriptionStatusActive {
		t.Fatalf("expected active, got %s", stored.SubscriptionStatus)
	}
	if stored.SubscriptionPlatform == nil || *stored.SubscriptionPlatform != enums.SubscriptionPlatformIOS {
		t.Fatal("expected ios platform from APP_STORE")
	}
}

func TestRevenueCatDuplicateEventIDProcessedOnce(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	userRepo := newStubUserRepo(user)
	controller := newRevenueCatController(t, userRepo, newStubIdempotencyStore())

	body := revenueCatDelivery("evt_same", "RENEWAL", user.ID.String())
	first := postRevenueCat(controller, body, "Bearer "+testAuthSecret)
	second := postRevenueCat(controller, body, "Bearer "+testAuthSecret)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected both acknowledged, got %d and %d", first.Code, second.Code)
	}

	var payload struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(second.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.Data["status"] != "already_processed" {
		t.Fatalf("expected already_processed, got %v", payload.Data)
	}
}

func TestRevenueCatUnknownUserAcknowledged(t *testing.T) {
	controller := newRevenueCatController(t, newStubUserRepo(), newStubIdempotencyStore())

	rec := postRevenueCat(controller, revenueCatDelivery("evt_1", "RENEWAL", uuid.NewString()), "Bearer "+testAuthSecret)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected unknown user acknowledged with 200, got %d", rec.Code)
	}
}

func TestRevenueCatMalformedPayloadRejected(t *testing.T) {
	controller := newRevenueCatController(t, newStubUserRepo(), newStubIdempotencyStore())

	rec := postRevenueCat(controller, []byte(`{"event": {}}`), "Bearer "+testAuthSecret)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
