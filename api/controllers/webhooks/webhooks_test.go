package webhooks

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exhale-app/exhale-backend/internal/entitlements"
	"github.com/exhale-app/exhale-backend/internal/users"
	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/enums"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

// stubIdempotencyStore mimics the Redis SETNX guard in memory.
type stubIdempotencyStore struct {
	seen    map[string]struct{}
	failNow error
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{seen: make(map[string]struct{})}
}

func (s *stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.failNow != nil {
		return false, s.failNow
	}
	if _, ok := s.seen[key]; ok {
		return false, nil
	}
	s.seen[key] = struct{}{}
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.seen, key)
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRecordRepo struct {
	records map[string]*models.SubscriptionRecord
}

func newStubRecordRepo() *stubRecordRepo {
	return &stubRecordRepo{records: make(map[string]*models.SubscriptionRecord)}
}

func (s *stubRecordRepo) WithTx(tx *gorm.DB) entitlements.Repository { return s }

func (s *stubRecordRepo) FindByExternalID(ctx context.Context, provider enums.BillingProvider, externalID string) (*models.SubscriptionRecord, error) {
	record, ok := s.records[provider.String()+":"+externalID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (s *stubRecordRepo) Upsert(ctx context.Context, record *models.SubscriptionRecord) error {
	clone := *record
	s.records[record.Provider.String()+":"+record.ExternalSubscriptionID] = &clone
	return nil
}

type stubUserRepo struct {
	users   map[uuid.UUID]*models.User
	applyFn func() error
}

func newStubUserRepo(seed ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range seed {
		repo.users[u.ID] = u
	}
	return repo
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error { return nil }

func (s *stubUserRepo) SetSubscription(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus, platform *enums.SubscriptionPlatform, expiresAt *time.Time) error {
	if s.applyFn != nil {
		if err := s.applyFn(); err != nil {
			return err
		}
	}
	user := s.users[id]
	user.SubscriptionStatus = status
	user.SubscriptionPlatform = platform
	user.SubscriptionExpiresAt = expiresAt
	return nil
}

func (s *stubUserRepo) SetSubscriptionStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error {
	if s.applyFn != nil {
		if err := s.applyFn(); err != nil {
			return err
		}
	}
	s.users[id].SubscriptionStatus = status
	return nil
}

func (s *stubUserRepo) ListExpiredEntitled(ctx context.Context, cutoff time.Time, limit int) ([]models.User, error) {
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newEntitlementService(t *testing.T, userRepo *stubUserRepo, recordRepo *stubRecordRepo) *entitlements.Service {
	t.Helper()
	svc, err := entitlements.NewService(entitlements.ServiceParams{
		Repo:  recordRepo,
		Users: userRepo,
		Tx:    stubTxRunner{},
		Log:   testLogger(),
	})
	if err != nil {
		t.Fatalf("building entitlement service: %v", err)
	}
	return svc
}
