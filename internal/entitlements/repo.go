package entitlements

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/exhale-app/exhale-backend/pkg/db"
	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/enums"
)

// Repository persists provider-side subscription mirrors.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByExternalID(ctx context.Context, provider enums.BillingProvider, externalID string) (*models.SubscriptionRecord, error)
	Upsert(ctx context.Context, record *models.SubscriptionRecord) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByExternalID(ctx context.Context, provider enums.BillingProvider, externalID string) (*models.SubscriptionRecord, error) {
	var record models.SubscriptionRecord
	err := r.db.WithContext(ctx).
		First(&record, "provider = ? AND external_subscription_id = ?", provider, externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.ClassifyWriteError(err, "", "find subscription record")
	}
	return &record, nil
}

// Upsert writes the mirror row keyed by (provider, external id). Replays of
// the same event converge on the same row state.
func (r *repository) Upsert(ctx context.Context, record *models.SubscriptionRecord) error {
	existing, err := r.FindByExternalID(ctx, record.Provider, record.ExternalSubscriptionID)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.UserID = record.UserID
		existing.Status = record.Status
		existing.ExpiresAt = record.ExpiresAt
		err = r.db.WithContext(ctx).Save(existing).Error
		if err == nil {
			*record = *existing
		}
		return db.ClassifyWriteError(err, "idx_subscription_records_provider_ext", "update subscription record")
	}
	err = r.db.WithContext(ctx).Create(record).Error
	return db.ClassifyWriteError(err, "idx_subscription_records_provider_ext", "create subscription record")
}
