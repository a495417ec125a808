package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/enums"
)

// SubscriptionRecord mirrors one provider-side subscription object. It exists
// so later webhook deliveries that only carry the provider's subscription id
// can be resolved back to the owning user. Lookups that miss are no-ops; a
// record is never fabricated from an update event.
type SubscriptionRecord struct {
	ID                     uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                 uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	Provider               enums.BillingProvider    `gorm:"column:provider;not null;uniqueIndex:idx_subscription_records_provider_ext"`
	ExternalSubscriptionID string                   `gorm:"column:external_subscription_id;not null;uniqueIndex:idx_subscription_records_provider_ext"`
	Status                 enums.SubscriptionStatus `gorm:"column:status;not null;default:'none'"`
	ExpiresAt              *time.Time               `gorm:"column:expires_at"`
	CreatedAt              time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
