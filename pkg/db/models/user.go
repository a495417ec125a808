package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/enums"
)

// User is the account profile for one app user. The subscription_* columns
// are the canonical entitlement state; they are mutated only by the
// entitlement reconciler and the expiry sweep, never directly by clients.
type User struct {
	ID                    uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email                 string                      `gorm:"column:email;not null;unique"`
	PasswordHash          string                      `gorm:"column:password_hash;not null"`
	DisplayName           string                      `gorm:"column:display_name"`
	Timezone              string                      `gorm:"column:timezone;not null;default:'UTC'"`
	QuitDate              *time.Time                  `gorm:"column:quit_date"`
	CigarettesPerDay      int                         `gorm:"column:cigarettes_per_day;not null;default:0"`
	PricePerPackCents     int                         `gorm:"column:price_per_pack_cents;not null;default:0"`
	SubscriptionStatus    enums.SubscriptionStatus    `gorm:"column:subscription_status;not null;default:'none'"`
	SubscriptionPlatform  *enums.SubscriptionPlatform `gorm:"column:subscription_platform"`
	SubscriptionExpiresAt *time.Time                  `gorm:"column:subscription_expires_at"`
	CreatedAt             time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

// Entitled reports whether the profile currently grants premium access.
func (u *User) Entitled(now time.Time) bool {
	if u == nil || !u.SubscriptionStatus.IsEntitling() {
		return false
	}
	if u.SubscriptionExpiresAt == nil {
		return true
	}
	return u.SubscriptionExpiresAt.After(now)
}
