package models

import (
	"time"

	"github.com/google/uuid"
)

// Confirmation is one append-only ledger row asserting the user abstained on
// one calendar day (resolved in the user's timezone at confirmation time).
// The (user_id, confirmed_date) pair is unique at the storage layer; the
// application treats violations as benign duplicates.
type Confirmation struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_confirmations_user_date"`
	ConfirmedDate time.Time `gorm:"column:confirmed_date;type:date;not null;uniqueIndex:idx_confirmations_user_date"`
	ConfirmedAt   time.Time `gorm:"column:confirmed_at;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
