package models

import (
	"time"

	"github.com/google/uuid"
)

// Craving logs one urge-to-smoke moment, resisted or not.
type Craving struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Intensity int       `gorm:"column:intensity;not null"`
	Trigger   string    `gorm:"column:trigger_label"`
	Resisted  bool      `gorm:"column:resisted;not null;default:true"`
	Note      string    `gorm:"column:note"`
	NotedAt   time.Time `gorm:"column:noted_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
