package users

import (
	"time"

	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/enums"
	"github.com/google/uuid"
)

// Profile is the API view of a user account.
type Profile struct {
	ID                    uuid.UUID                   `json:"id"`
	Email                 string                      `json:"email"`
	DisplayName           string                      `json:"display_name"`
	Timezone              string                      `json:"timezone"`
	QuitDate              *time.Time                  `json:"quit_date"`
	CigarettesPerDay      int                         `json:"cigarettes_per_day"`
	PricePerPackCents     int                         `json:"price_per_pack_cents"`
	SubscriptionStatus    enums.SubscriptionStatus    `json:"subscription_status"`
	SubscriptionPlatform  *enums.SubscriptionPlatform `json:"subscription_platform"`
	SubscriptionExpiresAt *time.Time                  `json:"subscription_expires_at"`
	Entitled              bool                        `json:"entitled"`
	CreatedAt             time.Time                   `json:"created_at"`
}

// ToProfile maps a stored user to its API shape as of now.
func ToProfile(user *models.User, now time.Time) Profile {
	return Profile{
		ID:                    user.ID,
		Email:                 user.Email,
		DisplayName:           user.DisplayName,
		Timezone:              user.Timezone,
		QuitDate:              user.QuitDate,
		CigarettesPerDay:      user.CigarettesPerDay,
		PricePerPackCents:     user.PricePerPackCents,
		SubscriptionStatus:    user.SubscriptionStatus,
		SubscriptionPlatform:  user.SubscriptionPlatform,
		SubscriptionExpiresAt: user.SubscriptionExpiresAt,
		Entitled:              user.Entitled(now),
		CreatedAt:             user.CreatedAt,
	}
}
