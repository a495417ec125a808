package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exhale-app/exhale-backend/pkg/db"
	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/enums"
)

// Repository handles user persistence. Finders return (nil, nil) when no row
// matches so callers can distinguish absence from storage failure.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetSubscription(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus, platform *enums.SubscriptionPlatform, expiresAt *time.Time) error
	SetSubscriptionStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error
	ListExpiredEntitled(ctx context.Context, cutoff time.Time, limit int) ([]models.User, error)
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

func (r *repository) Create(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	err := r.db.WithContext(ctx).Create(user).Error
	return db.ClassifyWriteError(err, "users_email", "create user")
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.ClassifyWriteError(err, "", "find user")
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.ClassifyWriteError(err, "", "find user by email")
	}
	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	return db.ClassifyWriteError(err, "users_email", "update user")
}

// SetSubscription writes the full entitlement triple in one statement.
func (r *repository) SetSubscription(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus, platform *enums.SubscriptionPlatform, expiresAt *time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"subscription_status":     status,
			"subscription_platform":   platform,
			"subscription_expires_at": expiresAt,
		}).Error
	return db.ClassifyWriteError(err, "", "set subscription")
}

// SetSubscriptionStatus flips only the status column. Platform and expiry are
// kept so the profile still shows where the lapsed subscription lived.
func (r *repository) SetSubscriptionStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("subscription_status", status).Error
	return db.ClassifyWriteError(err, "", "set subscription status")
}

// ListExpiredEntitled returns entitled users whose expiry passed before cutoff.
func (r *repository) ListExpiredEntitled(ctx context.Context, cutoff time.Time, limit int) ([]models.User, error) {
	query := r.db.WithContext(ctx).
		Where("subscription_status IN ?", []enums.SubscriptionStatus{enums.SubscriptionStatusActive, enums.SubscriptionStatusTrial}).
		Where("subscription_expires_at IS NOT NULL AND subscription_expires_at < ?", cutoff).
		Order("subscription_expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, db.ClassifyWriteError(err, "", "list expired users")
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
