package cravings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exhale-app/exhale-backend/pkg/db"
	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/pagination"
)

// Repository persists craving log rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, craving *models.Craving) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Craving, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountResisted(ctx context.Context, userID uuid.UUID) (int64, error)
	AverageIntensity(ctx context.Context, userID uuid.UUID) (float64, error)
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

func (r *repository) Create(ctx context.Context, craving *models.Craving) error {
	err := r.db.WithContext(ctx).Create(craving).Error
	return db.ClassifyWriteError(err, "", "create craving")
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Craving, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var rows []models.Craving
	if err := query.Find(&rows).Error; err != nil {
		return nil, db.ClassifyWriteError(err, "", "list cravings")
	}
	return rows, nil
}

func (r *repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Craving{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, db.ClassifyWriteError(err, "", "count cravings")
	}
	return count, nil
}

func (r *repository) CountResisted(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Craving{}).
		Where("user_id = ? AND resisted = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, db.ClassifyWriteError(err, "", "count resisted cravings")
	}
	return count, nil
}

func (r *repository) AverageIntensity(ctx context.Context, userID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&models.Craving{}).
		Where("user_id = ?", userID).
		Select("AVG(intensity)").
		Scan(&avg).Error
	if err != nil {
		return 0, db.ClassifyWriteError(err, "", "average craving intensity")
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
