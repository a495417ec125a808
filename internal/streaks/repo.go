package streaks

import (
	"context"
	"time"

	"github.com/exhale-app/exhale-backend/pkg/db"
	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const uniqueDayConstraint = "idx_confirmations_user_date"

// Repository handles confirmation ledger persistence. The ledger is
// append-only; rows are removed only when the owning account is deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, confirmation *models.Confirmation) error
	ExistsForDate(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error)
	ListDatesByUser(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Confirmation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a confirmation repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Insert appends one ledger row. Racing inserts for the same day surface as
// CodeConflict; callers treat that as the benign-duplicate success path.
func (r *repository) Insert(ctx context.Context, confirmation *models.Confirmation) error {
	err := r.db.WithContext(ctx).Create(confirmation).Error
	return db.ClassifyWriteError(err, uniqueDayConstraint, "insert confirmation")
}

func (r *repository) ExistsForDate(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Confirmation{}).
		Where("user_id = ? AND confirmed_date = ?", userID, date).
		Count(&count).Error
	if err != nil {
		return false, db.ClassifyWriteError(err, "", "check confirmation")
	}
	return count > 0, nil
}

func (r *repository) ListDatesByUser(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Confirmation{}).
		Where("user_id = ?", userID).
		Order("confirmed_date DESC").
		Pluck("confirmed_date", &dates).Error
	if err != nil {
		return nil, db.ClassifyWriteError(err, "", "list confirmation dates")
	}
	return dates, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Confirmation, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("confirmed_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.Confirmation
	if err := query.Find(&rows).Error; err != nil {
		return nil, db.ClassifyWriteError(err, "", "list confirmations")
	}
	return rows, nil
}
