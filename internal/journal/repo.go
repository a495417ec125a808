package journal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exhale-app/exhale-backend/pkg/db"
	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/pagination"
)

// Repository persists journal entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.JournalEntry) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.JournalEntry, error)
	Update(ctx context.Context, entry *models.JournalEntry) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.JournalEntry, error)
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

func (r *repository) Create(ctx context.Context, entry *models.JournalEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	return db.ClassifyWriteError(err, "", "create journal entry")
}

func (r *repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.WithContext(ctx).
		First(&entry, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.ClassifyWriteError(err, "", "find journal entry")
	}
	return &entry, nil
}

func (r *repository) Update(ctx context.Context, entry *models.JournalEntry) error {
	err := r.db.WithContext(ctx).Save(entry).Error
	return db.ClassifyWriteError(err, "", "update journal entry")
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Delete(&models.JournalEntry{}, "id = ? AND user_id = ?", id, userID).Error
	return db.ClassifyWriteError(err, "", "delete journal entry")
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.JournalEntry, error) {
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
	var rows []models.JournalEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, db.ClassifyWriteError(err, "", "list journal entries")
	}
	return rows, nil
}
