package cravings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/db/models"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/pagination"
)

// ServiceParams holds dependencies for the craving log service.
type ServiceParams struct {
	Repo Repository
	Log  *logger.Logger
	Now  func() time.Time
}

// Service records and lists craving moments.
type Service struct {
	repo Repository
	log  *logger.Logger
	now  func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cravings: repository is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cravings: logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: params.Repo, log: params.Log, now: now}, nil
}

// LogInput carries the fields of one craving entry.
type LogInput struct {
	Intensity int
	Trigger   string
	Resisted  bool
	Note      string
	NotedAt   *time.Time
}

// Page is one page of craving rows plus the next cursor, when more exist.
type Page struct {
	Items      []models.Craving `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// Log records one craving for the user.
func (s *Service) Log(ctx context.Context, userID uuid.UUID, input LogInput) (*models.Craving, error) {
	if input.Intensity < 1 || input.Intensity > 10 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intensity must be between 1 and 10")
	}
	notedAt := s.now().UTC()
	if input.NotedAt != nil {
		notedAt = input.NotedAt.UTC()
	}
	craving := &models.Craving{
		UserID:    userID,
		Intensity: input.Intensity,
		Trigger:   input.Trigger,
		Resisted:  input.Resisted,
		Note:      input.Note,
		NotedAt:   notedAt,
	}
	if err := s.repo.Create(ctx, craving); err != nil {
		return nil, err
	}
	return craving, nil
}

// List returns one keyset page of cravings, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByUser(ctx, userID, limit, cursor)
	if err != nil {
		return nil, err
	}

	page := &Page{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		tail := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: tail.CreatedAt, ID: tail.ID})
	}
	return page, nil
}

// Stats summarizes the user's craving log.
type Stats struct {
	Total            int64   `json:"total"`
	Resisted         int64   `json:"resisted"`
	AverageIntensity float64 `json:"average_intensity"`
}

// GetStats counts logged cravings, how many the user rode out and how hard
// they hit on average.
func (s *Service) GetStats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resisted, err := s.repo.CountResisted(ctx, userID)
	if err != nil {
		return nil, err
	}
	avg, err := s.repo.AverageIntensity(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Stats{Total: total, Resisted: resisted, AverageIntensity: avg}, nil
}
