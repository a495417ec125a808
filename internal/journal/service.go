package journal

import (
	"context"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/enums"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/pagination"
)

// ServiceParams holds dependencies for the journal service.
type ServiceParams struct {
	Repo Repository
	Log  *logger.Logger
}

// Service manages free-form journal entries.
type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "journal: repository is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "journal: logger is required")
	}
	return &Service{repo: params.Repo, log: params.Log}, nil
}

// EntryInput carries the writable fields of a journal entry.
type EntryInput struct {
	Mood string
	Body string
}

// Page is one page of entries plus the next cursor, when more exist.
type Page struct {
	Items      []models.JournalEntry `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// Create stores a new entry for the user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input EntryInput) (*models.JournalEntry, error) {
	mood, err := enums.ParseMood(input.Mood)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mood")
	}
	if input.Body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body is required")
	}
	entry := &models.JournalEntry{
		UserID: userID,
		Mood:   mood,
		Body:   input.Body,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update rewrites an existing entry owned by the user.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, input EntryInput) (*models.JournalEntry, error) {
	entry, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "journal entry not found")
	}
	if input.Mood != "" {
		mood, err := enums.ParseMood(input.Mood)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mood")
		}
		entry.Mood = mood
	}
	if input.Body != "" {
		entry.Body = input.Body
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes an entry owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	entry, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "journal entry not found")
	}
	return s.repo.Delete(ctx, userID, id)
}

// List returns one keyset page of entries, newest first.
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
