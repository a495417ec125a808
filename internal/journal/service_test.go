package journal

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/enums"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/pagination"
)

type stubRepo struct {
	entries map[uuid.UUID]*models.JournalEntry
}

func newStubRepo() *stubRepo {
	return &stubRepo{entries: make(map[uuid.UUID]*models.JournalEntry)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, entry *models.JournalEntry) error {
	entry.ID = uuid.New()
	clone := *entry
	s.entries[entry.ID] = &clone
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.JournalEntry, error) {
	entry, ok := s.entries[id]
	if !ok || entry.UserID != userID {
		return nil, nil
	}
	clone := *entry
	return &clone, nil
}

func (s *stubRepo) Update(ctx context.Context, entry *models.JournalEntry) error {
	clone := *entry
	s.entries[entry.ID] = &clone
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	delete(s.entries, id)
	return nil
}

func (s *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.JournalEntry, error) {
	var rows []models.JournalEntry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			rows = append(rows, *entry)
		}
	}
	return rows, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: repo,
		Log:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestCreateEntry(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()

	entry, err := svc.Create(context.Background(), userID, EntryInput{Mood: "good", Body: "day three went fine"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Mood != enums.MoodGood {
		t.Fatalf("expected mood good, got %s", entry.Mood)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one stored entry, got %d", len(repo.entries))
	}
}

func TestCreateEntryRejectsInvalidMood(t *testing.T) {
	svc := newTestService(t, newStubRepo())
	_, err := svc.Create(context.Background(), uuid.New(), EntryInput{Mood: "ecstatic", Body: "x"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateEntryRejectsEmptyBody(t *testing.T) {
	svc := newTestService(t, newStubRepo())
	_, err := svc.Create(context.Background(), uuid.New(), EntryInput{Mood: "good"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateEntryPartialFields(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()

	entry, err := svc.Create(context.Background(), userID, EntryInput{Mood: "low", Body: "rough morning"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.Update(context.Background(), userID, entry.ID, EntryInput{Mood: "okay"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Mood != enums.MoodOkay {
		t.Fatalf("expected mood updated, got %s", updated.Mood)
	}
	if updated.Body != "rough morning" {
		t.Fatalf("expected body preserved, got %q", updated.Body)
	}
}

func TestUpdateEntryNotOwnedReturnsNotFound(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	entry, err := svc.Create(context.Background(), uuid.New(), EntryInput{Mood: "good", Body: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Update(context.Background(), uuid.New(), entry.ID, EntryInput{Body: "hijacked"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for other user's entry, got %v", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()

	entry, err := svc.Create(context.Background(), userID, EntryInput{Mood: "good", Body: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), userID, entry.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), userID, entry.ID); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
