package cravings

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exhale-app/exhale-backend/pkg/db/models"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/pagination"
)

type stubRepo struct {
	created []*models.Craving
	rows    []models.Craving
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, craving *models.Craving) error {
	craving.ID = uuid.New()
	s.created = append(s.created, craving)
	return nil
}

func (s *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Craving, error) {
	buffered := pagination.LimitWithBuffer(limit)
	if len(s.rows) > buffered {
		return s.rows[:buffered], nil
	}
	return s.rows, nil
}

func (s *stubRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *stubRepo) CountResisted(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, row := range s.rows {
		if row.Resisted {
			count++
		}
	}
	return count, nil
}

func (s *stubRepo) AverageIntensity(ctx context.Context, userID uuid.UUID) (float64, error) {
	if len(s.rows) == 0 {
		return 0, nil
	}
	var sum int
	for _, row := range s.rows {
		sum += row.Intensity
	}
	return float64(sum) / float64(len(s.rows)), nil
}

func newTestService(t *testing.T, repo Repository, now time.Time) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: repo,
		Log:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:  func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestLogCraving(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	repo := &stubRepo{}
	svc := newTestService(t, repo, now)

	craving, err := svc.Log(context.Background(), uuid.New(), LogInput{
		Intensity: 7,
		Trigger:   "after coffee",
		Resisted:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !craving.NotedAt.Equal(now) {
		t.Fatalf("expected noted_at defaulted to now, got %v", craving.NotedAt)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one row created, got %d", len(repo.created))
	}
}

func TestLogCravingRejectsIntensityOutOfRange(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, time.Now())
	for _, intensity := range []int{0, 11, -3} {
		_, err := svc.Log(context.Background(), uuid.New(), LogInput{Intensity: intensity})
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("intensity %d: expected validation error, got %v", intensity, err)
		}
	}
}

func TestListReturnsNextCursorWhenMoreExist(t *testing.T) {
	rows := make([]models.Craving, 0, 30)
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		rows = append(rows, models.Craving{
			ID:        uuid.New(),
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		})
	}
	svc := newTestService(t, &stubRepo{rows: rows}, time.Now())

	page, err := svc.List(context.Background(), uuid.New(), pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor")
	}

	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("cursor should round-trip: %v", err)
	}
	if cursor.ID != page.Items[9].ID {
		t.Fatal("expected cursor to point at last returned row")
	}
}

func TestListNoCursorOnFinalPage(t *testing.T) {
	rows := []models.Craving{{ID: uuid.New(), CreatedAt: time.Now()}}
	svc := newTestService(t, &stubRepo{rows: rows}, time.Now())

	page, err := svc.List(context.Background(), uuid.New(), pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NextCursor != "" {
		t.Fatalf("expected no next cursor, got %q", page.NextCursor)
	}
}

func TestGetStatsCountsResisted(t *testing.T) {
	rows := []models.Craving{
		{ID: uuid.New(), Resisted: true, Intensity: 4},
		{ID: uuid.New(), Resisted: false, Intensity: 8},
		{ID: uuid.New(), Resisted: true, Intensity: 6},
	}
	svc := newTestService(t, &stubRepo{rows: rows}, time.Now())

	stats, err := svc.GetStats(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 3 || stats.Resisted != 2 {
		t.Fatalf("expected 3 total / 2 resisted, got %+v", stats)
	}
	if stats.AverageIntensity != 6 {
		t.Fatalf("expected average intensity 6, got %v", stats.AverageIntensity)
	}
}

func TestListRejectsInvalidCursor(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, time.Now())
	_, err := svc.List(context.Background(), uuid.New(), pagination.Params{Cursor: "garbage!!"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
