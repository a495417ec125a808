package streaks

import (
	"context"
	"time"

	"github.com/exhale-app/exhale-backend/internal/users"
	"github.com/exhale-app/exhale-backend/pkg/db/models"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/metrics"
	"github.com/google/uuid"
)

// ServiceParams holds dependencies for the streak service.
type ServiceParams struct {
	Repo    Repository
	Users   users.Repository
	Log     *logger.Logger
	Metrics *metrics.StreakMetrics
	Now     func() time.Time
}

// Service confirms smoke-free days and serves streak summaries.
type Service struct {
	repo    Repository
	users   users.Repository
	log     *logger.Logger
	metrics *metrics.StreakMetrics
	now     func() time.Time
	cache   *summaryCache
}

// NewService builds a streak service from its dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "streaks: repository is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "streaks: user repository is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "streaks: logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:    params.Repo,
		users:   params.Users,
		log:     params.Log,
		metrics: params.Metrics,
		now:     now,
		cache:   newSummaryCache(),
	}, nil
}

// ConfirmResult reports the outcome of a confirmation attempt.
type ConfirmResult struct {
	Summary       Summary `json:"summary"`
	AlreadyMarked bool    `json:"already_marked"`
}

// Confirm marks today, in the user's timezone, as smoke-free. The call is
// idempotent per local calendar day: repeated calls return the same summary
// with AlreadyMarked set and never grow the streak twice.
func (s *Service) Confirm(ctx context.Context, userID uuid.UUID) (*ConfirmResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	now := s.now()
	today, err := LocalToday(user.Timezone, now)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForDate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if exists {
		summary, err := s.authoritativeSummary(ctx, userID, today)
		if err != nil {
			return nil, err
		}
		return &ConfirmResult{Summary: summary, AlreadyMarked: true}, nil
	}

	// Reflect the confirmation in the cached summary before the write lands.
	previous, hadPrevious := s.cache.Get(userID)
	s.cache.Put(userID, optimisticBump(previous, hadPrevious, today))

	confirmation := &models.Confirmation{
		UserID:        userID,
		ConfirmedDate: today,
		ConfirmedAt:   now.UTC(),
	}
	if err := s.repo.Insert(ctx, confirmation); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
			// Another request landed the same day first. The ledger holds
			// exactly one row either way, so treat this as the no-op path.
			summary, serr := s.authoritativeSummary(ctx, userID, today)
			if serr != nil {
				return nil, serr
			}
			return &ConfirmResult{Summary: summary, AlreadyMarked: true}, nil
		}
		if hadPrevious {
			s.cache.Put(userID, previous)
		} else {
			s.cache.Delete(userID)
		}
		return nil, err
	}

	s.metrics.IncConfirmation()

	summary, err := s.authoritativeSummary(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	logCtx := s.log.WithFields(ctx, map[string]any{
		"user_id":        userID.String(),
		"current_streak": summary.CurrentStreak,
	})
	s.log.Info(logCtx, "day confirmed")
	return &ConfirmResult{Summary: summary}, nil
}

// GetSummary returns the streak summary derived from the full ledger.
func (s *Service) GetSummary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	today, err := LocalToday(user.Timezone, s.now())
	if err != nil {
		return nil, err
	}
	summary, err := s.authoritativeSummary(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListConfirmations returns recent ledger rows, newest first.
func (s *Service) ListConfirmations(ctx context.Context, userID uuid.UUID, limit int) ([]models.Confirmation, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *Service) authoritativeSummary(ctx context.Context, userID uuid.UUID, today time.Time) (Summary, error) {
	dates, err := s.repo.ListDatesByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	summary := ComputeSummary(dates, today)
	s.cache.Put(userID, summary)
	return summary, nil
}

// optimisticBump estimates the post-confirmation summary without touching the
// ledger. It is deliberately simple; the authoritative recompute replaces it.
func optimisticBump(previous Summary, had bool, today time.Time) Summary {
	next := previous
	todayStr := today.Format(dateLayout)
	if !had {
		next = Summary{}
	}
	if next.ConfirmedToday {
		return next
	}
	next.CurrentStreak++
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	next.ConfirmedToday = true
	next.LastConfirmed = &todayStr
	return next
}
