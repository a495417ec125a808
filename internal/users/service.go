package users

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/pkg/enums"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

// ServiceParams holds dependencies for the profile service.
type ServiceParams struct {
	Repo Repository
	Log  *logger.Logger
	Now  func() time.Time
}

// Service serves and updates user profiles.
type Service struct {
	repo Repository
	log  *logger.Logger
	now  func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users: repository is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users: logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: params.Repo, log: params.Log, now: now}, nil
}

// UpdateInput carries the mutable profile fields. Nil means leave unchanged.
// Subscription state is deliberately absent; only the reconciler writes it.
type UpdateInput struct {
	DisplayName       *string
	Timezone          *string
	QuitDate          *time.Time
	CigarettesPerDay  *int
	PricePerPackCents *int
}

// GetProfile returns the profile for the given user.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	profile := ToProfile(user, s.now())
	return &profile, nil
}

// UpdateProfile applies the provided fields and returns the fresh profile.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateInput) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timezone")
		}
		user.Timezone = *input.Timezone
	}
	if input.QuitDate != nil {
		user.QuitDate = input.QuitDate
	}
	if input.CigarettesPerDay != nil {
		user.CigarettesPerDay = *input.CigarettesPerDay
	}
	if input.PricePerPackCents != nil {
		user.PricePerPackCents = *input.PricePerPackCents
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	profile := ToProfile(user, s.now())
	return &profile, nil
}

// Entitled reports whether the user currently holds premium access.
func (s *Service) Entitled(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Entitled(s.now()), nil
}

// ExpireOverdue flips entitled users whose expiry passed before cutoff to
// expired. Used by the periodic sweep as a safety net for missed webhooks.
func (s *Service) ExpireOverdue(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	overdue, err := s.repo.ListExpiredEntitled(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range overdue {
		user := overdue[i]
		if err := s.repo.SetSubscriptionStatus(ctx, user.ID, enums.SubscriptionStatusExpired); err != nil {
			return expired, err
		}
		expired++
		s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "entitlement expired by sweep")
	}
	return expired, nil
}
