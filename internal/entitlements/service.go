package entitlements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exhale-app/exhale-backend/internal/users"
	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/enums"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams holds dependencies for the entitlement reconciler.
type ServiceParams struct {
	Repo  Repository
	Users users.Repository
	Tx    TxRunner
	Log   *logger.Logger
}

// Service reconciles billing events into entitlement state. Apply is
// idempotent per event and fail-soft on lookups: events that cannot be tied
// to a user are dropped, never retried into an error response.
type Service struct {
	repo  Repository
	users users.Repository
	tx    TxRunner
	log   *logger.Logger
}

// NewService builds the reconciler from its dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "entitlements: repository is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "entitlements: user repository is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "entitlements: tx runner is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "entitlements: logger is required")
	}
	return &Service{
		repo:  params.Repo,
		users: params.Users,
		tx:    params.Tx,
		log:   params.Log,
	}, nil
}

// ApplyResult reports what a billing event did to entitlement state.
type ApplyResult struct {
	Applied bool
	Reason  string
}

// Apply reconciles one billing event. Ignored outcomes, unresolvable users
// and stale activations all return Applied=false with a nil error so the
// webhook layer acknowledges the delivery.
func (s *Service) Apply(ctx context.Context, event BillingEvent) (ApplyResult, error) {
	ctx = s.log.WithProvider(ctx, event.Provider.String())
	ctx = s.log.WithEventType(ctx, event.EventType)

	if event.Outcome == enums.BillingOutcomeIgnored {
		s.log.Info(ctx, "billing event ignored")
		return ApplyResult{Reason: "ignored_event_type"}, nil
	}

	user, err := s.resolveUser(ctx, event)
	if err != nil {
		return ApplyResult{}, err
	}
	if user == nil {
		s.log.Warn(ctx, "billing event dropped, no matching user")
		return ApplyResult{Reason: "user_not_found"}, nil
	}
	ctx = s.log.WithUserID(ctx, user.ID.String())

	switch {
	case event.IsActivation():
		return s.applyActivation(ctx, user, event)
	case event.IsDeactivation():
		return s.applyDeactivation(ctx, user, event)
	}
	return ApplyResult{Reason: "ignored_event_type"}, nil
}

func (s *Service) resolveUser(ctx context.Context, event BillingEvent) (*models.User, error) {
	if event.UserID != uuid.Nil {
		return s.users.FindByID(ctx, event.UserID)
	}
	if event.ExternalSubscriptionID != "" {
		record, err := s.repo.FindByExternalID(ctx, event.Provider, event.ExternalSubscriptionID)
		if err != nil || record == nil {
			return nil, err
		}
		return s.users.FindByID(ctx, record.UserID)
	}
	return nil, nil
}

func (s *Service) applyActivation(ctx context.Context, user *models.User, event BillingEvent) (ApplyResult, error) {
	// Deliveries can arrive out of order. An activation whose expiry is
	// strictly older than what the profile already holds is a replay of a
	// superseded period and must not rewind state.
	if user.SubscriptionExpiresAt != nil && event.ExpiresAt != nil &&
		event.ExpiresAt.Before(*user.SubscriptionExpiresAt) {
		s.log.Info(ctx, "stale activation skipped")
		return ApplyResult{Reason: "stale_activation"}, nil
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).SetSubscription(ctx, user.ID, event.Status, event.Platform, event.ExpiresAt); err != nil {
			return err
		}
		if event.ExternalSubscriptionID == "" {
			return nil
		}
		return s.repo.WithTx(tx).Upsert(ctx, &models.SubscriptionRecord{
			UserID:                 user.ID,
			Provider:               event.Provider,
			ExternalSubscriptionID: event.ExternalSubscriptionID,
			Status:                 event.Status,
			ExpiresAt:              event.ExpiresAt,
		})
	})
	if err != nil {
		return ApplyResult{}, err
	}
	s.log.Info(ctx, "entitlement activated")
	return ApplyResult{Applied: true, Reason: "activated"}, nil
}

// applyDeactivation flips the status only. Platform and expiry stay so the
// profile still records where the lapsed subscription lived; replays converge
// on the same terminal state.
func (s *Service) applyDeactivation(ctx context.Context, user *models.User, event BillingEvent) (ApplyResult, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).SetSubscriptionStatus(ctx, user.ID, enums.SubscriptionStatusExpired); err != nil {
			return err
		}
		if event.ExternalSubscriptionID == "" {
			return nil
		}
		record, err := s.repo.WithTx(tx).FindByExternalID(ctx, event.Provider, event.ExternalSubscriptionID)
		if err != nil || record == nil {
			return err
		}
		record.Status = enums.SubscriptionStatusExpired
		return s.repo.WithTx(tx).Upsert(ctx, record)
	})
	if err != nil {
		return ApplyResult{}, err
	}
	s.log.Info(ctx, "entitlement deactivated")
	return ApplyResult{Applied: true, Reason: "deactivated"}, nil
}
