package auth

import (
	"context"
	"time"

	"github.com/exhale-app/exhale-backend/internal/users"
	"github.com/exhale-app/exhale-backend/pkg/auth"
	"github.com/exhale-app/exhale-backend/pkg/config"
	"github.com/exhale-app/exhale-backend/pkg/db/models"
	"github.com/exhale-app/exhale-backend/pkg/enums"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/security"
)

// ServiceParams holds dependencies for the auth service.
type ServiceParams struct {
	Users    users.Repository
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Log      *logger.Logger
	Now      func() time.Time
}

// Service registers accounts and issues access tokens.
type Service struct {
	users    users.Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	log      *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: user repository is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: logger is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:    params.Users,
		jwt:      params.JWT,
		password: params.Password,
		log:      params.Log,
		now:      now,
	}, nil
}

// RegisterInput carries the signup fields.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Timezone    string
}

// Session is what a successful register or login returns.
type Session struct {
	Token   string        `json:"token"`
	Profile users.Profile `json:"profile"`
}

// Register creates an account and returns a fresh session. Email reuse
// surfaces as CodeConflict from the unique index.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	user := &models.User{
		Email:              input.Email,
		PasswordHash:       hash,
		DisplayName:        input.DisplayName,
		Timezone:           timezone,
		SubscriptionStatus: enums.SubscriptionStatusNone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "user registered")
	return s.session(user)
}

// Login verifies credentials and returns a session. Unknown emails and bad
// passwords share one error so the endpoint does not leak which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.session(user)
}

func (s *Service) session(user *models.User) (*Session, error) {
	now := s.now()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{UserID: user.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &Session{Token: token, Profile: users.ToProfile(user, now)}, nil
}
