package controllers

import (
	"net/http"

	"github.com/exhale-app/exhale-backend/api/middleware"
	"github.com/exhale-app/exhale-backend/api/responses"
	"github.com/exhale-app/exhale-backend/api/validators"
	"github.com/exhale-app/exhale-backend/internal/auth"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

// AuthController serves registration and login.
type AuthController struct {
	service *auth.Service
	limiter *middleware.AuthRateLimiter
	log     *logger.Logger
}

func NewAuthController(service *auth.Service, limiter *middleware.AuthRateLimiter, logg *logger.Logger) *AuthController {
	return &AuthController{service: service, limiter: limiter, log: logg}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"max=80"`
	Timezone    string `json:"timezone" validate:"omitempty,timezone_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/v1/auth/register.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validators.DecodeJSON(r, &req); err != nil {
		responses.WriteError(w, err)
		return
	}
	if !c.limiter.AllowRegisterEmail(r.Context(), req.Email) {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, slow down"))
		return
	}

	session, err := c.service.Register(r.Context(), auth.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Timezone:    req.Timezone,
	})
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, session)
}

// Login handles POST /api/v1/auth/login.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validators.DecodeJSON(r, &req); err != nil {
		responses.WriteError(w, err)
		return
	}
	if !c.limiter.AllowLoginEmail(r.Context(), req.Email) {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, slow down"))
		return
	}

	session, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, session)
}
