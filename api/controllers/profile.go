package controllers

import (
	"net/http"
	"time"

	"github.com/exhale-app/exhale-backend/api/middleware"
	"github.com/exhale-app/exhale-backend/api/responses"
	"github.com/exhale-app/exhale-backend/api/validators"
	"github.com/exhale-app/exhale-backend/internal/users"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

// ProfileController serves the authenticated user's profile.
type ProfileController struct {
	service *users.Service
	log     *logger.Logger
}

func NewProfileController(service *users.Service, logg *logger.Logger) *ProfileController {
	return &ProfileController{service: service, log: logg}
}

type updateProfileRequest struct {
	DisplayName       *string `json:"display_name" validate:"omitempty,max=80"`
	Timezone          *string `json:"timezone" validate:"omitempty,timezone_name"`
	QuitDate          *string `json:"quit_date" validate:"omitempty,datetime=2006-01-02"`
	CigarettesPerDay  *int    `json:"cigarettes_per_day" validate:"omitempty,min=0,max=200"`
	PricePerPackCents *int    `json:"price_per_pack_cents" validate:"omitempty,min=0"`
}

// Get handles GET /api/v1/me.
func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	profile, err := c.service.GetProfile(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, profile)
}

// Update handles PATCH /api/v1/me.
func (c *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req updateProfileRequest
	if err := validators.DecodeJSON(r, &req); err != nil {
		responses.WriteError(w, err)
		return
	}

	input := users.UpdateInput{
		DisplayName:       req.DisplayName,
		Timezone:          req.Timezone,
		CigarettesPerDay:  req.CigarettesPerDay,
		PricePerPackCents: req.PricePerPackCents,
	}
	if req.QuitDate != nil {
		quitDate, err := time.Parse("2006-01-02", *req.QuitDate)
		if err != nil {
			responses.WriteError(w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quit_date"))
			return
		}
		input.QuitDate = &quitDate
	}

	profile, err := c.service.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, profile)
}
