package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/exhale-app/exhale-backend/api/middleware"
	"github.com/exhale-app/exhale-backend/api/responses"
	"github.com/exhale-app/exhale-backend/api/validators"
	"github.com/exhale-app/exhale-backend/internal/cravings"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/pagination"
)

// CravingsController serves the craving log.
type CravingsController struct {
	service *cravings.Service
	log     *logger.Logger
}

func NewCravingsController(service *cravings.Service, logg *logger.Logger) *CravingsController {
	return &CravingsController{service: service, log: logg}
}

type logCravingRequest struct {
	Intensity int    `json:"intensity" validate:"required,min=1,max=10"`
	Trigger   string `json:"trigger" validate:"max=120"`
	Resisted  *bool  `json:"resisted"`
	Note      string `json:"note" validate:"max=2000"`
	NotedAt   string `json:"noted_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// Create handles POST /api/v1/cravings.
func (c *CravingsController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req logCravingRequest
	if err := validators.DecodeJSON(r, &req); err != nil {
		responses.WriteError(w, err)
		return
	}

	input := cravings.LogInput{
		Intensity: req.Intensity,
		Trigger:   req.Trigger,
		Resisted:  true,
		Note:      req.Note,
	}
	if req.Resisted != nil {
		input.Resisted = *req.Resisted
	}
	if req.NotedAt != "" {
		notedAt, err := time.Parse(time.RFC3339, req.NotedAt)
		if err != nil {
			responses.WriteError(w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid noted_at"))
			return
		}
		input.NotedAt = &notedAt
	}

	craving, err := c.service.Log(r.Context(), userID, input)
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, craving)
}

// List handles GET /api/v1/cravings.
func (c *CravingsController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			responses.WriteError(w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be an integer"))
			return
		}
		params.Limit = parsed
	}

	page, err := c.service.List(r.Context(), userID, params)
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, page)
}

// Stats handles GET /api/v1/cravings/stats.
func (c *CravingsController) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	stats, err := c.service.GetStats(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, stats)
}
