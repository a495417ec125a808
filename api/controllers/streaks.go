package controllers

import (
	"net/http"
	"strconv"

	"github.com/exhale-app/exhale-backend/api/middleware"
	"github.com/exhale-app/exhale-backend/api/responses"
	"github.com/exhale-app/exhale-backend/internal/streaks"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

const defaultConfirmationLimit = 90

// StreaksController serves day confirmations and streak summaries.
type StreaksController struct {
	service *streaks.Service
	log     *logger.Logger
}

func NewStreaksController(service *streaks.Service, logg *logger.Logger) *StreaksController {
	return &StreaksController{service: service, log: logg}
}

// Confirm handles POST /api/v1/streaks/confirm. Calling it twice on the same
// local day is a no-op reported through already_marked.
func (c *StreaksController) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	result, err := c.service.Confirm(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, result)
}

// Summary handles GET /api/v1/streaks.
func (c *StreaksController) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	summary, err := c.service.GetSummary(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, summary)
}

// Confirmations handles GET /api/v1/streaks/confirmations.
func (c *StreaksController) Confirmations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	limit := defaultConfirmationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			responses.WriteError(w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be between 1 and 365"))
			return
		}
		limit = parsed
	}

	rows, err := c.service.ListConfirmations(r.Context(), userID, limit)
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, rows)
}
