package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/exhale-app/exhale-backend/api/middleware"
	"github.com/exhale-app/exhale-backend/api/responses"
	"github.com/exhale-app/exhale-backend/api/validators"
	"github.com/exhale-app/exhale-backend/internal/journal"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/pagination"
)

// JournalController serves journal entries.
type JournalController struct {
	service *journal.Service
	log     *logger.Logger
}

func NewJournalController(service *journal.Service, logg *logger.Logger) *JournalController {
	return &JournalController{service: service, log: logg}
}

type journalEntryRequest struct {
	Mood string `json:"mood" validate:"required,oneof=great good okay low struggling"`
	Body string `json:"body" validate:"required,max=10000"`
}

type journalUpdateRequest struct {
	Mood string `json:"mood" validate:"omitempty,oneof=great good okay low struggling"`
	Body string `json:"body" validate:"omitempty,max=10000"`
}

// Create handles POST /api/v1/journal.
func (c *JournalController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req journalEntryRequest
	if err := validators.DecodeJSON(r, &req); err != nil {
		responses.WriteError(w, err)
		return
	}

	entry, err := c.service.Create(r.Context(), userID, journal.EntryInput{Mood: req.Mood, Body: req.Body})
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, entry)
}

// Update handles PATCH /api/v1/journal/{id}.
func (c *JournalController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeValidation, "invalid entry id"))
		return
	}

	var req journalUpdateRequest
	if err := validators.DecodeJSON(r, &req); err != nil {
		responses.WriteError(w, err)
		return
	}

	entry, err := c.service.Update(r.Context(), userID, entryID, journal.EntryInput{Mood: req.Mood, Body: req.Body})
	if err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/v1/journal/{id}.
func (c *JournalController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteError(w, pkgerrors.New(pkgerrors.CodeValidation, "invalid entry id"))
		return
	}

	if err := c.service.Delete(r.Context(), userID, entryID); err != nil {
		responses.WriteError(w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// List handles GET /api/v1/journal.
func (c *JournalController) List(w http.ResponseWriter, r *http.Request) {
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
