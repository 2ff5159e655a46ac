package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/checkpoint/api/middleware"
	"github.com/checkpoint/api/models"
	"github.com/checkpoint/api/services"
	"github.com/checkpoint/api/utils"
)

// LibraryRequest is the add/update request body for a library entry
type LibraryRequest struct {
	GameID string `json:"game_id" validate:"required,uuid"`
	Status string `json:"status" validate:"required,oneof=BACKLOG PLAYING COMPLETED DROPPED"`
}

// StatusRequest is the update request body for an existing library entry
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=BACKLOG PLAYING COMPLETED DROPPED"`
}

// LibraryHandler handles the authenticated user's game library endpoints.
// Every route is gated by RequireAuthenticated, so the principal is always
// present by the time these run.
type LibraryHandler struct {
	collection *services.CollectionService
	logger     *zap.Logger
}

// NewLibraryHandler creates a new LibraryHandler
func NewLibraryHandler(collection *services.CollectionService, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{
		collection: collection,
		logger:     logger,
	}
}

// HandleAdd handles POST /api/me/library
func (h *LibraryHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	var req LibraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		_ = utils.WriteBadRequest(w, utils.FirstValidationMessage(err))
		return
	}

	gameID, err := uuid.Parse(req.GameID)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid game ID")
		return
	}

	entry, err := h.collection.AddGame(r.Context(), principal.ID, gameID, models.GameStatus(req.Status))
	if err != nil {
		h.writeLibraryError(w, err)
		return
	}

	_ = utils.WriteCreated(w, entry)
}

// HandleUpdate handles PUT /api/me/library/{gameId}
func (h *LibraryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	gameID, err := uuid.Parse(chi.URLParam(r, "gameId"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid game ID")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		_ = utils.WriteBadRequest(w, utils.FirstValidationMessage(err))
		return
	}

	entry, err := h.collection.UpdateStatus(r.Context(), principal.ID, gameID, models.GameStatus(req.Status))
	if err != nil {
		h.writeLibraryError(w, err)
		return
	}

	_ = utils.WriteOK(w, entry)
}

// HandleList handles GET /api/me/library
func (h *LibraryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", services.DefaultPageSize)

	result, err := h.collection.GetLibrary(r.Context(), principal.ID, page, size)
	if err != nil {
		h.logger.Error("library listing failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w)
		return
	}

	_ = utils.WriteOK(w, result)
}

// HandleRemove handles DELETE /api/me/library/{gameId}
func (h *LibraryHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	gameID, err := uuid.Parse(chi.URLParam(r, "gameId"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid game ID")
		return
	}

	if err := h.collection.RemoveGame(r.Context(), principal.ID, gameID); err != nil {
		h.writeLibraryError(w, err)
		return
	}

	utils.WriteNoContent(w)
}

func (h *LibraryHandler) writeLibraryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrGameNotFound):
		_ = utils.WriteNotFound(w, "Game not found")
	case errors.Is(err, services.ErrGameNotInLibrary):
		_ = utils.WriteNotFound(w, "Game not in library")
	case errors.Is(err, services.ErrGameAlreadyInLibrary):
		_ = utils.WriteConflict(w, "Game already in library")
	case errors.Is(err, services.ErrInvalidStatus):
		_ = utils.WriteBadRequest(w, "Invalid game status")
	default:
		h.logger.Error("library operation failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w)
	}
}
