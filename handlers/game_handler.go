package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/checkpoint/api/services"
	"github.com/checkpoint/api/utils"
)

// GameHandler handles the public game catalog endpoints
type GameHandler struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(catalog *services.CatalogService, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// HandleList handles GET /api/games
func (h *GameHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", services.DefaultPageSize)
	sort := r.URL.Query().Get("sort")
	if sort == "" {
		sort = "release_date,desc"
	}

	result, err := h.catalog.GetCatalog(r.Context(), page, size, sort)
	if err != nil {
		h.logger.Error("catalog listing failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w)
		return
	}

	_ = utils.WriteOK(w, result)
}

// HandleGet handles GET /api/games/{id}
func (h *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid game ID")
		return
	}

	game, err := h.catalog.GetGame(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			_ = utils.WriteNotFound(w, "Game not found")
			return
		}
		h.logger.Error("game lookup failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w)
		return
	}

	_ = utils.WriteOK(w, game)
}

// queryInt parses an integer query parameter with a default
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
