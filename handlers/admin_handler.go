package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/checkpoint/api/services"
	"github.com/checkpoint/api/utils"
)

// AdminHandler handles admin-only endpoints. Routes are gated by
// RequireAuthority(ADMIN) in the router.
type AdminHandler struct {
	admin  *services.AdminService
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admin *services.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// HandleListUsers handles GET /api/admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("admin user listing failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w)
		return
	}
	_ = utils.WriteOK(w, users)
}

// HandleSearchExternal handles GET /api/admin/external-games/search
func (h *AdminHandler) HandleSearchExternal(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		_ = utils.WriteBadRequest(w, "Required parameter 'query' is missing")
		return
	}
	limit := queryInt(r, "limit", services.DefaultPageSize)

	results, err := h.admin.SearchExternalGames(r.Context(), query, limit)
	if err != nil {
		h.writeExternalError(w, err)
		return
	}

	_ = utils.WriteOK(w, results)
}

// HandleImport handles POST /api/admin/games/import/{externalId}
func (h *AdminHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	externalID, err := strconv.ParseInt(chi.URLParam(r, "externalId"), 10, 64)
	if err != nil || externalID <= 0 {
		_ = utils.WriteBadRequest(w, "Invalid external game ID")
		return
	}

	game, err := h.admin.ImportGame(r.Context(), externalID)
	if err != nil {
		h.writeExternalError(w, err)
		return
	}

	_ = utils.WriteCreated(w, game)
}

func (h *AdminHandler) writeExternalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrExternalGameNotFound):
		_ = utils.WriteNotFound(w, "Game not found in external catalog")
	case errors.Is(err, services.ErrExternalUnavailable):
		_ = utils.WriteError(w, http.StatusServiceUnavailable, "External catalog is unavailable")
	default:
		h.logger.Error("admin catalog operation failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w)
	}
}
