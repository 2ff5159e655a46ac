package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/checkpoint/api/auth"
	"github.com/checkpoint/api/middleware"
	"github.com/checkpoint/api/services"
	"github.com/checkpoint/api/utils"
)

// clientTypeHeader selects the credential flow on the unified login endpoint
const clientTypeHeader = "X-Client-Type"

// LoginRequest is the unified login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token for desktop clients
type LoginResponse struct {
	Token string `json:"token"`
}

// MessageResponse is a generic acknowledgment body
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthHandler handles the authentication endpoints
type AuthHandler struct {
	service *services.AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// HandleLogin is the unified login endpoint. Desktop clients (X-Client-Type:
// Desktop) get a bearer token in the body; everything else gets a server-held
// session behind an opaque cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLogin(w, r)
	if !ok {
		return
	}

	if strings.EqualFold(r.Header.Get(clientTypeHeader), "Desktop") {
		h.issueToken(w, r, req)
		return
	}

	err := h.service.LoginWithSession(r.Context(), w, req.Email, req.Password)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	_ = utils.WriteOK(w, MessageResponse{Message: "Login successful"})
}

// HandleToken is the dedicated token endpoint: always returns a bearer token
// regardless of headers.
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLogin(w, r)
	if !ok {
		return
	}
	h.issueToken(w, r, req)
}

// HandleLogout terminates the session if one exists. Idempotent: logging out
// without a session, or with only a bearer token, still returns 200.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), w, r); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w)
		return
	}
	_ = utils.WriteOK(w, MessageResponse{Message: "Logout successful"})
}

// HandleMe returns the current principal. The route is authenticated, so a
// missing principal here means a wiring bug, not a client error.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}
	_ = utils.WriteOK(w, h.service.CurrentUser(principal))
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request, req *LoginRequest) {
	token, err := h.service.LoginWithToken(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}
	_ = utils.WriteOK(w, LoginResponse{Token: token})
}

func (h *AuthHandler) decodeLogin(w http.ResponseWriter, r *http.Request) (*LoginRequest, bool) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body")
		return nil, false
	}
	if err := utils.ValidateStruct(&req); err != nil {
		_ = utils.WriteBadRequest(w, utils.FirstValidationMessage(err))
		return nil, false
	}
	return &req, true
}

// writeLoginError maps login failures to responses. Invalid credentials get
// the same generic 401 whether the email or the password was wrong.
func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		_ = utils.WriteUnauthorized(w, "Invalid email or password")
		return
	}
	h.logger.Error("login failed", zap.Error(err))
	_ = utils.WriteInternalServerError(w)
}
