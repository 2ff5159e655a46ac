package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/checkpoint/api/auth"
	"github.com/checkpoint/api/models"
)

// CredentialVerifier checks an email+password pair and returns the principal
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*auth.Principal, error)
}

// TokenIssuer signs bearer tokens for verified principals
type TokenIssuer interface {
	Issue(principal *auth.Principal, extraClaims map[string]any) (string, error)
}

// SessionManager establishes and terminates server-held sessions
type SessionManager interface {
	Establish(ctx context.Context, w http.ResponseWriter, principal *auth.Principal) error
	Terminate(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// UserMe is the current-user projection returned by /api/auth/me
type UserMe struct {
	ID     uuid.UUID `json:"id"`
	Pseudo string    `json:"pseudo"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// AuthService implements the two credential flows that share one verifier:
// token issuance for desktop clients and session establishment for browsers.
type AuthService struct {
	verifier CredentialVerifier
	tokens   TokenIssuer
	sessions SessionManager
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(verifier CredentialVerifier, tokens TokenIssuer, sessions SessionManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		verifier: verifier,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
	}
}

// LoginWithToken verifies the credentials and returns a signed bearer token.
// Fails with auth.ErrInvalidCredentials on a bad pair.
func (s *AuthService) LoginWithToken(ctx context.Context, email, password string) (string, error) {
	principal, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(principal, nil)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("token issued", zap.String("subject", principal.Email))
	return token, nil
}

// LoginWithSession verifies the credentials and establishes a server-held
// session, setting the opaque session cookie on the response.
func (s *AuthService) LoginWithSession(ctx context.Context, w http.ResponseWriter, email, password string) error {
	principal, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return err
	}

	if err := s.sessions.Establish(ctx, w, principal); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}

	s.logger.Info("session login", zap.String("subject", principal.Email))
	return nil
}

// Logout terminates the current session if one exists. For token clients this
// is a no-op: a bearer token cannot be server-invalidated in this design and
// simply expires. Always succeeds.
func (s *AuthService) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := s.sessions.Terminate(ctx, w, r); err != nil {
		return fmt.Errorf("terminate session: %w", err)
	}
	return nil
}

// CurrentUser builds the /me projection from the authenticated principal
func (s *AuthService) CurrentUser(principal *auth.Principal) UserMe {
	role := string(models.RoleUser)
	if len(principal.Authorities) > 0 {
		role = principal.Authorities[0]
	}
	return UserMe{
		ID:     principal.ID,
		Pseudo: principal.Pseudo,
		Email:  principal.Email,
		Role:   role,
	}
}
