package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/checkpoint/api/repositories"
)

// CredentialVerifier checks submitted email+password pairs against stored
// bcrypt hashes. It is the root trust primitive shared by both the token and
// the session login flows.
type CredentialVerifier struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewCredentialVerifier creates a new CredentialVerifier
func NewCredentialVerifier(users repositories.UserRepository, logger *zap.Logger) *CredentialVerifier {
	return &CredentialVerifier{
		users:  users,
		logger: logger,
	}
}

// dummyHash is compared against when the email is unknown so that lookup
// misses cost the same as hash mismatches.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Verify looks up the stored credential by email and compares the submitted
// password against its bcrypt hash. Unknown email and wrong password both
// return ErrInvalidCredentials.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*Principal, error) {
	user, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// burn a bcrypt comparison anyway
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		v.logger.Error("credential lookup failed", zap.Error(err))
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return NewPrincipal(user), nil
}

// HashPassword hashes a plaintext password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
