package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/checkpoint/api/repositories"
)

// PrincipalResolver loads the full authenticated-principal representation for
// a validated identifier. It performs a blocking read against the user store
// on every call; results must not be cached across requests, or authority
// changes would go unnoticed until restart.
type PrincipalResolver struct {
	users repositories.UserRepository
}

// NewPrincipalResolver creates a new PrincipalResolver
func NewPrincipalResolver(users repositories.UserRepository) *PrincipalResolver {
	return &PrincipalResolver{users: users}
}

// Resolve returns the Principal for the given email, or ErrPrincipalNotFound
// when the user no longer exists.
func (r *PrincipalResolver) Resolve(ctx context.Context, email string) (*Principal, error) {
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	return NewPrincipal(user), nil
}
