package middleware

import (
	"context"

	"github.com/checkpoint/api/auth"
)

// Context key type to avoid collisions
type contextKey string

// principalKey is the context key for the authenticated principal
const principalKey contextKey = "principal"

// WithPrincipal attaches the authenticated principal to the context. A
// principal set earlier in the same request is never replaced: exactly one
// authentication outcome per request.
func WithPrincipal(ctx context.Context, principal *auth.Principal) context.Context {
	if principal == nil || PrincipalFromContext(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext retrieves the authenticated principal from the
// context, or nil when the request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *auth.Principal {
	if val := ctx.Value(principalKey); val != nil {
		if principal, ok := val.(*auth.Principal); ok {
			return principal
		}
	}
	return nil
}
