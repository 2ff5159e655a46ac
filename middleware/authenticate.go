package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/checkpoint/api/auth"
)

// TokenCodec validates bearer tokens for the stateless pipeline stage
type TokenCodec interface {
	// Validate verifies signature and expiry and returns the token subject
	Validate(tokenString string) (string, error)

	// IsValidFor reports whether the token is valid and issued for the principal
	IsValidFor(tokenString string, principal *auth.Principal) bool
}

// PrincipalResolver loads the principal for a validated identifier
type PrincipalResolver interface {
	Resolve(ctx context.Context, email string) (*auth.Principal, error)
}

// SessionReader returns the subject held by the request's session
type SessionReader interface {
	Subject(ctx context.Context, r *http.Request) (string, error)
}

// Authenticator provides the per-request authentication stages. Both stages
// only ever attach a principal; rejection is the job of the Require*
// middlewares, because the route being processed may be public.
type Authenticator struct {
	codec    TokenCodec
	resolver PrincipalResolver
	sessions SessionReader
	logger   *zap.Logger
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(codec TokenCodec, resolver PrincipalResolver, sessions SessionReader, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		codec:    codec,
		resolver: resolver,
		sessions: sessions,
		logger:   logger,
	}
}

// Bearer is the stateless authentication stage. It inspects the
// Authorization header and, when it carries a token that validates and
// resolves, attaches the principal to the request context. Every token
// failure is swallowed here: an expired, malformed, or tampered token leaves
// the request unauthenticated rather than aborting it. Idempotent when run
// more than once on the same request.
func (a *Authenticator) Bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if PrincipalFromContext(ctx) != nil {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := extractBearerToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := a.codec.Validate(tokenString)
		if err != nil {
			a.logger.Debug("bearer token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		principal, err := a.resolver.Resolve(ctx, subject)
		if err != nil {
			// subject no longer resolves (user deleted); stay unauthenticated
			a.logger.Debug("bearer subject did not resolve", zap.String("subject", subject))
			next.ServeHTTP(w, r)
			return
		}

		if !a.codec.IsValidFor(tokenString, principal) {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// Session is the stateful authentication stage. It looks up the request's
// session cookie in the session store and attaches the resolved principal.
// A missing or dead session leaves the request unauthenticated.
func (a *Authenticator) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if PrincipalFromContext(ctx) != nil {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := a.sessions.Subject(ctx, r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := a.resolver.Resolve(ctx, subject)
		if err != nil {
			a.logger.Debug("session subject did not resolve", zap.String("subject", subject))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// extractBearerToken extracts the token from the Authorization header.
// Returns "" when the header is absent or not a bearer scheme.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
