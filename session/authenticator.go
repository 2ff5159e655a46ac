package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/checkpoint/api/auth"
)

// Authenticator establishes and validates server-held sessions. The client
// holds only an opaque cookie value; the principal identifier lives in the
// store.
type Authenticator struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
	logger     *zap.Logger
}

// NewAuthenticator creates a session Authenticator
func NewAuthenticator(store Store, cookieName string, ttl time.Duration, secure bool, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		store:      store,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		logger:     logger,
	}
}

// Establish creates a session for the principal and sets the session cookie
func (a *Authenticator) Establish(ctx context.Context, w http.ResponseWriter, principal *auth.Principal) error {
	sessionID, err := a.store.Create(ctx, principal.Email, a.ttl)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})

	a.logger.Debug("session established", zap.String("subject", principal.Email))
	return nil
}

// Subject returns the principal identifier held by the request's session, or
// ErrSessionNotFound when the request carries no live session.
func (a *Authenticator) Subject(ctx context.Context, r *http.Request) (string, error) {
	cookie, err := r.Cookie(a.cookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrSessionNotFound
	}
	return a.store.Get(ctx, cookie.Value)
}

// Terminate invalidates the current session, if one exists, and expires the
// cookie. Terminating a non-existent session is a no-op.
func (a *Authenticator) Terminate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(a.cookieName)
	if err == nil && cookie.Value != "" {
		if err := a.store.Delete(ctx, cookie.Value); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
