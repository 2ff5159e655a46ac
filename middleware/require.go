package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/checkpoint/api/utils"
)

// Rules produces the authorization-rule middlewares for both pipelines.
// API rules short-circuit with the JSON envelope; web rules redirect to the
// login view, since they assume a browser.
type Rules struct {
	loginPath string
	logger    *zap.Logger
}

// NewRules creates the authorization rule set
func NewRules(loginPath string, logger *zap.Logger) *Rules {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Rules{
		loginPath: loginPath,
		logger:    logger,
	}
}

// RequireAuthenticated rejects unauthenticated requests with a 401 envelope.
// Never a redirect: desktop clients must not receive an HTML login page.
func (rl *Rules) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			rl.logger.Warn("unauthorized request",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method))
			_ = utils.WriteUnauthorized(w, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthority rejects requests whose principal lacks the named
// authority. Unauthenticated requests get 401, authenticated but
// under-authorized requests get 403. The response never says which authority
// was required.
func (rl *Rules) RequireAuthority(authority string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				rl.logger.Warn("unauthorized request",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method))
				_ = utils.WriteUnauthorized(w, "")
				return
			}
			if !principal.HasAuthority(authority) {
				rl.logger.Warn("insufficient authority",
					zap.String("path", r.URL.Path),
					zap.String("subject", principal.Email))
				_ = utils.WriteForbidden(w, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession is the web-pipeline gate: unauthenticated browsers are
// redirected to the login view instead of receiving a JSON body.
func (rl *Rules) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			http.Redirect(w, r, rl.loginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
