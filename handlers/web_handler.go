package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/checkpoint/api/auth"
	"github.com/checkpoint/api/middleware"
	"github.com/checkpoint/api/services"
)

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Checkpoint - Sign in</title></head>
<body>
<h1>Sign in</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .LoggedOut}}<p>You have been signed out.</p>{{end}}
<form method="POST" action="/login">
  {{.CSRFField}}
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Sign in</button>
</form>
</body>
</html>`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Checkpoint</title></head>
<body>
<h1>Welcome, {{.Pseudo}}</h1>
<form method="POST" action="/logout">{{.CSRFField}}<button type="submit">Sign out</button></form>
</body>
</html>`))

var errorTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Checkpoint - Error</title></head>
<body><h1>Something went wrong</h1></body>
</html>`))

// WebHandler serves the browser-facing pages of the session pipeline: the
// login form, the signed-in index, and the generic error page.
type WebHandler struct {
	service *services.AuthService
	logger  *zap.Logger
}

// NewWebHandler creates a new WebHandler
func NewWebHandler(service *services.AuthService, logger *zap.Logger) *WebHandler {
	return &WebHandler{
		service: service,
		logger:  logger,
	}
}

// HandleLoginPage handles GET /login
func (h *WebHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, "", r.URL.Query().Has("logout"))
}

// HandleLoginSubmit handles POST /login (form-encoded, CSRF-protected)
func (h *WebHandler) HandleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, "Invalid form submission", false)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	err := h.service.LoginWithSession(r.Context(), w, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.renderLogin(w, r, "Invalid email or password", false)
			return
		}
		h.logger.Error("web login failed", zap.Error(err))
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogoutSubmit handles POST /logout on the web pipeline
func (h *WebHandler) HandleLogoutSubmit(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), w, r); err != nil {
		h.logger.Error("web logout failed", zap.Error(err))
	}
	http.Redirect(w, r, "/login?logout", http.StatusFound)
}

// HandleIndex handles GET / for signed-in browsers
func (h *WebHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTemplate.Execute(w, map[string]interface{}{
		"Pseudo":    principal.Pseudo,
		"CSRFField": csrf.TemplateField(r),
	})
}

// HandleErrorPage handles GET /error
func (h *WebHandler) HandleErrorPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = errorTemplate.Execute(w, nil)
}

func (h *WebHandler) renderLogin(w http.ResponseWriter, r *http.Request, errMsg string, loggedOut bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginTemplate.Execute(w, map[string]interface{}{
		"Error":     errMsg,
		"LoggedOut": loggedOut,
		"CSRFField": csrf.TemplateField(r),
	})
}
