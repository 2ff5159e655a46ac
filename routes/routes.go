package routes

import (
	"crypto/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"

	"github.com/checkpoint/api/app"
	"github.com/checkpoint/api/utils"
)

// SetupRoutes configures the two authorization pipelines. Pipeline A covers
// everything under /api (hybrid bearer/session authentication, JSON failures,
// no CSRF); pipeline B covers every other route (session-only, login-redirect
// failures, CSRF-protected). A request is handled by exactly one pipeline.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Client-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	mountAPIPipeline(r, deps)
	mountWebPipeline(r, deps)

	// The selector: /api misses get the JSON envelope, web misses are sent
	// to the login view like any other unauthenticated web request.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
			_ = utils.WriteNotFound(w, "Endpoint not found")
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	return r
}

// mountAPIPipeline wires pipeline A. Both authentication stages run before
// rule evaluation on every /api request: the bearer stage first, then the
// session stage, so desktop tokens and browser cookies both work. Neither
// stage rejects; the Require* rules do.
func mountAPIPipeline(r chi.Router, deps *app.Dependencies) {
	r.Route("/api", func(r chi.Router) {
		r.Use(deps.Authenticator.Bearer)
		r.Use(deps.Authenticator.Session)

		// Authentication endpoints: public except /me
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.AuthHandler.HandleLogin)
			r.Post("/token", deps.AuthHandler.HandleToken)
			r.Post("/logout", deps.AuthHandler.HandleLogout)
			r.With(deps.Rules.RequireAuthenticated).Get("/me", deps.AuthHandler.HandleMe)
		})

		// Public game catalog (read-only)
		r.Route("/games", func(r chi.Router) {
			r.Get("/", deps.GameHandler.HandleList)
			r.Get("/{id}", deps.GameHandler.HandleGet)
		})

		// Authenticated user's library
		r.Route("/me/library", func(r chi.Router) {
			r.Use(deps.Rules.RequireAuthenticated)
			r.Get("/", deps.LibraryHandler.HandleList)
			r.Post("/", deps.LibraryHandler.HandleAdd)
			r.Put("/{gameId}", deps.LibraryHandler.HandleUpdate)
			r.Delete("/{gameId}", deps.LibraryHandler.HandleRemove)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.Rules.RequireAuthority("ADMIN"))
			r.Get("/users", deps.AdminHandler.HandleListUsers)
			r.Get("/external-games/search", deps.AdminHandler.HandleSearchExternal)
			r.Post("/games/import/{externalId}", deps.AdminHandler.HandleImport)
		})

		// Everything else under /api requires authentication; unknown paths
		// still answer with the JSON envelope, never a redirect.
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			_ = utils.WriteNotFound(w, "Endpoint not found")
		})
	})
}

// mountWebPipeline wires pipeline B. It trusts ambient session cookies, so
// CSRF protection is mandatory on every route.
func mountWebPipeline(r chi.Router, deps *app.Dependencies) {
	csrfKey := []byte(deps.Config.Session.CSRFKey)
	if len(csrfKey) == 0 {
		// no configured key: sessions won't survive a restart, which is
		// acceptable for development
		csrfKey = make([]byte, 32)
		_, _ = rand.Read(csrfKey)
	}

	protect := csrf.Protect(csrfKey,
		csrf.Secure(deps.Config.Session.SecureCookies),
		csrf.Path("/"),
	)

	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Use(deps.Authenticator.Session)

		// Public allow-list
		r.Get("/login", deps.WebHandler.HandleLoginPage)
		r.Post("/login", deps.WebHandler.HandleLoginSubmit)
		r.Get("/error", deps.WebHandler.HandleErrorPage)

		// logout is safe for signed-out browsers too; it just redirects
		r.Post("/logout", deps.WebHandler.HandleLogoutSubmit)

		r.With(deps.Rules.RequireSession).Get("/", deps.WebHandler.HandleIndex)
	})
}
