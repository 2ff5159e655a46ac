package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/checkpoint/api/app"
	"github.com/checkpoint/api/auth"
	"github.com/checkpoint/api/config"
	"github.com/checkpoint/api/handlers"
	"github.com/checkpoint/api/middleware"
	"github.com/checkpoint/api/models"
	"github.com/checkpoint/api/repositories"
	"github.com/checkpoint/api/services"
	"github.com/checkpoint/api/services/igdb"
	"github.com/checkpoint/api/session"
	"github.com/checkpoint/api/utils"
)

const signingKey = "integration-test-signing-key-32b"

// memUsers is an in-memory repositories.UserRepository
type memUsers struct {
	byEmail map[string]*models.User
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return repositories.ErrDuplicate
	}
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memUsers) List(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, len(m.byEmail))
	for _, u := range m.byEmail {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// memGames is an in-memory repositories.GameRepository
type memGames struct {
	byID map[uuid.UUID]*models.VideoGame
}

func (m *memGames) Create(ctx context.Context, game *models.VideoGame) error {
	m.byID[game.ID] = game
	return nil
}

func (m *memGames) GetByID(ctx context.Context, id uuid.UUID) (*models.VideoGame, error) {
	if g, ok := m.byID[id]; ok {
		return g, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memGames) GetByExternalID(ctx context.Context, externalID int64) (*models.VideoGame, error) {
	for _, g := range m.byID {
		if g.ExternalID == externalID {
			return g, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memGames) Update(ctx context.Context, game *models.VideoGame) error {
	if _, ok := m.byID[game.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.byID[game.ID] = game
	return nil
}

func (m *memGames) List(ctx context.Context, s repositories.GameSort, limit, offset int) ([]*models.VideoGame, error) {
	games := make([]*models.VideoGame, 0, len(m.byID))
	for _, g := range m.byID {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Title < games[j].Title })
	if offset >= len(games) {
		return nil, nil
	}
	end := offset + limit
	if end > len(games) {
		end = len(games)
	}
	return games[offset:end], nil
}

func (m *memGames) Count(ctx context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

// memLibrary is an in-memory repositories.UserGameRepository
type memLibrary struct {
	entries map[string]*models.UserGame
}

func libKey(userID, gameID uuid.UUID) string {
	return userID.String() + "/" + gameID.String()
}

func (m *memLibrary) Create(ctx context.Context, entry *models.UserGame) error {
	key := libKey(entry.UserID, entry.GameID)
	if _, ok := m.entries[key]; ok {
		return repositories.ErrDuplicate
	}
	m.entries[key] = entry
	return nil
}

func (m *memLibrary) GetByUserAndGame(ctx context.Context, userID, gameID uuid.UUID) (*models.UserGame, error) {
	if e, ok := m.entries[libKey(userID, gameID)]; ok {
		return e, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *memLibrary) UpdateStatus(ctx context.Context, userID, gameID uuid.UUID, status models.GameStatus) (*models.UserGame, error) {
	e, ok := m.entries[libKey(userID, gameID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	return e, nil
}

func (m *memLibrary) Delete(ctx context.Context, userID, gameID uuid.UUID) error {
	key := libKey(userID, gameID)
	if _, ok := m.entries[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.entries, key)
	return nil
}

func (m *memLibrary) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserGame, error) {
	var entries []*models.UserGame
	for _, e := range m.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if offset >= len(entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end], nil
}

func (m *memLibrary) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, e := range m.entries {
		if e.UserID == userID {
			count++
		}
	}
	return count, nil
}

type fixture struct {
	router http.Handler
	games  *memGames
	admin  *models.User
	player *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	users := &memUsers{byEmail: make(map[string]*models.User)}
	games := &memGames{byID: make(map[uuid.UUID]*models.VideoGame)}
	library := &memLibrary{entries: make(map[string]*models.UserGame)}

	adminHash, err := auth.HashPassword("admin-secret")
	require.NoError(t, err)
	admin := models.NewUser("admin", "admin@test.com", adminHash, models.RoleAdmin)
	require.NoError(t, users.Create(context.Background(), admin))

	playerHash, err := auth.HashPassword("player-secret")
	require.NoError(t, err)
	player := models.NewUser("player", "player@test.com", playerHash, models.RoleUser)
	require.NoError(t, users.Create(context.Background(), player))

	codec, err := auth.NewTokenCodec([]byte(signingKey), time.Hour, "checkpoint-test")
	require.NoError(t, err)
	verifier := auth.NewCredentialVerifier(users, logger)
	resolver := auth.NewPrincipalResolver(users)

	store := session.NewRedisStore(redisClient, time.Hour)
	sessions := session.NewAuthenticator(store, "CHECKPOINT_SESSION", time.Hour, false, logger)

	authService := services.NewAuthService(verifier, codec, sessions, logger)
	catalogService := services.NewCatalogService(games, logger)
	collectionService := services.NewCollectionService(library, games, logger)
	adminService := services.NewAdminService(users, games, igdb.NewClient(config.IGDBConfig{Timeout: time.Second}, logger), logger)

	deps := &app.Dependencies{
		Config: &config.Config{
			Session: config.SessionConfig{
				CookieName: "CHECKPOINT_SESSION",
				CSRFKey:    "01234567890123456789012345678901",
			},
		},
		Logger:        logger,
		Redis:         redisClient,
		Users:         users,
		Games:         games,
		UserGames:     library,
		TokenCodec:    codec,
		Verifier:      verifier,
		Resolver:      resolver,
		Sessions:      sessions,
		Authenticator: middleware.NewAuthenticator(codec, resolver, sessions, logger),
		Rules:         middleware.NewRules("/login", logger),

		AuthHandler:    handlers.NewAuthHandler(authService, logger),
		GameHandler:    handlers.NewGameHandler(catalogService, logger),
		LibraryHandler: handlers.NewLibraryHandler(collectionService, logger),
		AdminHandler:   handlers.NewAdminHandler(adminService, logger),
		HealthHandler:  handlers.NewHealthHandler(nil, redisClient, logger),
		WebHandler:     handlers.NewWebHandler(authService, logger),
	}

	return &fixture{
		router: SetupRoutes(deps),
		games:  games,
		admin:  admin,
		player: player,
	}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// tokenFor logs a user in through the token endpoint
func tokenFor(t *testing.T, f *fixture, email, password string) string {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAPIPipelinePublicRoutes(t *testing.T) {
	f := newFixture(t)
	game := models.NewVideoGame(1022, "Breath of the Wild", "Open air.", "", nil)
	f.games.byID[game.ID] = game

	t.Run("catalog is readable without credentials", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/games", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var page services.Page
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(t, int64(1), page.TotalElements)
	})

	t.Run("game detail without credentials", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/games/"+game.ID.String(), nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown game is a JSON 404", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/games/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found", envelope(t, rec).Error)
	})

	t.Run("unknown API path gets the envelope, not a redirect", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get("Location"))
		assert.Equal(t, http.StatusNotFound, envelope(t, rec).Status)
	})
}

func TestAPIPipelineBearerAuth(t *testing.T) {
	f := newFixture(t)

	t.Run("desktop login issues a working token", func(t *testing.T) {
		token := tokenFor(t, f, "player@test.com", "player-secret")

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := f.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		var me services.UserMe
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
		assert.Equal(t, "player@test.com", me.Email)
		assert.Equal(t, "USER", me.Role)
	})

	t.Run("unified login with the desktop header issues a token too", func(t *testing.T) {
		body := `{"email":"player@test.com","password":"player-secret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.Header.Set("X-Client-Type", "Desktop")
		rec := f.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp handlers.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		// no session cookie on the token path
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("wrong password is a generic 401", func(t *testing.T) {
		body := `{"email":"player@test.com","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
		rec := f.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", envelope(t, rec).Message)
	})

	t.Run("protected route without credentials is a 401 envelope", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Header().Get("Location"))
		body := envelope(t, rec)
		assert.Equal(t, http.StatusUnauthorized, body.Status)
		assert.Equal(t, "Unauthorized", body.Error)
	})

	t.Run("malformed token is indistinguishable from no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := f.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Authentication is required to access this resource", envelope(t, rec).Message)
	})

	t.Run("expired token is rejected with the same 401", func(t *testing.T) {
		expired := signToken(t, []byte(signingKey), "player@test.com", time.Now().Add(-time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		rec := f.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		forged := signToken(t, []byte("attacker-controlled-key-32-bytes"), "admin@test.com", time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := f.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAPIPipelineSessionAuth(t *testing.T) {
	f := newFixture(t)

	// browser-style login on the unified endpoint
	body := `{"email":"player@test.com","password":"player-secret"}`
	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	sessionCookie := cookies[0]
	assert.Equal(t, "CHECKPOINT_SESSION", sessionCookie.Name)
	assert.True(t, sessionCookie.HttpOnly)

	t.Run("session cookie authenticates API requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(sessionCookie)
		rec := f.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		var me services.UserMe
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
		assert.Equal(t, "player@test.com", me.Email)
	})

	t.Run("logout kills the session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(sessionCookie)
		rec := f.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		// the old cookie no longer authenticates
		req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(sessionCookie)
		rec = f.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout without a session still succeeds", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAPIPipelineLibrary(t *testing.T) {
	f := newFixture(t)
	game := models.NewVideoGame(1022, "Breath of the Wild", "Open air.", "", nil)
	f.games.byID[game.ID] = game
	token := tokenFor(t, f, "player@test.com", "player-secret")

	authed := func(method, path, body string) *http.Request {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	t.Run("library requires authentication", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/me/library", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("add, update, list, remove", func(t *testing.T) {
		addBody := `{"game_id":"` + game.ID.String() + `","status":"BACKLOG"}`
		rec := f.do(authed(http.MethodPost, "/api/me/library", addBody))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		// duplicate add conflicts
		rec = f.do(authed(http.MethodPost, "/api/me/library", addBody))
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = f.do(authed(http.MethodPut, "/api/me/library/"+game.ID.String(), `{"status":"COMPLETED"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = f.do(authed(http.MethodGet, "/api/me/library", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		var page services.Page
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(t, int64(1), page.TotalElements)

		rec = f.do(authed(http.MethodDelete, "/api/me/library/"+game.ID.String(), ""))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		// removing again is a 404
		rec = f.do(authed(http.MethodDelete, "/api/me/library/"+game.ID.String(), ""))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad status is a 400", func(t *testing.T) {
		rec := f.do(authed(http.MethodPost, "/api/me/library",
			`{"game_id":"`+game.ID.String()+`","status":"FINISHED"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPIPipelineAdminAuthority(t *testing.T) {
	f := newFixture(t)
	adminToken := tokenFor(t, f, "admin@test.com", "admin-secret")
	playerToken := tokenFor(t, f, "player@test.com", "player-secret")

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rec := f.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		var users []services.AdminUser
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("authenticated non-admin gets 403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+playerToken)
		rec := f.do(req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Forbidden", envelope(t, rec).Error)
	})

	t.Run("unauthenticated gets 401, not 403", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestWebPipeline(t *testing.T) {
	f := newFixture(t)

	t.Run("index redirects signed-out browsers to login", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("login page is public", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "csrf")
	})

	t.Run("form post without a CSRF token is rejected", func(t *testing.T) {
		form := strings.NewReader("email=player%40test.com&password=player-secret")
		req := httptest.NewRequest(http.MethodPost, "/login", form)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := f.do(req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown web path redirects to login", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("healthz bypasses both pipelines", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

// signToken builds a raw HS256 token outside the codec, for forgery and
// expiry scenarios
func signToken(t *testing.T, key []byte, subject string, expiresAt time.Time) string {
	t.Helper()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		"exp": jwt.NewNumericDate(expiresAt),
	})
	token, err := raw.SignedString(key)
	require.NoError(t, err)
	return token
}
