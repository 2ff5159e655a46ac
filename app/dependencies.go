package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/checkpoint/api/auth"
	"github.com/checkpoint/api/config"
	"github.com/checkpoint/api/handlers"
	"github.com/checkpoint/api/middleware"
	"github.com/checkpoint/api/repositories"
	"github.com/checkpoint/api/repositories/postgres"
	"github.com/checkpoint/api/services"
	"github.com/checkpoint/api/services/igdb"
	"github.com/checkpoint/api/session"
)

// Dependencies holds all application dependencies. This is the central wiring
// point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB
	Redis  *redis.Client

	// Repositories
	Users     repositories.UserRepository
	Games     repositories.GameRepository
	UserGames repositories.UserGameRepository

	// Auth core
	TokenCodec *auth.TokenCodec
	Verifier   *auth.CredentialVerifier
	Resolver   *auth.PrincipalResolver
	Sessions   *session.Authenticator

	// Pipeline stages
	Authenticator *middleware.Authenticator
	Rules         *middleware.Rules

	// Handlers
	AuthHandler    *handlers.AuthHandler
	GameHandler    *handlers.GameHandler
	LibraryHandler *handlers.LibraryHandler
	AdminHandler   *handlers.AdminHandler
	HealthHandler  *handlers.HealthHandler
	WebHandler     *handlers.WebHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Infrastructure
	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	deps.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	})
	if err := deps.Redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping session store: %w", err)
	}

	// Repositories
	deps.Users = postgres.NewUserRepository(db, logger)
	deps.Games = postgres.NewGameRepository(db, logger)
	deps.UserGames = postgres.NewUserGameRepository(db, logger)

	// Auth core
	codec, err := auth.NewTokenCodec([]byte(cfg.Auth.SigningKey), cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}
	deps.TokenCodec = codec
	deps.Verifier = auth.NewCredentialVerifier(deps.Users, logger)
	deps.Resolver = auth.NewPrincipalResolver(deps.Users)

	sessionStore := session.NewRedisStore(deps.Redis, cfg.Session.TTL)
	deps.Sessions = session.NewAuthenticator(sessionStore, cfg.Session.CookieName,
		cfg.Session.TTL, cfg.Session.SecureCookies, logger)

	// Pipeline stages
	deps.Authenticator = middleware.NewAuthenticator(codec, deps.Resolver, deps.Sessions, logger)
	deps.Rules = middleware.NewRules("/login", logger)

	// Services and handlers
	authService := services.NewAuthService(deps.Verifier, codec, deps.Sessions, logger)
	catalogService := services.NewCatalogService(deps.Games, logger)
	collectionService := services.NewCollectionService(deps.UserGames, deps.Games, logger)
	igdbClient := igdb.NewClient(cfg.IGDB, logger)
	adminService := services.NewAdminService(deps.Users, deps.Games, igdbClient, logger)

	deps.AuthHandler = handlers.NewAuthHandler(authService, logger)
	deps.GameHandler = handlers.NewGameHandler(catalogService, logger)
	deps.LibraryHandler = handlers.NewLibraryHandler(collectionService, logger)
	deps.AdminHandler = handlers.NewAdminHandler(adminService, logger)
	deps.HealthHandler = handlers.NewHealthHandler(db, deps.Redis, logger)
	deps.WebHandler = handlers.NewWebHandler(authService, logger)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// Close releases all held resources
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn("failed to close session store client", zap.Error(err))
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Warn("failed to close database", zap.Error(err))
		}
	}
}

// NewLogger builds the application logger from configuration
func NewLogger(cfg config.ObservabilityConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
