package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/checkpoint/api/models"
	"github.com/checkpoint/api/repositories"
	"github.com/checkpoint/api/services/igdb"
)

// MaxSearchLimit caps external search result counts
const MaxSearchLimit = 50

// AdminUser is the admin-facing projection of a registered user
type AdminUser struct {
	ID     uuid.UUID   `json:"id"`
	Pseudo string      `json:"pseudo"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// ExternalGame is a search result from the external catalog
type ExternalGame struct {
	ExternalID  int64      `json:"external_id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	CoverURL    string     `json:"cover_url"`
	ReleaseDate *time.Time `json:"release_date"`
}

// ExternalCatalog is the external game source consumed by the admin import
// flow; implemented by the IGDB client.
type ExternalCatalog interface {
	Search(ctx context.Context, query string, limit int) ([]igdb.Game, error)
	GetByID(ctx context.Context, externalID int64) (*igdb.Game, error)
}

// AdminService provides admin-only user and catalog management
type AdminService struct {
	users    repositories.UserRepository
	games    repositories.GameRepository
	external ExternalCatalog
	logger   *zap.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(users repositories.UserRepository, games repositories.GameRepository, external ExternalCatalog, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:    users,
		games:    games,
		external: external,
		logger:   logger,
	}
}

// ListUsers returns all registered users
func (s *AdminService) ListUsers(ctx context.Context) ([]AdminUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	result := make([]AdminUser, 0, len(users))
	for _, u := range users {
		result = append(result, AdminUser{
			ID:     u.ID,
			Pseudo: u.Pseudo,
			Email:  u.Email,
			Role:   u.Role,
		})
	}
	return result, nil
}

// SearchExternalGames searches the external catalog. Limit is clamped to
// [1, MaxSearchLimit].
func (s *AdminService) SearchExternalGames(ctx context.Context, query string, limit int) ([]ExternalGame, error) {
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	games, err := s.external.Search(ctx, query, limit)
	if err != nil {
		return nil, mapExternalError(err)
	}

	result := make([]ExternalGame, 0, len(games))
	for i := range games {
		g := &games[i]
		result = append(result, ExternalGame{
			ExternalID:  g.ID,
			Title:       g.Name,
			Summary:     g.Summary,
			CoverURL:    g.CoverURL(),
			ReleaseDate: g.ReleaseDate(),
		})
	}
	return result, nil
}

// ImportGame fetches a game from the external catalog and upserts it into the
// local catalog. An already-imported game is refreshed in place.
func (s *AdminService) ImportGame(ctx context.Context, externalID int64) (*GameDetail, error) {
	external, err := s.external.GetByID(ctx, externalID)
	if err != nil {
		return nil, mapExternalError(err)
	}

	existing, err := s.games.GetByExternalID(ctx, externalID)
	switch {
	case err == nil:
		existing.Title = external.Name
		existing.Summary = external.Summary
		existing.CoverURL = external.CoverURL()
		existing.ReleaseDate = external.ReleaseDate()
		existing.UpdatedAt = time.Now()
		if err := s.games.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update imported game: %w", err)
		}
		s.logger.Info("imported game refreshed",
			zap.Int64("external_id", externalID),
			zap.String("title", existing.Title))
		return gameDetail(existing), nil

	case errors.Is(err, repositories.ErrNotFound):
		game := models.NewVideoGame(external.ID, external.Name, external.Summary,
			external.CoverURL(), external.ReleaseDate())
		if err := s.games.Create(ctx, game); err != nil {
			return nil, fmt.Errorf("create imported game: %w", err)
		}
		s.logger.Info("game imported",
			zap.Int64("external_id", externalID),
			zap.String("title", game.Title))
		return gameDetail(game), nil

	default:
		return nil, fmt.Errorf("lookup imported game: %w", err)
	}
}

// mapExternalError translates IGDB client errors to service errors
func mapExternalError(err error) error {
	switch {
	case errors.Is(err, igdb.ErrNotFound):
		return ErrExternalGameNotFound
	case errors.Is(err, igdb.ErrUnavailable):
		return ErrExternalUnavailable
	default:
		return fmt.Errorf("external catalog: %w", err)
	}
}
