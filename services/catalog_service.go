package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/checkpoint/api/models"
	"github.com/checkpoint/api/repositories"
)

const (
	// DefaultPageSize is the catalog page size when none is requested
	DefaultPageSize = 20

	// MaxPageSize caps the catalog page size
	MaxPageSize = 100
)

// GameCard is the compact catalog listing projection of a game
type GameCard struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	CoverURL    string     `json:"cover_url"`
	ReleaseDate *time.Time `json:"release_date"`
}

// GameDetail is the full projection of a game
type GameDetail struct {
	ID          uuid.UUID  `json:"id"`
	ExternalID  int64      `json:"external_id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	CoverURL    string     `json:"cover_url"`
	ReleaseDate *time.Time `json:"release_date"`
}

// Page is a paginated response wrapper
type Page struct {
	Content       interface{} `json:"content"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalElements int64       `json:"total_elements"`
	TotalPages    int         `json:"total_pages"`
}

// NewPage builds a Page from content and counts
func NewPage(content interface{}, page, size int, total int64) *Page {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &Page{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// CatalogService provides the public game catalog
type CatalogService struct {
	games  repositories.GameRepository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(games repositories.GameRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		games:  games,
		logger: logger,
	}
}

// GetCatalog returns one page of the catalog. Page is 0-based; size is
// clamped to [1, MaxPageSize]. Sort accepts "field,direction" such as
// "release_date,desc"; unknown fields fall back to release date.
func (s *CatalogService) GetCatalog(ctx context.Context, page, size int, sort string) (*Page, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	games, err := s.games.List(ctx, parseSort(sort), size, page*size)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	total, err := s.games.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count catalog: %w", err)
	}

	cards := make([]GameCard, 0, len(games))
	for _, g := range games {
		cards = append(cards, GameCard{
			ID:          g.ID,
			Title:       g.Title,
			CoverURL:    g.CoverURL,
			ReleaseDate: g.ReleaseDate,
		})
	}

	return NewPage(cards, page, size, total), nil
}

// GetGame returns the detail projection for a single game
func (s *CatalogService) GetGame(ctx context.Context, id uuid.UUID) (*GameDetail, error) {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return gameDetail(game), nil
}

func gameDetail(game *models.VideoGame) *GameDetail {
	return &GameDetail{
		ID:          game.ID,
		ExternalID:  game.ExternalID,
		Title:       game.Title,
		Summary:     game.Summary,
		CoverURL:    game.CoverURL,
		ReleaseDate: game.ReleaseDate,
	}
}

// parseSort parses "field,direction" into a GameSort. Direction defaults to
// descending, matching a newest-first catalog.
func parseSort(sort string) repositories.GameSort {
	parts := strings.SplitN(sort, ",", 2)
	field := strings.ToLower(strings.TrimSpace(parts[0]))
	switch field {
	case "releasedate":
		field = "release_date"
	case "name":
		field = "title"
	case "createdat":
		field = "created_at"
	}

	descending := true
	if len(parts) > 1 && strings.EqualFold(strings.TrimSpace(parts[1]), "asc") {
		descending = false
	}

	return repositories.GameSort{Field: field, Descending: descending}
}
