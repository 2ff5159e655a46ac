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
)

// LibraryEntry is the response projection of a user's library entry,
// including the game card it refers to
type LibraryEntry struct {
	ID        uuid.UUID         `json:"id"`
	Game      GameCard          `json:"game"`
	Status    models.GameStatus `json:"status"`
	AddedAt   time.Time         `json:"added_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CollectionService manages the authenticated user's game library
type CollectionService struct {
	userGames repositories.UserGameRepository
	games     repositories.GameRepository
	logger    *zap.Logger
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(userGames repositories.UserGameRepository, games repositories.GameRepository, logger *zap.Logger) *CollectionService {
	return &CollectionService{
		userGames: userGames,
		games:     games,
		logger:    logger,
	}
}

// AddGame adds a game to the user's library with the given status
func (s *CollectionService) AddGame(ctx context.Context, userID, gameID uuid.UUID, status models.GameStatus) (*LibraryEntry, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}

	entry := models.NewUserGame(userID, gameID, status)
	if err := s.userGames.Create(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrGameAlreadyInLibrary
		}
		return nil, fmt.Errorf("add game to library: %w", err)
	}

	s.logger.Info("game added to library",
		zap.String("user_id", userID.String()),
		zap.String("game_id", gameID.String()),
		zap.String("status", string(status)))

	return s.toEntry(entry, game), nil
}

// UpdateStatus changes the status of a game in the user's library
func (s *CollectionService) UpdateStatus(ctx context.Context, userID, gameID uuid.UUID, status models.GameStatus) (*LibraryEntry, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	entry, err := s.userGames.UpdateStatus(ctx, userID, gameID, status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGameNotInLibrary
		}
		return nil, fmt.Errorf("update library entry: %w", err)
	}

	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}

	return s.toEntry(entry, game), nil
}

// RemoveGame removes a game from the user's library
func (s *CollectionService) RemoveGame(ctx context.Context, userID, gameID uuid.UUID) error {
	if err := s.userGames.Delete(ctx, userID, gameID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrGameNotInLibrary
		}
		return fmt.Errorf("remove game from library: %w", err)
	}
	return nil
}

// GetLibrary returns one page of the user's library, newest first
func (s *CollectionService) GetLibrary(ctx context.Context, userID uuid.UUID, page, size int) (*Page, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	entries, err := s.userGames.ListByUser(ctx, userID, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}

	total, err := s.userGames.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count library: %w", err)
	}

	result := make([]LibraryEntry, 0, len(entries))
	for _, entry := range entries {
		game, err := s.games.GetByID(ctx, entry.GameID)
		if err != nil {
			// catalog row removed underneath the library entry; skip it
			s.logger.Warn("library entry references missing game",
				zap.String("game_id", entry.GameID.String()))
			continue
		}
		result = append(result, *s.toEntry(entry, game))
	}

	return NewPage(result, page, size, total), nil
}

func (s *CollectionService) toEntry(entry *models.UserGame, game *models.VideoGame) *LibraryEntry {
	return &LibraryEntry{
		ID: entry.ID,
		Game: GameCard{
			ID:          game.ID,
			Title:       game.Title,
			CoverURL:    game.CoverURL,
			ReleaseDate: game.ReleaseDate,
		},
		Status:    entry.Status,
		AddedAt:   entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}
