package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/checkpoint/api/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint would be violated
	ErrDuplicate = errors.New("record already exists")
)

// GameSort describes the ordering of a catalog listing
type GameSort struct {
	Field      string // release_date, title, created_at
	Descending bool
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves all users ordered by creation time
	List(ctx context.Context) ([]*models.User, error)
}

// GameRepository handles game catalog data operations
type GameRepository interface {
	// Create creates a new game
	Create(ctx context.Context, game *models.VideoGame) error

	// GetByID retrieves a game by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.VideoGame, error)

	// GetByExternalID retrieves a game by its IGDB identifier
	GetByExternalID(ctx context.Context, externalID int64) (*models.VideoGame, error)

	// Update updates an existing game
	Update(ctx context.Context, game *models.VideoGame) error

	// List retrieves a page of games
	List(ctx context.Context, sort GameSort, limit, offset int) ([]*models.VideoGame, error)

	// Count returns the total number of games in the catalog
	Count(ctx context.Context) (int64, error)
}

// UserGameRepository handles user library data operations
type UserGameRepository interface {
	// Create adds a game to a user's library; ErrDuplicate when already present
	Create(ctx context.Context, entry *models.UserGame) error

	// GetByUserAndGame retrieves a library entry
	GetByUserAndGame(ctx context.Context, userID, gameID uuid.UUID) (*models.UserGame, error)

	// UpdateStatus changes the status of a library entry
	UpdateStatus(ctx context.Context, userID, gameID uuid.UUID, status models.GameStatus) (*models.UserGame, error)

	// Delete removes a game from a user's library
	Delete(ctx context.Context, userID, gameID uuid.UUID) error

	// ListByUser retrieves a page of a user's library, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserGame, error)

	// CountByUser returns the size of a user's library
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
