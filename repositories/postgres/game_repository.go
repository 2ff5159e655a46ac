package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/checkpoint/api/models"
	"github.com/checkpoint/api/repositories"
)

// GameRepository implements the repositories.GameRepository interface
type GameRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *DB, logger *zap.Logger) repositories.GameRepository {
	return &GameRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new game
func (r *GameRepository) Create(ctx context.Context, game *models.VideoGame) error {
	query := `
		INSERT INTO video_games (id, external_id, title, summary, cover_url, release_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		game.ID,
		game.ExternalID,
		game.Title,
		game.Summary,
		game.CoverURL,
		game.ReleaseDate,
		game.CreatedAt,
		game.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	r.logger.Debug("game created", zap.String("id", game.ID.String()), zap.String("title", game.Title))
	return nil
}

// GetByID retrieves a game by ID
func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VideoGame, error) {
	query := `
		SELECT id, external_id, title, summary, cover_url, release_date, created_at, updated_at
		FROM video_games
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByExternalID retrieves a game by its IGDB identifier
func (r *GameRepository) GetByExternalID(ctx context.Context, externalID int64) (*models.VideoGame, error) {
	query := `
		SELECT id, external_id, title, summary, cover_url, release_date, created_at, updated_at
		FROM video_games
		WHERE external_id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, externalID))
}

// Update updates an existing game
func (r *GameRepository) Update(ctx context.Context, game *models.VideoGame) error {
	query := `
		UPDATE video_games
		SET title = $2, summary = $3, cover_url = $4, release_date = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		game.ID,
		game.Title,
		game.Summary,
		game.CoverURL,
		game.ReleaseDate,
		game.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return repositories.ErrNotFound
	}

	return nil
}

// sortColumns maps allowed sort fields to their columns. Unknown fields fall
// back to release_date so user input never reaches the query directly.
var sortColumns = map[string]string{
	"release_date": "release_date",
	"title":        "title",
	"created_at":   "created_at",
}

// List retrieves a page of games
func (r *GameRepository) List(ctx context.Context, sort repositories.GameSort, limit, offset int) ([]*models.VideoGame, error) {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "release_date"
	}
	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, external_id, title, summary, cover_url, release_date, created_at, updated_at
		FROM video_games
		ORDER BY %s %s NULLS LAST, id
		LIMIT $1 OFFSET $2
	`, column, direction)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.VideoGame
	for rows.Next() {
		game := &models.VideoGame{}
		if err := rows.Scan(
			&game.ID,
			&game.ExternalID,
			&game.Title,
			&game.Summary,
			&game.CoverURL,
			&game.ReleaseDate,
			&game.CreatedAt,
			&game.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}

	return games, nil
}

// Count returns the total number of games in the catalog
func (r *GameRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM video_games`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

func (r *GameRepository) scanOne(row *sql.Row) (*models.VideoGame, error) {
	game := &models.VideoGame{}
	err := row.Scan(
		&game.ID,
		&game.ExternalID,
		&game.Title,
		&game.Summary,
		&game.CoverURL,
		&game.ReleaseDate,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}
