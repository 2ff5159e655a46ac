package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/checkpoint/api/models"
	"github.com/checkpoint/api/repositories"
)

// UserGameRepository implements the repositories.UserGameRepository interface
type UserGameRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserGameRepository creates a new user library repository
func NewUserGameRepository(db *DB, logger *zap.Logger) repositories.UserGameRepository {
	return &UserGameRepository{
		db:     db,
		logger: logger,
	}
}

// Create adds a game to a user's library
func (r *UserGameRepository) Create(ctx context.Context, entry *models.UserGame) error {
	query := `
		INSERT INTO user_games (id, user_id, game_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.GameID,
		entry.Status,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to add game to library: %w", err)
	}

	r.logger.Debug("library entry created",
		zap.String("user_id", entry.UserID.String()),
		zap.String("game_id", entry.GameID.String()),
		zap.String("status", string(entry.Status)))
	return nil
}

// GetByUserAndGame retrieves a library entry
func (r *UserGameRepository) GetByUserAndGame(ctx context.Context, userID, gameID uuid.UUID) (*models.UserGame, error) {
	query := `
		SELECT id, user_id, game_id, status, created_at, updated_at
		FROM user_games
		WHERE user_id = $1 AND game_id = $2
	`

	entry := &models.UserGame{}
	err := r.db.QueryRowContext(ctx, query, userID, gameID).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.GameID,
		&entry.Status,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get library entry: %w", err)
	}

	return entry, nil
}

// UpdateStatus changes the status of a library entry
func (r *UserGameRepository) UpdateStatus(ctx context.Context, userID, gameID uuid.UUID, status models.GameStatus) (*models.UserGame, error) {
	query := `
		UPDATE user_games
		SET status = $3, updated_at = $4
		WHERE user_id = $1 AND game_id = $2
		RETURNING id, user_id, game_id, status, created_at, updated_at
	`

	entry := &models.UserGame{}
	err := r.db.QueryRowContext(ctx, query, userID, gameID, status, time.Now()).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.GameID,
		&entry.Status,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update library entry: %w", err)
	}

	return entry, nil
}

// Delete removes a game from a user's library
func (r *UserGameRepository) Delete(ctx context.Context, userID, gameID uuid.UUID) error {
	query := `DELETE FROM user_games WHERE user_id = $1 AND game_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete library entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return repositories.ErrNotFound
	}

	return nil
}

// ListByUser retrieves a page of a user's library, newest first
func (r *UserGameRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserGame, error) {
	query := `
		SELECT id, user_id, game_id, status, created_at, updated_at
		FROM user_games
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	defer rows.Close()

	var entries []*models.UserGame
	for rows.Next() {
		entry := &models.UserGame{}
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.GameID,
			&entry.Status,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan library entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate library: %w", err)
	}

	return entries, nil
}

// CountByUser returns the size of a user's library
func (r *UserGameRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_games WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count library: %w", err)
	}
	return count, nil
}
