package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus is the status of a game in a user's personal library
type GameStatus string

const (
	StatusBacklog   GameStatus = "BACKLOG"
	StatusPlaying   GameStatus = "PLAYING"
	StatusCompleted GameStatus = "COMPLETED"
	StatusDropped   GameStatus = "DROPPED"
)

// Valid reports whether s is a known library status
func (s GameStatus) Valid() bool {
	switch s {
	case StatusBacklog, StatusPlaying, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// UserGame links a user to a game in their library with a play status
type UserGame struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	GameID    uuid.UUID  `json:"game_id" db:"game_id"`
	Status    GameStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the UserGame model
func (UserGame) TableName() string {
	return "user_games"
}

// NewUserGame creates a new UserGame instance
func NewUserGame(userID, gameID uuid.UUID, status GameStatus) *UserGame {
	now := time.Now()
	return &UserGame{
		ID:        uuid.New(),
		UserID:    userID,
		GameID:    gameID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
