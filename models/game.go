package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoGame represents a game in the public catalog. ExternalID is the IGDB
// identifier the game was imported from; zero when the game was created
// manually.
type VideoGame struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ExternalID  int64      `json:"external_id" db:"external_id"`
	Title       string     `json:"title" db:"title"`
	Summary     string     `json:"summary" db:"summary"`
	CoverURL    string     `json:"cover_url" db:"cover_url"`
	ReleaseDate *time.Time `json:"release_date" db:"release_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the VideoGame model
func (VideoGame) TableName() string {
	return "video_games"
}

// NewVideoGame creates a new VideoGame instance
func NewVideoGame(externalID int64, title, summary, coverURL string, releaseDate *time.Time) *VideoGame {
	now := time.Now()
	return &VideoGame{
		ID:          uuid.New(),
		ExternalID:  externalID,
		Title:       title,
		Summary:     summary,
		CoverURL:    coverURL,
		ReleaseDate: releaseDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
