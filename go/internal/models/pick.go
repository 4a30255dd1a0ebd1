package models

import (
	"time"

	"github.com/google/uuid"
)

// Pick represents a user's prediction for one scheduled game within a
// pick'em game. IsCorrect stays nil until the game is resolved.
// A user holds at most one pick per (pickem game, scheduled game).
type Pick struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	PickemGameID    uuid.UUID `json:"pickem_game_id"`
	ScheduledGameID uuid.UUID `json:"scheduled_game_id"`
	PickedTeamID    uuid.UUID `json:"picked_team_id"`
	IsCorrect       *bool     `json:"is_correct,omitempty"`
	Week            int       `json:"week"`
	SeasonID        uuid.UUID `json:"season_id"`
	Tiebreaker      *int      `json:"tiebreaker,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
