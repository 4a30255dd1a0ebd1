package models

import (
	"time"

	"github.com/google/uuid"
)

// Standing represents a participant's computed record within a pick'em game.
// Standings are derived from settled picks and recomputed by the calculator;
// they are never edited directly.
type Standing struct {
	ID           uuid.UUID `json:"id"`
	PickemGameID uuid.UUID `json:"pickem_game_id"`
	UserID       uuid.UUID `json:"user_id"`
	SeasonID     uuid.UUID `json:"season_id"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Pending      int       `json:"pending"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
