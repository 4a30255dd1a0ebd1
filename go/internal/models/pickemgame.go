package models

import (
	"time"

	"github.com/google/uuid"
)

// PickemGameType represents the format of a pick'em game
type PickemGameType string

const (
	PickemGameTypeWeekly   PickemGameType = "WEEKLY"
	PickemGameTypeSurvivor PickemGameType = "SURVIVOR"
)

// PickemGame represents a pick'em contest that users join for a season
type PickemGame struct {
	ID             uuid.UUID      `json:"id"`
	SeasonID       uuid.UUID      `json:"season_id"`
	CommissionerID uuid.UUID      `json:"commissioner_id"`
	Name           string         `json:"name"`
	Type           PickemGameType `json:"type"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
