package models

import (
	"time"

	"github.com/google/uuid"
)

// Season represents an NFL season. At most one season is current at a time.
type Season struct {
	ID        uuid.UUID `json:"id"`
	Year      int       `json:"year"`
	IsCurrent bool      `json:"is_current"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
