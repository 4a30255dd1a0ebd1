package models

import (
	"time"

	"github.com/google/uuid"
)

// Conference represents an NFL conference
type Conference string

const (
	ConferenceAFC Conference = "AFC"
	ConferenceNFC Conference = "NFC"
)

// Team represents an NFL team. Teams are reference data upserted by sync
// jobs: descriptive fields only fill when previously empty, so the first
// write wins and later syncs never clobber curated values.
type Team struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	City       string     `json:"city,omitempty"`
	Conference Conference `json:"conference"`
	Division   string     `json:"division"`
	Colors     string     `json:"colors,omitempty"`
	LogoURL    string     `json:"logo_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
