package models

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantRole represents a participant's role within a pick'em game
type ParticipantRole string

const (
	ParticipantRoleOwner  ParticipantRole = "OWNER"
	ParticipantRoleMember ParticipantRole = "MEMBER"
)

// Participant represents a user's membership in a pick'em game.
// A user participates in a given game at most once.
type Participant struct {
	ID           uuid.UUID       `json:"id"`
	PickemGameID uuid.UUID       `json:"pickem_game_id"`
	UserID       uuid.UUID       `json:"user_id"`
	Role         ParticipantRole `json:"role"`
	JoinedAt     time.Time       `json:"joined_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
