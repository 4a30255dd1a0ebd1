package pickem

import (
	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
)

// CreatePickemGameRequest carries the fields needed to open a new game.
// The commissioner is enrolled as the owner participant in the same call.
type CreatePickemGameRequest struct {
	Name           string                `json:"name"`
	Type           models.PickemGameType `json:"type,omitempty"`
	SeasonID       uuid.UUID             `json:"season_id"`
	CommissionerID uuid.UUID             `json:"commissioner_id"`
}

// UpdatePickemGameRequest carries a partial update. Nil fields are left
// untouched.
type UpdatePickemGameRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// IsZero reports whether the request changes anything.
func (r UpdatePickemGameRequest) IsZero() bool {
	return r.Name == nil && r.IsActive == nil
}

// ParticipantDetail is a participant enriched with their user record.
type ParticipantDetail struct {
	models.Participant
	User *models.User `json:"user,omitempty"`
}
