package invitations

import (
	"github.com/google/uuid"
)

// CreateInvitationRequest invites an email address into a pick'em game, or
// into the admin role when PickemGameID is nil.
type CreateInvitationRequest struct {
	PickemGameID *uuid.UUID `json:"pickem_game_id,omitempty"`
	Email        string     `json:"email"`
	InvitedBy    uuid.UUID  `json:"invited_by"`
}
