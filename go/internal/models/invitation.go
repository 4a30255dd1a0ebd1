package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the lifecycle state of an invitation
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "PENDING"
	InvitationStatusAccepted  InvitationStatus = "ACCEPTED"
	InvitationStatusDeclined  InvitationStatus = "DECLINED"
	InvitationStatusCancelled InvitationStatus = "CANCELLED"
	InvitationStatusExpired   InvitationStatus = "EXPIRED"
)

// Invitation represents an emailed invite into a pick'em game, or an
// admin-role grant when PickemGameID is nil. The token is opaque and unique.
type Invitation struct {
	ID           uuid.UUID        `json:"id"`
	PickemGameID *uuid.UUID       `json:"pickem_game_id,omitempty"`
	Email        string           `json:"email"`
	InvitedBy    uuid.UUID        `json:"invited_by"`
	Token        string           `json:"token"`
	Status       InvitationStatus `json:"status"`
	ExpiresAt    time.Time        `json:"expires_at"`
	AcceptedAt   *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// IsAdminInvite reports whether accepting this invitation grants the admin
// role instead of game membership.
func (i *Invitation) IsAdminInvite() bool {
	return i.PickemGameID == nil
}
