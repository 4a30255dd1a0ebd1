package invitations

import (
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

func invitationToRecord(inv *models.Invitation) storage.Record {
	rec := storage.Record{
		storage.FieldID: inv.ID.String(),
		"email":         inv.Email,
		"invited_by":    inv.InvitedBy.String(),
		"token":         inv.Token,
		"status":        string(inv.Status),
		"expires_at":    inv.ExpiresAt,
	}
	if inv.PickemGameID != nil {
		rec["pickem_game_id"] = inv.PickemGameID.String()
	}
	if inv.AcceptedAt != nil {
		rec["accepted_at"] = *inv.AcceptedAt
	}
	return rec
}

func invitationFromRecord(rec storage.Record) *models.Invitation {
	return &models.Invitation{
		ID:           rec.UUID(storage.FieldID),
		PickemGameID: rec.UUIDPtr("pickem_game_id"),
		Email:        rec.String("email"),
		InvitedBy:    rec.UUID("invited_by"),
		Token:        rec.String("token"),
		Status:       models.InvitationStatus(rec.String("status")),
		ExpiresAt:    rec.Time("expires_at"),
		AcceptedAt:   rec.TimePtr("accepted_at"),
		CreatedAt:    rec.Time(storage.FieldCreatedAt),
		UpdatedAt:    rec.Time(storage.FieldUpdatedAt),
	}
}

func invitationsFromRecords(recs []storage.Record) []models.Invitation {
	out := make([]models.Invitation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *invitationFromRecord(rec))
	}
	return out
}

func participantToRecord(p *models.Participant) storage.Record {
	return storage.Record{
		storage.FieldID:  p.ID.String(),
		"pickem_game_id": p.PickemGameID.String(),
		"user_id":        p.UserID.String(),
		"role":           string(p.Role),
		"joined_at":      p.JoinedAt,
	}
}
