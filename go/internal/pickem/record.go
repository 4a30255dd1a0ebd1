package pickem

import (
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

func pickemGameToRecord(g *models.PickemGame) storage.Record {
	rec := storage.Record{
		storage.FieldID:   g.ID.String(),
		"season_id":       g.SeasonID.String(),
		"commissioner_id": g.CommissionerID.String(),
		"name":            g.Name,
		"type":            string(g.Type),
		"is_active":       g.IsActive,
	}
	if !g.CreatedAt.IsZero() {
		rec[storage.FieldCreatedAt] = g.CreatedAt
	}
	if !g.UpdatedAt.IsZero() {
		rec[storage.FieldUpdatedAt] = g.UpdatedAt
	}
	return rec
}

func pickemGameFromRecord(rec storage.Record) *models.PickemGame {
	return &models.PickemGame{
		ID:             rec.UUID(storage.FieldID),
		SeasonID:       rec.UUID("season_id"),
		CommissionerID: rec.UUID("commissioner_id"),
		Name:           rec.String("name"),
		Type:           models.PickemGameType(rec.String("type")),
		IsActive:       rec.Bool("is_active"),
		CreatedAt:      rec.Time(storage.FieldCreatedAt),
		UpdatedAt:      rec.Time(storage.FieldUpdatedAt),
	}
}

func pickemGamesFromRecords(recs []storage.Record) []models.PickemGame {
	out := make([]models.PickemGame, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *pickemGameFromRecord(rec))
	}
	return out
}

func participantToRecord(p *models.Participant) storage.Record {
	rec := storage.Record{
		storage.FieldID:  p.ID.String(),
		"pickem_game_id": p.PickemGameID.String(),
		"user_id":        p.UserID.String(),
		"role":           string(p.Role),
		"joined_at":      p.JoinedAt,
	}
	if !p.CreatedAt.IsZero() {
		rec[storage.FieldCreatedAt] = p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		rec[storage.FieldUpdatedAt] = p.UpdatedAt
	}
	return rec
}

func participantFromRecord(rec storage.Record) *models.Participant {
	return &models.Participant{
		ID:           rec.UUID(storage.FieldID),
		PickemGameID: rec.UUID("pickem_game_id"),
		UserID:       rec.UUID("user_id"),
		Role:         models.ParticipantRole(rec.String("role")),
		JoinedAt:     rec.Time("joined_at"),
		CreatedAt:    rec.Time(storage.FieldCreatedAt),
		UpdatedAt:    rec.Time(storage.FieldUpdatedAt),
	}
}

func participantsFromRecords(recs []storage.Record) []models.Participant {
	out := make([]models.Participant, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *participantFromRecord(rec))
	}
	return out
}

func userFromRecord(rec storage.Record) *models.User {
	return &models.User{
		ID:        rec.UUID(storage.FieldID),
		Email:     rec.String("email"),
		FirstName: rec.String("first_name"),
		LastName:  rec.String("last_name"),
		IsAdmin:   rec.Bool("is_admin"),
		CreatedAt: rec.Time(storage.FieldCreatedAt),
		UpdatedAt: rec.Time(storage.FieldUpdatedAt),
	}
}
