package picks

import (
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

func pickToRecord(p *models.Pick) storage.Record {
	rec := storage.Record{
		storage.FieldID:     p.ID.String(),
		"user_id":           p.UserID.String(),
		"pickem_game_id":    p.PickemGameID.String(),
		"scheduled_game_id": p.ScheduledGameID.String(),
		"picked_team_id":    p.PickedTeamID.String(),
		"week":              p.Week,
		"season_id":         p.SeasonID.String(),
	}
	if p.IsCorrect != nil {
		rec["is_correct"] = *p.IsCorrect
	}
	if p.Tiebreaker != nil {
		rec["tiebreaker"] = *p.Tiebreaker
	}
	if !p.CreatedAt.IsZero() {
		rec[storage.FieldCreatedAt] = p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		rec[storage.FieldUpdatedAt] = p.UpdatedAt
	}
	return rec
}

func pickFromRecord(rec storage.Record) *models.Pick {
	return &models.Pick{
		ID:              rec.UUID(storage.FieldID),
		UserID:          rec.UUID("user_id"),
		PickemGameID:    rec.UUID("pickem_game_id"),
		ScheduledGameID: rec.UUID("scheduled_game_id"),
		PickedTeamID:    rec.UUID("picked_team_id"),
		IsCorrect:       rec.BoolPtr("is_correct"),
		Week:            rec.Int("week"),
		SeasonID:        rec.UUID("season_id"),
		Tiebreaker:      rec.IntPtr("tiebreaker"),
		CreatedAt:       rec.Time(storage.FieldCreatedAt),
		UpdatedAt:       rec.Time(storage.FieldUpdatedAt),
	}
}

func picksFromRecords(recs []storage.Record) []models.Pick {
	out := make([]models.Pick, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *pickFromRecord(rec))
	}
	return out
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

func scheduledGameFromRecord(rec storage.Record) *models.ScheduledGame {
	return &models.ScheduledGame{
		ID:           rec.UUID(storage.FieldID),
		SeasonID:     rec.UUID("season_id"),
		Week:         rec.Int("week"),
		HomeTeamID:   rec.UUID("home_team_id"),
		AwayTeamID:   rec.UUID("away_team_id"),
		GameDate:     rec.Time("game_date"),
		Status:       models.GameStatus(rec.String("status")),
		SeasonType:   models.SeasonType(rec.String("season_type")),
		HomeScore:    rec.IntPtr("home_score"),
		AwayScore:    rec.IntPtr("away_score"),
		LastSyncedAt: rec.TimePtr("last_synced_at"),
		CreatedAt:    rec.Time(storage.FieldCreatedAt),
		UpdatedAt:    rec.Time(storage.FieldUpdatedAt),
	}
}
