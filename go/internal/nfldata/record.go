package nfldata

import (
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

func gameToRecord(g *models.ScheduledGame) storage.Record {
	rec := storage.Record{
		storage.FieldID: g.ID.String(),
		"season_id":     g.SeasonID.String(),
		"week":          g.Week,
		"home_team_id":  g.HomeTeamID.String(),
		"away_team_id":  g.AwayTeamID.String(),
		"game_date":     g.GameDate,
		"status":        string(g.Status),
		"season_type":   string(g.SeasonType),
	}
	if g.HomeScore != nil {
		rec["home_score"] = *g.HomeScore
	}
	if g.AwayScore != nil {
		rec["away_score"] = *g.AwayScore
	}
	if g.LastSyncedAt != nil {
		rec["last_synced_at"] = *g.LastSyncedAt
	}
	if !g.CreatedAt.IsZero() {
		rec[storage.FieldCreatedAt] = g.CreatedAt
	}
	if !g.UpdatedAt.IsZero() {
		rec[storage.FieldUpdatedAt] = g.UpdatedAt
	}
	return rec
}

func gameFromRecord(rec storage.Record) *models.ScheduledGame {
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

func gamesFromRecords(recs []storage.Record) []models.ScheduledGame {
	out := make([]models.ScheduledGame, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *gameFromRecord(rec))
	}
	return out
}

func teamFromRecord(rec storage.Record) *models.Team {
	return &models.Team{
		ID:         rec.UUID(storage.FieldID),
		Code:       rec.String("code"),
		Name:       rec.String("name"),
		City:       rec.String("city"),
		Conference: models.Conference(rec.String("conference")),
		Division:   rec.String("division"),
		Colors:     rec.String("colors"),
		LogoURL:    rec.String("logo_url"),
		CreatedAt:  rec.Time(storage.FieldCreatedAt),
		UpdatedAt:  rec.Time(storage.FieldUpdatedAt),
	}
}
