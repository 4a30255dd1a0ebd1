package nfldata

import (
	"time"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
)

// UpsertGameRequest identifies a matchup by its natural key and carries the
// schedule fields a sync run may refresh.
type UpsertGameRequest struct {
	SeasonID   uuid.UUID         `json:"season_id"`
	Week       int               `json:"week"`
	HomeTeamID uuid.UUID         `json:"home_team_id"`
	AwayTeamID uuid.UUID         `json:"away_team_id"`
	GameDate   time.Time         `json:"game_date"`
	SeasonType models.SeasonType `json:"season_type,omitempty"`
}

// UpdateScoreRequest carries a score-sync result for one game.
type UpdateScoreRequest struct {
	HomeScore int               `json:"home_score"`
	AwayScore int               `json:"away_score"`
	Status    models.GameStatus `json:"status"`
}

// GameDetail is a scheduled game enriched with its team records.
type GameDetail struct {
	models.ScheduledGame
	HomeTeam *models.Team `json:"home_team,omitempty"`
	AwayTeam *models.Team `json:"away_team,omitempty"`
}

// SyncResult represents the result of syncing a schedule batch
type SyncResult struct {
	TotalProcessed int     `json:"total_processed"`
	Created        int     `json:"created"`
	Updated        int     `json:"updated"`
	Unchanged      int     `json:"unchanged"`
	Errors         []error `json:"errors,omitempty"`
}
