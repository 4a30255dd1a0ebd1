package picks

import (
	"github.com/google/uuid"
)

// CreateOrUpdatePickRequest carries one user's choice for one matchup. The
// same request shape serves first-time picks and changes of heart; the
// (user, pickem game, scheduled game) triple decides which it is.
type CreateOrUpdatePickRequest struct {
	UserID          uuid.UUID `json:"user_id"`
	PickemGameID    uuid.UUID `json:"pickem_game_id"`
	ScheduledGameID uuid.UUID `json:"scheduled_game_id"`
	PickedTeamID    uuid.UUID `json:"picked_team_id"`
	Tiebreaker      *int      `json:"tiebreaker,omitempty"`
}

// PickStats aggregates one user's pick results for a season. Accuracy is a
// percentage over settled picks only, rounded to two decimals, zero when
// nothing has settled yet.
type PickStats struct {
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Pending   int     `json:"pending"`
	Accuracy  float64 `json:"accuracy"`
}
