package standings

import (
	"github.com/google/uuid"
)

// UpsertStandingRequest writes one participant's computed record. The
// (PickemGameID, UserID) pair decides whether it lands as an insert or an
// update.
type UpsertStandingRequest struct {
	PickemGameID uuid.UUID `json:"pickem_game_id"`
	UserID       uuid.UUID `json:"user_id"`
	SeasonID     uuid.UUID `json:"season_id"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Pending      int       `json:"pending"`
}
