package standings

import (
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

func standingToRecord(s *models.Standing) storage.Record {
	return storage.Record{
		storage.FieldID:  s.ID.String(),
		"pickem_game_id": s.PickemGameID.String(),
		"user_id":        s.UserID.String(),
		"season_id":      s.SeasonID.String(),
		"wins":           s.Wins,
		"losses":         s.Losses,
		"pending":        s.Pending,
	}
}

func standingFromRecord(rec storage.Record) *models.Standing {
	return &models.Standing{
		ID:           rec.UUID(storage.FieldID),
		PickemGameID: rec.UUID("pickem_game_id"),
		UserID:       rec.UUID("user_id"),
		SeasonID:     rec.UUID("season_id"),
		Wins:         rec.Int("wins"),
		Losses:       rec.Int("losses"),
		Pending:      rec.Int("pending"),
		CreatedAt:    rec.Time(storage.FieldCreatedAt),
		UpdatedAt:    rec.Time(storage.FieldUpdatedAt),
	}
}

func standingsFromRecords(recs []storage.Record) []models.Standing {
	out := make([]models.Standing, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *standingFromRecord(rec))
	}
	return out
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

// tallyResults folds pick records into win/loss/pending counts using the
// tri-state is_correct field.
func tallyResults(recs []storage.Record) (wins, losses, pending int) {
	for _, rec := range recs {
		switch correct := rec.BoolPtr("is_correct"); {
		case correct == nil:
			pending++
		case *correct:
			wins++
		default:
			losses++
		}
	}
	return wins, losses, pending
}
