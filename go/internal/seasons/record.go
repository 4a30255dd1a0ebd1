package seasons

import (
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

func seasonToRecord(s *models.Season) storage.Record {
	rec := storage.Record{
		storage.FieldID: s.ID.String(),
		"year":          s.Year,
		"is_current":    s.IsCurrent,
	}
	if !s.CreatedAt.IsZero() {
		rec[storage.FieldCreatedAt] = s.CreatedAt
	}
	if !s.UpdatedAt.IsZero() {
		rec[storage.FieldUpdatedAt] = s.UpdatedAt
	}
	return rec
}

func seasonFromRecord(rec storage.Record) *models.Season {
	return &models.Season{
		ID:        rec.UUID(storage.FieldID),
		Year:      rec.Int("year"),
		IsCurrent: rec.Bool("is_current"),
		CreatedAt: rec.Time(storage.FieldCreatedAt),
		UpdatedAt: rec.Time(storage.FieldUpdatedAt),
	}
}

func seasonsFromRecords(recs []storage.Record) []models.Season {
	out := make([]models.Season, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *seasonFromRecord(rec))
	}
	return out
}
