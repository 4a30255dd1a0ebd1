package settings

import (
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// settingID is the storage key for one setting on both backends:
// "{category}:{key}".
func settingID(category, key string) string {
	return storage.CompositeKey(category, key)
}

func settingToRecord(s *models.SystemSetting) storage.Record {
	return storage.Record{
		storage.FieldID: settingID(s.Category, s.Key),
		"category":      s.Category,
		"key":           s.Key,
		"value":         s.Value,
		"encrypted":     s.Encrypted,
		"description":   s.Description,
	}
}

func settingFromRecord(rec storage.Record) *models.SystemSetting {
	return &models.SystemSetting{
		Category:    rec.String("category"),
		Key:         rec.String("key"),
		Value:       rec.String("value"),
		Encrypted:   rec.Bool("encrypted"),
		Description: rec.String("description"),
		CreatedAt:   rec.Time(storage.FieldCreatedAt),
		UpdatedAt:   rec.Time(storage.FieldUpdatedAt),
	}
}

func settingsFromRecords(recs []storage.Record) []models.SystemSetting {
	out := make([]models.SystemSetting, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *settingFromRecord(rec))
	}
	return out
}
