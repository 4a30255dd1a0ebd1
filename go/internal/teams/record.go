package teams

import (
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

func teamToRecord(t *models.Team) storage.Record {
	rec := storage.Record{
		storage.FieldID: t.ID.String(),
		"code":          t.Code,
		"name":          t.Name,
		"city":          t.City,
		"conference":    string(t.Conference),
		"division":      t.Division,
		"colors":        t.Colors,
		"logo_url":      t.LogoURL,
	}
	if !t.CreatedAt.IsZero() {
		rec[storage.FieldCreatedAt] = t.CreatedAt
	}
	if !t.UpdatedAt.IsZero() {
		rec[storage.FieldUpdatedAt] = t.UpdatedAt
	}
	return rec
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

func teamsFromRecords(recs []storage.Record) []models.Team {
	out := make([]models.Team, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *teamFromRecord(rec))
	}
	return out
}

// updateFields flattens an update request into provider field writes.
func updateFields(req UpdateTeamRequest) map[string]any {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.City != nil {
		fields["city"] = *req.City
	}
	if req.Conference != nil {
		fields["conference"] = string(*req.Conference)
	}
	if req.Division != nil {
		fields["division"] = *req.Division
	}
	if req.Colors != nil {
		fields["colors"] = *req.Colors
	}
	if req.LogoURL != nil {
		fields["logo_url"] = *req.LogoURL
	}
	return fields
}
