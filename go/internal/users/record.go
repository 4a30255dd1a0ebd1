package users

import (
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// userToRecord flattens a user into the shared record shape. Optional fields
// stay absent so Put drops them instead of writing nulls.
func userToRecord(u *models.User) storage.Record {
	rec := storage.Record{
		storage.FieldID:  u.ID.String(),
		"email":          u.Email,
		"password_hash":  u.PasswordHash,
		"first_name":     u.FirstName,
		"last_name":      u.LastName,
		"is_admin":       u.IsAdmin,
		"email_verified": u.EmailVerified,
	}
	if u.FavoriteTeamID != nil {
		rec["favorite_team_id"] = u.FavoriteTeamID.String()
	}
	if u.LastLoginAt != nil {
		rec["last_login_at"] = *u.LastLoginAt
	}
	if u.ResetToken != nil {
		rec["reset_token"] = *u.ResetToken
	}
	if u.ResetTokenExpiresAt != nil {
		rec["reset_token_expires_at"] = *u.ResetTokenExpiresAt
	}
	if !u.CreatedAt.IsZero() {
		rec[storage.FieldCreatedAt] = u.CreatedAt
	}
	if !u.UpdatedAt.IsZero() {
		rec[storage.FieldUpdatedAt] = u.UpdatedAt
	}
	return rec
}

// userFromRecord rebuilds the domain model from a stored record.
func userFromRecord(rec storage.Record) *models.User {
	return &models.User{
		ID:                  rec.UUID(storage.FieldID),
		Email:               rec.String("email"),
		PasswordHash:        rec.String("password_hash"),
		FirstName:           rec.String("first_name"),
		LastName:            rec.String("last_name"),
		IsAdmin:             rec.Bool("is_admin"),
		EmailVerified:       rec.Bool("email_verified"),
		FavoriteTeamID:      rec.UUIDPtr("favorite_team_id"),
		LastLoginAt:         rec.TimePtr("last_login_at"),
		ResetToken:          rec.StringPtr("reset_token"),
		ResetTokenExpiresAt: rec.TimePtr("reset_token_expires_at"),
		CreatedAt:           rec.Time(storage.FieldCreatedAt),
		UpdatedAt:           rec.Time(storage.FieldUpdatedAt),
	}
}

func usersFromRecords(recs []storage.Record) []models.User {
	out := make([]models.User, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *userFromRecord(rec))
	}
	return out
}
