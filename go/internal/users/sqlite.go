package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SQLiteRepository implements user data access on the relational provider.
// Email lookups lean on the COLLATE NOCASE column and the partial unique
// index on reset_token keeps live tokens unambiguous, so no synthetic
// attributes are maintained here.
type SQLiteRepository struct {
	store storage.Provider
}

// NewSQLiteRepository creates a users repository backed by SQLite.
func NewSQLiteRepository(store storage.Provider) *SQLiteRepository {
	return &SQLiteRepository{store: store}
}

// CreateUser inserts a new user and returns it with storage timestamps.
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.store.Put(ctx, storage.TableUsers, userToRecord(user)); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetUser(ctx, user.ID)
}

// GetUser retrieves a user by ID.
func (r *SQLiteRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	rec, err := r.store.Get(ctx, storage.TableUsers, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userFromRecord(rec), nil
}

// GetUserByEmail retrieves a user by email. The email column collates
// case-insensitively, so the pre-lowered email matches any stored casing.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	recs, err := r.store.Query(ctx, storage.TableUsers, storage.Query{
		Index: storage.IndexUsersByEmail,
		Key:   map[string]any{"email": email},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to get user by email: %w", storage.ErrNotFound)
	}
	return userFromRecord(recs[0]), nil
}

// GetUserByResetToken retrieves the user holding the given reset token.
func (r *SQLiteRepository) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	recs, err := r.store.Query(ctx, storage.TableUsers, storage.Query{
		Index: storage.IndexUsersByResetToken,
		Key:   map[string]any{"reset_token": token},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to get user by reset token: %w", storage.ErrNotFound)
	}
	return userFromRecord(recs[0]), nil
}

// UpdateProfile applies the changed profile fields and returns the updated
// user.
func (r *SQLiteRepository) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	fields := map[string]any{}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.FavoriteTeamID != nil {
		fields["favorite_team_id"] = req.FavoriteTeamID.String()
	}
	if req.ClearFavoriteTeam {
		fields["favorite_team_id"] = nil
	}
	if len(fields) == 0 {
		return r.GetUser(ctx, id)
	}

	rec, err := r.store.Update(ctx, storage.TableUsers, id.String(), fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return userFromRecord(rec), nil
}

// SetAdminStatus flips the admin flag.
func (r *SQLiteRepository) SetAdminStatus(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.User, error) {
	rec, err := r.store.Update(ctx, storage.TableUsers, id.String(), map[string]any{
		"is_admin": isAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set admin status: %w", err)
	}
	return userFromRecord(rec), nil
}

// SetEmailVerified records the email verification state.
func (r *SQLiteRepository) SetEmailVerified(ctx context.Context, id uuid.UUID, verified bool) (*models.User, error) {
	rec, err := r.store.Update(ctx, storage.TableUsers, id.String(), map[string]any{
		"email_verified": verified,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set email verified: %w", err)
	}
	return userFromRecord(rec), nil
}

// SetResetToken stores a password reset token with its expiry.
func (r *SQLiteRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) (*models.User, error) {
	rec, err := r.store.Update(ctx, storage.TableUsers, id.String(), map[string]any{
		"reset_token":            token,
		"reset_token_expires_at": expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set reset token: %w", err)
	}
	return userFromRecord(rec), nil
}

// ResetPassword swaps in the new password hash and clears the reset token in
// the same write.
func (r *SQLiteRepository) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) (*models.User, error) {
	rec, err := r.store.Update(ctx, storage.TableUsers, id.String(), map[string]any{
		"password_hash":          passwordHash,
		"reset_token":            nil,
		"reset_token_expires_at": nil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	return userFromRecord(rec), nil
}

// SetLastLogin records the most recent login time.
func (r *SQLiteRepository) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.store.Update(ctx, storage.TableUsers, id.String(), map[string]any{
		"last_login_at": at,
	}); err != nil {
		return fmt.Errorf("failed to set last login: %w", err)
	}
	return nil
}

// ListAdmins returns all users with the admin flag set.
func (r *SQLiteRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	recs, err := r.store.Query(ctx, storage.TableUsers, storage.Query{
		Index: storage.IndexUsersByAdminFlag,
		Key:   map[string]any{"is_admin": true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return usersFromRecords(recs), nil
}

// DeleteUser deletes a user by ID.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, storage.TableUsers, id.String()); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// DeleteParticipationsForUser removes the user's membership rows across all
// pick'em games.
func (r *SQLiteRepository) DeleteParticipationsForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	recs, err := r.store.Query(ctx, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByUser,
		Key:   map[string]any{"user_id": userID.String()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list participations: %w", err)
	}
	for _, rec := range recs {
		if err := r.store.Delete(ctx, storage.TableParticipants, rec.String(storage.FieldID)); err != nil {
			return 0, fmt.Errorf("failed to delete participation: %w", err)
		}
	}
	return len(recs), nil
}

// DeleteInvitationsForEmail removes every invitation addressed to the email,
// whatever its status. The NOCASE column matches any stored casing.
func (r *SQLiteRepository) DeleteInvitationsForEmail(ctx context.Context, email string) (int, error) {
	recs, err := r.store.Query(ctx, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByEmail,
		Key:   map[string]any{"email": email},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list invitations: %w", err)
	}
	for _, rec := range recs {
		if err := r.store.Delete(ctx, storage.TableInvitations, rec.String(storage.FieldID)); err != nil {
			return 0, fmt.Errorf("failed to delete invitation: %w", err)
		}
	}
	return len(recs), nil
}
