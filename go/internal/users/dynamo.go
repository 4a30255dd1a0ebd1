package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// DynamoRepository implements user data access on the key-value provider.
// Every write keeps the synthetic index attributes in step with the source
// fields: email_lc mirrors email for the case-insensitive GSI and admin_flag
// mirrors is_admin as a string, since index keys cannot be booleans.
type DynamoRepository struct {
	store storage.Provider
}

// NewDynamoRepository creates a users repository backed by DynamoDB.
func NewDynamoRepository(store storage.Provider) *DynamoRepository {
	return &DynamoRepository{store: store}
}

// CreateUser inserts a new user item with its synthetic attributes and
// returns it with storage timestamps.
func (r *DynamoRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	rec := userToRecord(user)
	rec[storage.AttrEmailLC] = strings.ToLower(user.Email)
	rec[storage.AttrAdminFlag] = storage.FlagValue(user.IsAdmin)

	if err := r.store.Put(ctx, storage.TableUsers, rec); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetUser(ctx, user.ID)
}

// GetUser retrieves a user by ID.
func (r *DynamoRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	rec, err := r.store.Get(ctx, storage.TableUsers, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userFromRecord(rec), nil
}

// GetUserByEmail looks up a user through the email GSI. The caller passes the
// email already lower-cased to match the synthetic attribute.
func (r *DynamoRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableUsers, storage.Query{
		Index: storage.IndexUsersByEmail,
		Key:   map[string]any{storage.AttrEmailLC: strings.ToLower(email)},
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
func (r *DynamoRepository) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableUsers, storage.Query{
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

// UpdateProfile applies the changed profile fields. An email change also
// rewrites the email_lc attribute so the GSI stays queryable.
func (r *DynamoRepository) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	fields := map[string]any{}
	if req.Email != nil {
		fields["email"] = *req.Email
		fields[storage.AttrEmailLC] = strings.ToLower(*req.Email)
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

// SetAdminStatus flips the admin flag and its synthetic mirror together.
func (r *DynamoRepository) SetAdminStatus(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.User, error) {
	rec, err := r.store.Update(ctx, storage.TableUsers, id.String(), map[string]any{
		"is_admin":            isAdmin,
		storage.AttrAdminFlag: storage.FlagValue(isAdmin),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set admin status: %w", err)
	}
	return userFromRecord(rec), nil
}

// SetEmailVerified records the email verification state.
func (r *DynamoRepository) SetEmailVerified(ctx context.Context, id uuid.UUID, verified bool) (*models.User, error) {
	rec, err := r.store.Update(ctx, storage.TableUsers, id.String(), map[string]any{
		"email_verified": verified,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set email verified: %w", err)
	}
	return userFromRecord(rec), nil
}

// SetResetToken stores a password reset token with its expiry. The token
// attribute doubles as the reset-token GSI key.
func (r *DynamoRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) (*models.User, error) {
	rec, err := r.store.Update(ctx, storage.TableUsers, id.String(), map[string]any{
		"reset_token":            token,
		"reset_token_expires_at": expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set reset token: %w", err)
	}
	return userFromRecord(rec), nil
}

// ResetPassword swaps in the new password hash and removes the reset token
// attributes, which also drops the item from the reset-token GSI.
func (r *DynamoRepository) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) (*models.User, error) {
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
func (r *DynamoRepository) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.store.Update(ctx, storage.TableUsers, id.String(), map[string]any{
		"last_login_at": at,
	}); err != nil {
		return fmt.Errorf("failed to set last login: %w", err)
	}
	return nil
}

// ListAdmins returns all admin users via the admin-flag GSI.
func (r *DynamoRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableUsers, storage.Query{
		Index: storage.IndexUsersByAdminFlag,
		Key:   map[string]any{storage.AttrAdminFlag: storage.FlagValue(true)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return usersFromRecords(recs), nil
}

// DeleteUser deletes a user by ID.
func (r *DynamoRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, storage.TableUsers, id.String()); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// DeleteParticipationsForUser removes the user's membership rows via the
// participants user GSI.
func (r *DynamoRepository) DeleteParticipationsForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableParticipants, storage.Query{
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

// DeleteInvitationsForEmail removes every invitation carrying the email's
// synthetic lower-case attribute, whatever its status.
func (r *DynamoRepository) DeleteInvitationsForEmail(ctx context.Context, email string) (int, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByEmail,
		Key:   map[string]any{storage.AttrEmailLC: email},
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
