package invitations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SQLiteRepository implements invitation data access on the relational
// provider. A partial unique index on (target, email) WHERE status='PENDING'
// backs the one-pending-invitation rule, with the email column collated
// case-insensitively.
type SQLiteRepository struct {
	store storage.Provider
}

// NewSQLiteRepository creates an invitations repository backed by SQLite.
func NewSQLiteRepository(store storage.Provider) *SQLiteRepository {
	return &SQLiteRepository{store: store}
}

// CreateInvitation inserts a new invitation and returns it with storage
// timestamps.
func (r *SQLiteRepository) CreateInvitation(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	if err := r.store.Put(ctx, storage.TableInvitations, invitationToRecord(inv)); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return r.GetInvitation(ctx, inv.ID)
}

// GetInvitation retrieves an invitation by ID.
func (r *SQLiteRepository) GetInvitation(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	rec, err := r.store.Get(ctx, storage.TableInvitations, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return invitationFromRecord(rec), nil
}

// GetByToken retrieves an invitation by its opaque token.
func (r *SQLiteRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	recs, err := r.store.Query(ctx, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByToken,
		Key:   map[string]any{"token": token},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation by token: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to get invitation by token: %w", storage.ErrNotFound)
	}
	return invitationFromRecord(recs[0]), nil
}

// FindPending returns the pending invitation for this target and email, if
// one exists. A nil pickemGameID matches admin invitations, whose game
// column is NULL.
func (r *SQLiteRepository) FindPending(ctx context.Context, pickemGameID *uuid.UUID, email string) (*models.Invitation, error) {
	key := map[string]any{
		"email":          email,
		"status":         string(models.InvitationStatusPending),
		"pickem_game_id": nil,
	}
	if pickemGameID != nil {
		key["pickem_game_id"] = pickemGameID.String()
	}

	recs, err := r.store.Query(ctx, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByPending,
		Key:   key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find pending invitation: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to find pending invitation: %w", storage.ErrNotFound)
	}
	return invitationFromRecord(recs[0]), nil
}

// SetStatus moves an invitation to a new status, stamping accepted_at when
// given.
func (r *SQLiteRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus, acceptedAt *time.Time) (*models.Invitation, error) {
	fields := map[string]any{"status": string(status)}
	if acceptedAt != nil {
		fields["accepted_at"] = *acceptedAt
	}

	rec, err := r.store.Update(ctx, storage.TableInvitations, id.String(), fields)
	if err != nil {
		return nil, fmt.Errorf("failed to set invitation status: %w", err)
	}
	return invitationFromRecord(rec), nil
}

// ListByGame returns every invitation targeting a pick'em game, any status.
func (r *SQLiteRepository) ListByGame(ctx context.Context, pickemGameID uuid.UUID) ([]models.Invitation, error) {
	recs, err := r.store.Query(ctx, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByGame,
		Key:   map[string]any{"pickem_game_id": pickemGameID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitationsFromRecords(recs), nil
}

// ListPendingByEmail returns the pending invitations addressed to an email,
// across games and admin grants.
func (r *SQLiteRepository) ListPendingByEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	recs, err := r.store.Query(ctx, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByEmail,
		Key: map[string]any{
			"email":  email,
			"status": string(models.InvitationStatusPending),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	return invitationsFromRecords(recs), nil
}

// DeleteForGame removes every invitation targeting a pick'em game and
// returns how many went away.
func (r *SQLiteRepository) DeleteForGame(ctx context.Context, pickemGameID uuid.UUID) (int, error) {
	recs, err := r.store.Query(ctx, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByGame,
		Key:   map[string]any{"pickem_game_id": pickemGameID.String()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list invitations for delete: %w", err)
	}
	for _, rec := range recs {
		if err := r.store.Delete(ctx, storage.TableInvitations, rec.String(storage.FieldID)); err != nil {
			return 0, fmt.Errorf("failed to delete invitation: %w", err)
		}
	}
	return len(recs), nil
}

// AddParticipant enrolls the accepting user into the invitation's game.
func (r *SQLiteRepository) AddParticipant(ctx context.Context, p *models.Participant) error {
	if err := r.store.Put(ctx, storage.TableParticipants, participantToRecord(p)); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// GrantAdmin flips the accepting user's admin flag.
func (r *SQLiteRepository) GrantAdmin(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.store.Update(ctx, storage.TableUsers, userID.String(), map[string]any{
		"is_admin": true,
	}); err != nil {
		return fmt.Errorf("failed to grant admin: %w", err)
	}
	return nil
}
