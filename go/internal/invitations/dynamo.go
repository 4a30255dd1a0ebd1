package invitations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// adminTarget stands in for the game ID inside pending_key when the
// invitation grants the admin role instead of game membership.
const adminTarget = "admin"

// DynamoRepository implements invitation data access on the key-value
// provider. email_lc mirrors the address for case-insensitive lookups, and
// pending_key ({target}:{email_lc}) is sparse: it is written at creation and
// cleared the moment an invitation leaves PENDING, so the pending index only
// ever holds live invitations.
type DynamoRepository struct {
	store storage.Provider
}

// NewDynamoRepository creates an invitations repository backed by DynamoDB.
func NewDynamoRepository(store storage.Provider) *DynamoRepository {
	return &DynamoRepository{store: store}
}

// CreateInvitation inserts a new invitation with its index attributes and
// returns it with storage timestamps.
func (r *DynamoRepository) CreateInvitation(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	rec := invitationToRecord(inv)
	rec[storage.AttrEmailLC] = inv.Email
	rec[storage.AttrPendingKey] = pendingKey(inv.PickemGameID, inv.Email)

	if err := r.store.Put(ctx, storage.TableInvitations, rec); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return r.GetInvitation(ctx, inv.ID)
}

// GetInvitation retrieves an invitation by ID.
func (r *DynamoRepository) GetInvitation(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	rec, err := r.store.Get(ctx, storage.TableInvitations, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return invitationFromRecord(rec), nil
}

// GetByToken retrieves an invitation by its opaque token.
func (r *DynamoRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableInvitations, storage.Query{
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
// one exists. Only pending invitations carry pending_key, so a hit is
// pending by construction.
func (r *DynamoRepository) FindPending(ctx context.Context, pickemGameID *uuid.UUID, email string) (*models.Invitation, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByPending,
		Key:   map[string]any{storage.AttrPendingKey: pendingKey(pickemGameID, email)},
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
// given. Leaving PENDING drops pending_key so the sparse index forgets the
// invitation.
func (r *DynamoRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus, acceptedAt *time.Time) (*models.Invitation, error) {
	fields := map[string]any{"status": string(status)}
	if status != models.InvitationStatusPending {
		fields[storage.AttrPendingKey] = nil
	}
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
func (r *DynamoRepository) ListByGame(ctx context.Context, pickemGameID uuid.UUID) ([]models.Invitation, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByGame,
		Key:   map[string]any{"pickem_game_id": pickemGameID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitationsFromRecords(recs), nil
}

// ListPendingByEmail returns the pending invitations addressed to an email.
// The email index holds every status, so the pending cut happens here.
func (r *DynamoRepository) ListPendingByEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableInvitations, storage.Query{
		Index: storage.IndexInvitationsByEmail,
		Key:   map[string]any{storage.AttrEmailLC: email},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}

	pending := recs[:0]
	for _, rec := range recs {
		if rec.String("status") == string(models.InvitationStatusPending) {
			pending = append(pending, rec)
		}
	}
	return invitationsFromRecords(pending), nil
}

// DeleteForGame removes every invitation targeting a pick'em game and
// returns how many went away.
func (r *DynamoRepository) DeleteForGame(ctx context.Context, pickemGameID uuid.UUID) (int, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableInvitations, storage.Query{
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

// AddParticipant enrolls the accepting user into the invitation's game,
// computing the same game_user composite the pickem repositories write.
func (r *DynamoRepository) AddParticipant(ctx context.Context, p *models.Participant) error {
	rec := participantToRecord(p)
	rec[storage.AttrGameUser] = storage.CompositeKey(p.PickemGameID.String(), p.UserID.String())

	if err := r.store.Put(ctx, storage.TableParticipants, rec); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// GrantAdmin flips the accepting user's admin flag and its index mirror.
func (r *DynamoRepository) GrantAdmin(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.store.Update(ctx, storage.TableUsers, userID.String(), map[string]any{
		"is_admin":            true,
		storage.AttrAdminFlag: storage.FlagValue(true),
	}); err != nil {
		return fmt.Errorf("failed to grant admin: %w", err)
	}
	return nil
}

func pendingKey(pickemGameID *uuid.UUID, email string) string {
	target := adminTarget
	if pickemGameID != nil {
		target = pickemGameID.String()
	}
	return storage.CompositeKey(target, email)
}
