package invitations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/crypto"
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// InvitationTTL is how long an invitation stays acceptable.
const InvitationTTL = 7 * 24 * time.Hour

// InvitationsRepository defines the data access layer contract for
// invitations.
type InvitationsRepository interface {
	CreateInvitation(ctx context.Context, inv *models.Invitation) (*models.Invitation, error)
	GetInvitation(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	FindPending(ctx context.Context, pickemGameID *uuid.UUID, email string) (*models.Invitation, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus, acceptedAt *time.Time) (*models.Invitation, error)
	ListByGame(ctx context.Context, pickemGameID uuid.UUID) ([]models.Invitation, error)
	ListPendingByEmail(ctx context.Context, email string) ([]models.Invitation, error)
	DeleteForGame(ctx context.Context, pickemGameID uuid.UUID) (int, error)
	AddParticipant(ctx context.Context, p *models.Participant) error
	GrantAdmin(ctx context.Context, userID uuid.UUID) error
}

// App contains the business logic for inviting users into pick'em games and
// into the admin role.
type App struct {
	repo  InvitationsRepository
	clock clockwork.Clock
}

// NewApp creates an invitations App with the given repository.
func NewApp(repo InvitationsRepository, clock clockwork.Clock) *App {
	return &App{repo: repo, clock: clock}
}

// CreateInvitation invites an email address into a pick'em game, or into the
// admin role when the request carries no game. At most one pending
// invitation may exist per (target, email); the address is matched
// case-insensitively.
func (a *App) CreateInvitation(ctx context.Context, req CreateInvitationRequest) (*models.Invitation, error) {
	if err := validateInvitation(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	email := normalizeEmail(req.Email)

	existing, err := a.CheckExistingInvitation(ctx, req.PickemGameID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("invitation for %s: %w", email, ErrPendingExists)
	}

	token, err := crypto.NewToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	inv := &models.Invitation{
		ID:           uuid.New(),
		PickemGameID: req.PickemGameID,
		Email:        email,
		InvitedBy:    req.InvitedBy,
		Token:        token,
		Status:       models.InvitationStatusPending,
		ExpiresAt:    a.clock.Now().UTC().Add(InvitationTTL),
	}
	created, err := a.repo.CreateInvitation(ctx, inv)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Lost a race with a concurrent invite for the same address.
			return nil, fmt.Errorf("invitation for %s: %w", email, ErrPendingExists)
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	log.Info().
		Str("invitation_id", created.ID.String()).
		Str("email", created.Email).
		Bool("admin", created.IsAdminInvite()).
		Time("expires_at", created.ExpiresAt).
		Msg("invitation created")
	return created, nil
}

// CreateAdminInvitation invites an email address into the admin role.
func (a *App) CreateAdminInvitation(ctx context.Context, email string, invitedBy uuid.UUID) (*models.Invitation, error) {
	return a.CreateInvitation(ctx, CreateInvitationRequest{Email: email, InvitedBy: invitedBy})
}

// CheckExistingInvitation looks for a pending invitation covering this
// target and email, nil when there is none. The email is matched
// case-insensitively.
func (a *App) CheckExistingInvitation(ctx context.Context, pickemGameID *uuid.UUID, email string) (*models.Invitation, error) {
	existing, err := a.repo.FindPending(ctx, pickemGameID, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check existing invitation: %w", err)
	}
	return existing, nil
}

// GetInvitationByToken resolves an invitation token. The lookup fails
// closed: malformed tokens, unknown tokens, and backend trouble all come
// back as not-found, so a token probe can never distinguish them.
func (a *App) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("invitation token: %w", storage.ErrNotFound)
	}

	inv, err := a.repo.GetByToken(ctx, token)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("token lookup failed, reporting not found")
		}
		return nil, fmt.Errorf("invitation token: %w", storage.ErrNotFound)
	}
	return inv, nil
}

// AcceptInvitation redeems a token for the accepting user: game invitations
// enroll them as a MEMBER participant, admin invitations flip their admin
// flag. Only pending, unexpired invitations can be accepted; an expired one
// is marked EXPIRED on the way out.
func (a *App) AcceptInvitation(ctx context.Context, token string, userID uuid.UUID) (*models.Invitation, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("validation failed: %w", errors.New("user id is required"))
	}

	inv, err := a.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, fmt.Errorf("invitation %s is %s: %w", inv.ID, inv.Status, ErrNotPending)
	}

	now := a.clock.Now().UTC()
	if !now.Before(inv.ExpiresAt) {
		if _, err := a.repo.SetStatus(ctx, inv.ID, models.InvitationStatusExpired, nil); err != nil {
			return nil, fmt.Errorf("failed to expire invitation: %w", err)
		}
		return nil, fmt.Errorf("invitation %s expired at %s: %w",
			inv.ID, inv.ExpiresAt.Format(time.RFC3339), ErrExpired)
	}

	if inv.IsAdminInvite() {
		if err := a.repo.GrantAdmin(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to grant admin role: %w", err)
		}
	} else {
		participant := &models.Participant{
			ID:           uuid.New(),
			PickemGameID: *inv.PickemGameID,
			UserID:       userID,
			Role:         models.ParticipantRoleMember,
			JoinedAt:     now,
		}
		if err := a.repo.AddParticipant(ctx, participant); err != nil {
			if !errors.Is(err, storage.ErrConflict) {
				return nil, fmt.Errorf("failed to enroll invitee: %w", err)
			}
			// Already a member; accepting again is harmless.
			log.Warn().
				Str("invitation_id", inv.ID.String()).
				Str("user_id", userID.String()).
				Msg("invitee already a participant")
		}
	}

	accepted, err := a.repo.SetStatus(ctx, inv.ID, models.InvitationStatusAccepted, &now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invitation accepted: %w", err)
	}

	log.Info().
		Str("invitation_id", accepted.ID.String()).
		Str("user_id", userID.String()).
		Bool("admin", accepted.IsAdminInvite()).
		Msg("invitation accepted")
	return accepted, nil
}

// DeclineInvitation lets the invitee refuse a pending invitation by token.
func (a *App) DeclineInvitation(ctx context.Context, token string) (*models.Invitation, error) {
	inv, err := a.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, fmt.Errorf("invitation %s is %s: %w", inv.ID, inv.Status, ErrNotPending)
	}

	declined, err := a.repo.SetStatus(ctx, inv.ID, models.InvitationStatusDeclined, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decline invitation: %w", err)
	}

	log.Info().Str("invitation_id", declined.ID.String()).Msg("invitation declined")
	return declined, nil
}

// CancelInvitation lets the inviter or an admin revoke a pending invitation
// by ID, freeing the (target, email) slot for a fresh invite.
func (a *App) CancelInvitation(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	inv, err := a.repo.GetInvitation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, fmt.Errorf("invitation %s is %s: %w", inv.ID, inv.Status, ErrNotPending)
	}

	cancelled, err := a.repo.SetStatus(ctx, inv.ID, models.InvitationStatusCancelled, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel invitation: %w", err)
	}

	log.Info().Str("invitation_id", cancelled.ID.String()).Msg("invitation cancelled")
	return cancelled, nil
}

// ListInvitationsForGame returns every invitation targeting a pick'em game,
// newest last.
func (a *App) ListInvitationsForGame(ctx context.Context, pickemGameID uuid.UUID) ([]models.Invitation, error) {
	invs, err := a.repo.ListByGame(ctx, pickemGameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	sortInvitations(invs)
	return invs, nil
}

// ListPendingForEmail returns the pending invitations addressed to an email,
// across games and admin grants, for the invitee's dashboard.
func (a *App) ListPendingForEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	invs, err := a.repo.ListPendingByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	sortInvitations(invs)
	return invs, nil
}

// DeleteInvitationsForGame removes every invitation targeting a pick'em game
// and returns how many were deleted.
func (a *App) DeleteInvitationsForGame(ctx context.Context, pickemGameID uuid.UUID) (int, error) {
	deleted, err := a.repo.DeleteForGame(ctx, pickemGameID)
	if err != nil {
		return deleted, fmt.Errorf("failed to delete invitations for game: %w", err)
	}
	return deleted, nil
}

func sortInvitations(invs []models.Invitation) {
	sort.Slice(invs, func(i, j int) bool {
		if !invs[i].CreatedAt.Equal(invs[j].CreatedAt) {
			return invs[i].CreatedAt.Before(invs[j].CreatedAt)
		}
		return invs[i].ID.String() < invs[j].ID.String()
	})
}

func validateInvitation(req CreateInvitationRequest) error {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("invalid email address: %s", email)
	}
	if req.InvitedBy == uuid.Nil {
		return errors.New("inviter id is required")
	}
	if req.PickemGameID != nil && *req.PickemGameID == uuid.Nil {
		return errors.New("pickem game id cannot be the zero id")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
