package pickem

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// PickemRepository defines what the app layer needs from the repository
type PickemRepository interface {
	CreateGame(ctx context.Context, game *models.PickemGame) (*models.PickemGame, error)
	GetGame(ctx context.Context, id uuid.UUID) (*models.PickemGame, error)
	ListGamesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.PickemGame, error)
	UpdateGame(ctx context.Context, id uuid.UUID, req UpdatePickemGameRequest) (*models.PickemGame, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error

	CreateParticipant(ctx context.Context, p *models.Participant) (*models.Participant, error)
	GetParticipant(ctx context.Context, gameID, userID uuid.UUID) (*models.Participant, error)
	ListParticipantsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Participant, error)
	ListParticipantsByUser(ctx context.Context, userID uuid.UUID) ([]models.Participant, error)
	DeleteParticipant(ctx context.Context, id uuid.UUID) error

	DeletePicksForGame(ctx context.Context, gameID uuid.UUID) (int, error)
	DeletePicksForUserInGame(ctx context.Context, gameID, userID uuid.UUID) (int, error)
	DeleteInvitationsForGame(ctx context.Context, gameID uuid.UUID) (int, error)
	DeleteParticipantsForGame(ctx context.Context, gameID uuid.UUID) (int, error)
	DeleteStandingsForGame(ctx context.Context, gameID uuid.UUID) (int, error)

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// App handles pick'em game business logic
type App struct {
	repo  PickemRepository
	clock clockwork.Clock
}

// NewApp creates a new pick'em App
func NewApp(repo PickemRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// CreatePickemGame opens a new game and enrolls the commissioner as its
// owner. If the participant write fails the game row is removed again so no
// ownerless game is left behind.
func (a *App) CreatePickemGame(ctx context.Context, req CreatePickemGameRequest) (*models.PickemGame, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Type == "" {
		req.Type = models.PickemGameTypeWeekly
	}
	if err := validateCreate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	game, err := a.repo.CreateGame(ctx, &models.PickemGame{
		ID:             uuid.New(),
		SeasonID:       req.SeasonID,
		CommissionerID: req.CommissionerID,
		Name:           req.Name,
		Type:           req.Type,
		IsActive:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pickem game: %w", err)
	}

	if _, err := a.repo.CreateParticipant(ctx, &models.Participant{
		ID:           uuid.New(),
		PickemGameID: game.ID,
		UserID:       req.CommissionerID,
		Role:         models.ParticipantRoleOwner,
		JoinedAt:     a.clock.Now().UTC(),
	}); err != nil {
		if delErr := a.repo.DeleteGame(ctx, game.ID); delErr != nil {
			log.Error().Err(delErr).
				Str("pickem_game_id", game.ID.String()).
				Msg("failed to roll back ownerless pickem game")
		}
		return nil, fmt.Errorf("failed to enroll owner: %w", err)
	}

	log.Info().
		Str("pickem_game_id", game.ID.String()).
		Str("commissioner_id", req.CommissionerID.String()).
		Str("name", game.Name).
		Msg("created pickem game")

	return game, nil
}

// GetPickemGame retrieves a pick'em game by ID.
func (a *App) GetPickemGame(ctx context.Context, id uuid.UUID) (*models.PickemGame, error) {
	game, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pickem game: %w", err)
	}
	return game, nil
}

// ListPickemGamesBySeason returns a season's games sorted by name.
func (a *App) ListPickemGamesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.PickemGame, error) {
	games, err := a.repo.ListGamesBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pickem games: %w", err)
	}
	sortGames(games)
	return games, nil
}

// ListPickemGamesByUser returns every game the user participates in, sorted
// by name.
func (a *App) ListPickemGamesByUser(ctx context.Context, userID uuid.UUID) ([]models.PickemGame, error) {
	participations, err := a.repo.ListParticipantsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}

	games := make([]models.PickemGame, 0, len(participations))
	for _, p := range participations {
		game, err := a.repo.GetGame(ctx, p.PickemGameID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				log.Warn().
					Str("pickem_game_id", p.PickemGameID.String()).
					Str("participant_id", p.ID.String()).
					Msg("participant references missing pickem game")
				continue
			}
			return nil, err
		}
		games = append(games, *game)
	}
	sortGames(games)
	return games, nil
}

// UpdatePickemGame applies a partial update to name or active flag.
func (a *App) UpdatePickemGame(ctx context.Context, id uuid.UUID, req UpdatePickemGameRequest) (*models.PickemGame, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("validation failed: name cannot be empty")
		}
		req.Name = &trimmed
	}

	game, err := a.repo.UpdateGame(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update pickem game: %w", err)
	}
	return game, nil
}

// DeletePickemGame removes the game and everything hanging off it, children
// first: picks, invitations, participants, standings, then the game row.
// Neither backend runs this in a transaction, so a crash can strand the tail
// of the sequence; rerunning the delete finishes the job.
func (a *App) DeletePickemGame(ctx context.Context, id uuid.UUID) error {
	game, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return fmt.Errorf("pickem game not found: %w", err)
	}

	picks, err := a.repo.DeletePicksForGame(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete picks: %w", err)
	}
	invitations, err := a.repo.DeleteInvitationsForGame(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitations: %w", err)
	}
	participants, err := a.repo.DeleteParticipantsForGame(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	standings, err := a.repo.DeleteStandingsForGame(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete standings: %w", err)
	}

	if err := a.repo.DeleteGame(ctx, id); err != nil {
		return err
	}

	log.Info().
		Str("pickem_game_id", id.String()).
		Str("name", game.Name).
		Int("picks", picks).
		Int("invitations", invitations).
		Int("participants", participants).
		Int("standings", standings).
		Msg("deleted pickem game")

	return nil
}

// AddParticipant enrolls a user as a member of the game.
func (a *App) AddParticipant(ctx context.Context, gameID, userID uuid.UUID) (*models.Participant, error) {
	if _, err := a.repo.GetGame(ctx, gameID); err != nil {
		return nil, fmt.Errorf("pickem game not found: %w", err)
	}

	if existing, err := a.repo.GetParticipant(ctx, gameID, userID); err == nil && existing != nil {
		return nil, ErrAlreadyParticipant
	}

	participant, err := a.repo.CreateParticipant(ctx, &models.Participant{
		ID:           uuid.New(),
		PickemGameID: gameID,
		UserID:       userID,
		Role:         models.ParticipantRoleMember,
		JoinedAt:     a.clock.Now().UTC(),
	})
	if err != nil {
		// lost a race with another join
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrAlreadyParticipant
		}
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	log.Info().
		Str("pickem_game_id", gameID.String()).
		Str("user_id", userID.String()).
		Msg("added participant")

	return participant, nil
}

// RemoveParticipant takes a member out of the game along with their picks.
// Owners cannot be removed; delete the game instead.
func (a *App) RemoveParticipant(ctx context.Context, gameID, userID uuid.UUID) error {
	participant, err := a.repo.GetParticipant(ctx, gameID, userID)
	if err != nil {
		return fmt.Errorf("participant not found: %w", err)
	}
	if participant.Role == models.ParticipantRoleOwner {
		return ErrOwnerRemoval
	}

	picks, err := a.repo.DeletePicksForUserInGame(ctx, gameID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete picks: %w", err)
	}

	if err := a.repo.DeleteParticipant(ctx, participant.ID); err != nil {
		return err
	}

	log.Info().
		Str("pickem_game_id", gameID.String()).
		Str("user_id", userID.String()).
		Int("picks_deleted", picks).
		Msg("removed participant")

	return nil
}

// GetParticipant retrieves one user's membership in one game.
func (a *App) GetParticipant(ctx context.Context, gameID, userID uuid.UUID) (*models.Participant, error) {
	return a.repo.GetParticipant(ctx, gameID, userID)
}

// ListParticipants returns the game's participants with their user records,
// owners first, then by join time.
func (a *App) ListParticipants(ctx context.Context, gameID uuid.UUID) ([]ParticipantDetail, error) {
	participants, err := a.repo.ListParticipantsByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	sort.Slice(participants, func(i, j int) bool {
		if participants[i].Role != participants[j].Role {
			return participants[i].Role == models.ParticipantRoleOwner
		}
		if !participants[i].JoinedAt.Equal(participants[j].JoinedAt) {
			return participants[i].JoinedAt.Before(participants[j].JoinedAt)
		}
		return participants[i].ID.String() < participants[j].ID.String()
	})

	details := make([]ParticipantDetail, 0, len(participants))
	for _, p := range participants {
		detail := ParticipantDetail{Participant: p}
		user, err := a.repo.GetUser(ctx, p.UserID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			log.Warn().
				Str("participant_id", p.ID.String()).
				Str("user_id", p.UserID.String()).
				Msg("participant references missing user")
		} else {
			detail.User = user
		}
		details = append(details, detail)
	}
	return details, nil
}

func sortGames(games []models.PickemGame) {
	sort.Slice(games, func(i, j int) bool {
		if games[i].Name != games[j].Name {
			return games[i].Name < games[j].Name
		}
		return games[i].ID.String() < games[j].ID.String()
	})
}

func validateCreate(req CreatePickemGameRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.SeasonID == uuid.Nil {
		return fmt.Errorf("season id is required")
	}
	if req.CommissionerID == uuid.Nil {
		return fmt.Errorf("commissioner id is required")
	}
	if req.Type != models.PickemGameTypeWeekly && req.Type != models.PickemGameTypeSurvivor {
		return fmt.Errorf("unknown game type %q", req.Type)
	}
	return nil
}
