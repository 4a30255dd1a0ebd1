package standings

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/models"
)

// StandingsRepository defines the data access layer contract for standings.
type StandingsRepository interface {
	GetStanding(ctx context.Context, pickemGameID, userID uuid.UUID) (*models.Standing, error)
	PutStanding(ctx context.Context, s *models.Standing) (*models.Standing, error)
	ListByGame(ctx context.Context, pickemGameID uuid.UUID) ([]models.Standing, error)
	DeleteForGame(ctx context.Context, pickemGameID uuid.UUID) (int, error)
	GetPickemGame(ctx context.Context, id uuid.UUID) (*models.PickemGame, error)
	ListParticipantUserIDs(ctx context.Context, pickemGameID uuid.UUID) ([]uuid.UUID, error)
	CountUserPickResults(ctx context.Context, pickemGameID, userID uuid.UUID) (wins, losses, pending int, err error)
}

// App contains the business logic for leaderboard standings. Standings are
// derived data: the scoring job recomputes them from picks after settling a
// game, so a lost write heals on the next cycle.
type App struct {
	repo StandingsRepository
}

// NewApp creates a standings App with the given repository.
func NewApp(repo StandingsRepository) *App {
	return &App{repo: repo}
}

// UpsertStanding writes one participant's record, keyed by (game, user).
func (a *App) UpsertStanding(ctx context.Context, req UpsertStandingRequest) (*models.Standing, error) {
	if err := validateStanding(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	saved, err := a.repo.PutStanding(ctx, &models.Standing{
		ID:           uuid.New(),
		PickemGameID: req.PickemGameID,
		UserID:       req.UserID,
		SeasonID:     req.SeasonID,
		Wins:         req.Wins,
		Losses:       req.Losses,
		Pending:      req.Pending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert standing: %w", err)
	}
	return saved, nil
}

// GetStanding retrieves one participant's standing in one game.
func (a *App) GetStanding(ctx context.Context, pickemGameID, userID uuid.UUID) (*models.Standing, error) {
	return a.repo.GetStanding(ctx, pickemGameID, userID)
}

// ListStandingsForGame returns a game's leaderboard: most wins first, then
// fewest losses.
func (a *App) ListStandingsForGame(ctx context.Context, pickemGameID uuid.UUID) ([]models.Standing, error) {
	list, err := a.repo.ListByGame(ctx, pickemGameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Wins != list[j].Wins {
			return list[i].Wins > list[j].Wins
		}
		if list[i].Losses != list[j].Losses {
			return list[i].Losses < list[j].Losses
		}
		return list[i].UserID.String() < list[j].UserID.String()
	})
	return list, nil
}

// RecomputeForPickemGame rebuilds every participant's standing from their
// picks and returns how many standings were written. Reruns converge on the
// same numbers.
func (a *App) RecomputeForPickemGame(ctx context.Context, pickemGameID uuid.UUID) (int, error) {
	game, err := a.repo.GetPickemGame(ctx, pickemGameID)
	if err != nil {
		return 0, fmt.Errorf("failed to get pickem game: %w", err)
	}

	userIDs, err := a.repo.ListParticipantUserIDs(ctx, pickemGameID)
	if err != nil {
		return 0, fmt.Errorf("failed to list participants: %w", err)
	}

	written := 0
	for _, userID := range userIDs {
		wins, losses, pending, err := a.repo.CountUserPickResults(ctx, pickemGameID, userID)
		if err != nil {
			return written, fmt.Errorf("failed to tally picks for user %s: %w", userID, err)
		}
		if _, err := a.repo.PutStanding(ctx, &models.Standing{
			ID:           uuid.New(),
			PickemGameID: pickemGameID,
			UserID:       userID,
			SeasonID:     game.SeasonID,
			Wins:         wins,
			Losses:       losses,
			Pending:      pending,
		}); err != nil {
			return written, fmt.Errorf("failed to write standing for user %s: %w", userID, err)
		}
		written++
	}

	log.Info().
		Str("pickem_game_id", pickemGameID.String()).
		Int("standings_written", written).
		Msg("standings recomputed")
	return written, nil
}

// DeleteStandingsForPickemGame removes every standing in a pick'em game and
// returns how many were deleted.
func (a *App) DeleteStandingsForPickemGame(ctx context.Context, pickemGameID uuid.UUID) (int, error) {
	deleted, err := a.repo.DeleteForGame(ctx, pickemGameID)
	if err != nil {
		return deleted, fmt.Errorf("failed to delete standings: %w", err)
	}
	return deleted, nil
}

func validateStanding(req UpsertStandingRequest) error {
	if req.PickemGameID == uuid.Nil {
		return errors.New("pickem game id is required")
	}
	if req.UserID == uuid.Nil {
		return errors.New("user id is required")
	}
	if req.SeasonID == uuid.Nil {
		return errors.New("season id is required")
	}
	if req.Wins < 0 || req.Losses < 0 || req.Pending < 0 {
		return errors.New("counts cannot be negative")
	}
	return nil
}
