package picks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// PicksRepository defines the data access layer contract for picks.
type PicksRepository interface {
	CreatePick(ctx context.Context, pick *models.Pick) (*models.Pick, error)
	GetPick(ctx context.Context, id uuid.UUID) (*models.Pick, error)
	FindPick(ctx context.Context, userID, pickemGameID, scheduledGameID uuid.UUID) (*models.Pick, error)
	UpdatePick(ctx context.Context, id uuid.UUID, pickedTeamID uuid.UUID, tiebreaker *int, resetCorrectness bool) (*models.Pick, error)
	SetPickCorrectness(ctx context.Context, id uuid.UUID, correct bool) error
	ListPicksForScheduledGame(ctx context.Context, scheduledGameID uuid.UUID) ([]models.Pick, error)
	ListUserPicksInGame(ctx context.Context, userID, pickemGameID uuid.UUID) ([]models.Pick, error)
	ListUserPicksBySeason(ctx context.Context, userID, seasonID uuid.UUID) ([]models.Pick, error)
	DeleteForPickemGame(ctx context.Context, pickemGameID uuid.UUID) (int, error)
	DeleteForUserInGame(ctx context.Context, pickemGameID, userID uuid.UUID) (int, error)
	GetParticipant(ctx context.Context, pickemGameID, userID uuid.UUID) (*models.Participant, error)
	GetScheduledGame(ctx context.Context, id uuid.UUID) (*models.ScheduledGame, error)
}

// App contains the business logic for making and scoring picks.
type App struct {
	repo  PicksRepository
	clock clockwork.Clock
}

// NewApp creates a picks App with the given repository.
func NewApp(repo PicksRepository, clock clockwork.Clock) *App {
	return &App{repo: repo, clock: clock}
}

// CreateOrUpdatePick records a user's choice for one matchup. The
// (user, pickem game, scheduled game) triple identifies the pick: a second
// call with the same triple rewrites the existing row instead of inserting.
// Week and season are copied from the scheduled game at write time. Picks
// are refused once the game has kicked off.
func (a *App) CreateOrUpdatePick(ctx context.Context, req CreateOrUpdatePickRequest) (*models.Pick, error) {
	if err := validatePickRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := a.repo.GetParticipant(ctx, req.PickemGameID, req.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("user %s in pickem game %s: %w",
				req.UserID, req.PickemGameID, ErrNotParticipant)
		}
		return nil, fmt.Errorf("failed to check participant: %w", err)
	}

	game, err := a.repo.GetScheduledGame(ctx, req.ScheduledGameID)
	if err != nil {
		return nil, fmt.Errorf("scheduled game %s: %w", req.ScheduledGameID, err)
	}
	if req.PickedTeamID != game.HomeTeamID && req.PickedTeamID != game.AwayTeamID {
		return nil, fmt.Errorf("team %s in game %s: %w", req.PickedTeamID, game.ID, ErrTeamNotInGame)
	}
	if game.Status != models.GameStatusScheduled || !a.clock.Now().UTC().Before(game.GameDate) {
		return nil, fmt.Errorf("game %s kicked off at %s: %w",
			game.ID, game.GameDate.Format("2006-01-02 15:04"), ErrGameLocked)
	}

	existing, err := a.repo.FindPick(ctx, req.UserID, req.PickemGameID, req.ScheduledGameID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up existing pick: %w", err)
	}

	if existing != nil {
		// Changing teams pre-kickoff voids any correctness a premature
		// scoring run might have written.
		reset := existing.PickedTeamID != req.PickedTeamID
		updated, err := a.repo.UpdatePick(ctx, existing.ID, req.PickedTeamID, req.Tiebreaker, reset)
		if err != nil {
			return nil, fmt.Errorf("failed to update pick: %w", err)
		}

		log.Info().
			Str("pick_id", updated.ID.String()).
			Str("user_id", req.UserID.String()).
			Str("scheduled_game_id", req.ScheduledGameID.String()).
			Bool("team_changed", reset).
			Msg("pick updated")
		return updated, nil
	}

	pick := &models.Pick{
		ID:              uuid.New(),
		UserID:          req.UserID,
		PickemGameID:    req.PickemGameID,
		ScheduledGameID: req.ScheduledGameID,
		PickedTeamID:    req.PickedTeamID,
		Week:            game.Week,
		SeasonID:        game.SeasonID,
		Tiebreaker:      req.Tiebreaker,
	}
	created, err := a.repo.CreatePick(ctx, pick)
	if err != nil {
		return nil, fmt.Errorf("failed to create pick: %w", err)
	}

	log.Info().
		Str("pick_id", created.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("scheduled_game_id", req.ScheduledGameID.String()).
		Int("week", created.Week).
		Msg("pick created")
	return created, nil
}

// GetPick retrieves a single pick by ID.
func (a *App) GetPick(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	return a.repo.GetPick(ctx, id)
}

// GetUserPicks returns one user's picks in a pick'em game, optionally
// narrowed to a single week, ordered by week then creation time.
func (a *App) GetUserPicks(ctx context.Context, userID, pickemGameID uuid.UUID, week *int) ([]models.Pick, error) {
	picks, err := a.repo.ListUserPicksInGame(ctx, userID, pickemGameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	if week != nil {
		kept := picks[:0]
		for _, p := range picks {
			if p.Week == *week {
				kept = append(kept, p)
			}
		}
		picks = kept
	}
	sortPicks(picks)
	return picks, nil
}

// ListPicksForScheduledGame returns every pick on one real-world game.
func (a *App) ListPicksForScheduledGame(ctx context.Context, scheduledGameID uuid.UUID) ([]models.Pick, error) {
	return a.repo.ListPicksForScheduledGame(ctx, scheduledGameID)
}

// UpdatePickResultsForGame settles every pick on one scheduled game. A pick
// is correct iff it chose the winning team; a nil winner means the game tied
// and every pick on it is incorrect. Picks already carrying the right value
// are left alone, so the returned count only reflects real changes and
// reruns settle to zero.
func (a *App) UpdatePickResultsForGame(ctx context.Context, scheduledGameID uuid.UUID, winnerTeamID *uuid.UUID) (int, error) {
	picks, err := a.repo.ListPicksForScheduledGame(ctx, scheduledGameID)
	if err != nil {
		return 0, fmt.Errorf("failed to list picks for game: %w", err)
	}

	updated := 0
	for _, pick := range picks {
		correct := winnerTeamID != nil && pick.PickedTeamID == *winnerTeamID
		if pick.IsCorrect != nil && *pick.IsCorrect == correct {
			continue
		}
		if err := a.repo.SetPickCorrectness(ctx, pick.ID, correct); err != nil {
			return updated, fmt.Errorf("failed to settle pick %s: %w", pick.ID, err)
		}
		updated++
	}

	log.Info().
		Str("scheduled_game_id", scheduledGameID.String()).
		Bool("tie", winnerTeamID == nil).
		Int("picks_total", len(picks)).
		Int("picks_updated", updated).
		Msg("pick results updated")
	return updated, nil
}

// GetPickStats aggregates one user's season results. Accuracy is the share
// of settled picks that were correct, as a percentage rounded to two
// decimals; it is zero while nothing has settled.
func (a *App) GetPickStats(ctx context.Context, userID, seasonID uuid.UUID) (*PickStats, error) {
	picks, err := a.repo.ListUserPicksBySeason(ctx, userID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list season picks: %w", err)
	}

	stats := &PickStats{Total: len(picks)}
	for _, pick := range picks {
		switch {
		case pick.IsCorrect == nil:
			stats.Pending++
		case *pick.IsCorrect:
			stats.Correct++
		default:
			stats.Incorrect++
		}
	}
	if settled := stats.Correct + stats.Incorrect; settled > 0 {
		stats.Accuracy = math.Round(float64(stats.Correct)/float64(settled)*10000) / 100
	}
	return stats, nil
}

// DeletePicksForPickemGame removes every pick in a pick'em game and returns
// how many were deleted.
func (a *App) DeletePicksForPickemGame(ctx context.Context, pickemGameID uuid.UUID) (int, error) {
	deleted, err := a.repo.DeleteForPickemGame(ctx, pickemGameID)
	if err != nil {
		return deleted, fmt.Errorf("failed to delete picks for pickem game: %w", err)
	}
	return deleted, nil
}

// DeletePicksForUserInGame removes one user's picks within a pick'em game
// and returns how many were deleted.
func (a *App) DeletePicksForUserInGame(ctx context.Context, pickemGameID, userID uuid.UUID) (int, error) {
	deleted, err := a.repo.DeleteForUserInGame(ctx, pickemGameID, userID)
	if err != nil {
		return deleted, fmt.Errorf("failed to delete user picks: %w", err)
	}
	return deleted, nil
}

func sortPicks(picks []models.Pick) {
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].Week != picks[j].Week {
			return picks[i].Week < picks[j].Week
		}
		if !picks[i].CreatedAt.Equal(picks[j].CreatedAt) {
			return picks[i].CreatedAt.Before(picks[j].CreatedAt)
		}
		return picks[i].ID.String() < picks[j].ID.String()
	})
}

func validatePickRequest(req CreateOrUpdatePickRequest) error {
	if req.UserID == uuid.Nil {
		return errors.New("user id is required")
	}
	if req.PickemGameID == uuid.Nil {
		return errors.New("pickem game id is required")
	}
	if req.ScheduledGameID == uuid.Nil {
		return errors.New("scheduled game id is required")
	}
	if req.PickedTeamID == uuid.Nil {
		return errors.New("picked team id is required")
	}
	return nil
}
