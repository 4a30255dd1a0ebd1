// Package calculator settles pick correctness from final scores and rolls
// the results up into standings and events.
package calculator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/events"
	"github.com/gridironlabs/gridpick/go/internal/models"
)

// GamesSource lists the completed games a scoring run works through.
type GamesSource interface {
	GetGame(ctx context.Context, id uuid.UUID) (*models.ScheduledGame, error)
	ListCompletedGames(ctx context.Context, seasonID uuid.UUID, week *int) ([]models.ScheduledGame, error)
}

// PickScorer settles pick correctness and exposes the picks a game touched.
type PickScorer interface {
	UpdatePickResultsForGame(ctx context.Context, scheduledGameID uuid.UUID, winnerTeamID *uuid.UUID) (int, error)
	ListPicksForScheduledGame(ctx context.Context, scheduledGameID uuid.UUID) ([]models.Pick, error)
}

// StandingsUpdater rebuilds a pick'em game's standings from settled picks.
type StandingsUpdater interface {
	RecomputeForPickemGame(ctx context.Context, pickemGameID uuid.UUID) (int, error)
}

// Result reports what a scoring run changed. Individual game failures are
// collected so one bad game never aborts the run.
type Result struct {
	GamesProcessed   int     `json:"games_processed"`
	PicksUpdated     int     `json:"picks_updated"`
	StandingsUpdated int     `json:"standings_updated"`
	Skipped          int     `json:"skipped"`
	Errors           []error `json:"errors,omitempty"`
}

// Calculator drives scoring runs. It only changes picks whose stored
// correctness disagrees with the final score, so reruns converge instead of
// double-counting.
type Calculator struct {
	games     GamesSource
	picks     PickScorer
	standings StandingsUpdater
	publisher events.Publisher
	clock     clockwork.Clock
}

func New(games GamesSource, picks PickScorer, standings StandingsUpdater, publisher events.Publisher, clock clockwork.Clock) *Calculator {
	return &Calculator{
		games:     games,
		picks:     picks,
		standings: standings,
		publisher: publisher,
		clock:     clock,
	}
}

// ProcessSeason scores every completed game in a season, optionally narrowed
// to one week, then recomputes standings for the pick'em games whose picks
// changed.
func (c *Calculator) ProcessSeason(ctx context.Context, seasonID uuid.UUID, week *int) (*Result, error) {
	games, err := c.games.ListCompletedGames(ctx, seasonID, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed games: %w", err)
	}

	result := &Result{}
	affected := make(map[uuid.UUID]struct{})
	for i := range games {
		c.scoreGame(ctx, &games[i], result, affected)
	}
	c.recomputeStandings(ctx, affected, result)

	ev := log.Info().Str("season_id", seasonID.String())
	if week != nil {
		ev = ev.Int("week", *week)
	}
	ev.Int("games_processed", result.GamesProcessed).
		Int("picks_updated", result.PicksUpdated).
		Int("standings_updated", result.StandingsUpdated).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("scoring run finished")

	return result, nil
}

// ProcessGame scores a single game, typically right after a score sync marks
// it completed. A game that is not completed yet is skipped, not failed.
func (c *Calculator) ProcessGame(ctx context.Context, scheduledGameID uuid.UUID) (*Result, error) {
	game, err := c.games.GetGame(ctx, scheduledGameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled game: %w", err)
	}

	result := &Result{}
	if game.Status != models.GameStatusCompleted {
		log.Debug().
			Str("scheduled_game_id", game.ID.String()).
			Str("status", string(game.Status)).
			Msg("game not completed, skipping")
		result.Skipped++
		return result, nil
	}

	affected := make(map[uuid.UUID]struct{})
	c.scoreGame(ctx, game, result, affected)
	c.recomputeStandings(ctx, affected, result)
	return result, nil
}

func (c *Calculator) scoreGame(ctx context.Context, game *models.ScheduledGame, result *Result, affected map[uuid.UUID]struct{}) {
	if game.HomeScore == nil || game.AwayScore == nil {
		log.Warn().
			Str("scheduled_game_id", game.ID.String()).
			Msg("completed game has no final score, skipping")
		result.Skipped++
		return
	}

	winner := game.WinnerTeamID()
	updated, err := c.picks.UpdatePickResultsForGame(ctx, game.ID, winner)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("game %s: %w", game.ID, err))
		log.Error().Err(err).
			Str("scheduled_game_id", game.ID.String()).
			Msg("failed to settle picks for game")
		return
	}
	result.GamesProcessed++
	result.PicksUpdated += updated
	if updated == 0 {
		return
	}

	gamePicks, err := c.picks.ListPicksForScheduledGame(ctx, game.ID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("game %s: %w", game.ID, err))
		log.Error().Err(err).
			Str("scheduled_game_id", game.ID.String()).
			Msg("failed to list picks for standings recompute")
		return
	}
	for _, pick := range gamePicks {
		affected[pick.PickemGameID] = struct{}{}
	}

	event := events.PicksScoredEvent{
		EventID:         uuid.New(),
		SeasonID:        game.SeasonID,
		ScheduledGameID: game.ID,
		WinnerTeamID:    winner,
		Tie:             game.IsTie(),
		PicksUpdated:    updated,
		OccurredAt:      c.clock.Now().UTC(),
	}
	// Pick updates already landed; event delivery is best effort.
	if err := c.publisher.PublishPicksScored(ctx, event); err != nil {
		log.Error().Err(err).
			Str("scheduled_game_id", game.ID.String()).
			Msg("failed to publish picks.scored event")
	}
}

func (c *Calculator) recomputeStandings(ctx context.Context, affected map[uuid.UUID]struct{}, result *Result) {
	for id := range affected {
		written, err := c.standings.RecomputeForPickemGame(ctx, id)
		result.StandingsUpdated += written
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("pickem game %s standings: %w", id, err))
			log.Error().Err(err).
				Str("pickem_game_id", id.String()).
				Msg("failed to recompute standings")
		}
	}
}
