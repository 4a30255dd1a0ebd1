package nfldata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// NFLDataRepository defines what the app layer needs from the repository
type NFLDataRepository interface {
	CreateGame(ctx context.Context, game *models.ScheduledGame) (*models.ScheduledGame, error)
	GetGame(ctx context.Context, id uuid.UUID) (*models.ScheduledGame, error)
	FindByMatchup(ctx context.Context, seasonID uuid.UUID, week int, homeTeamID, awayTeamID uuid.UUID) (*models.ScheduledGame, error)
	ListBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.ScheduledGame, error)
	ListBySeasonWeek(ctx context.Context, seasonID uuid.UUID, week int) ([]models.ScheduledGame, error)
	ListCompleted(ctx context.Context, seasonID uuid.UUID, week *int) ([]models.ScheduledGame, error)
	UpdateGameDate(ctx context.Context, id uuid.UUID, gameDate time.Time) (*models.ScheduledGame, error)
	UpdateScore(ctx context.Context, id uuid.UUID, homeScore, awayScore int, status models.GameStatus, syncedAt time.Time) (*models.ScheduledGame, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
}

type upsertOutcome int

const (
	outcomeCreated upsertOutcome = iota
	outcomeUpdated
	outcomeUnchanged
)

// App handles NFL schedule business logic
type App struct {
	repo  NFLDataRepository
	clock clockwork.Clock
}

// NewApp creates a new NFL data App
func NewApp(repo NFLDataRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// UpsertGame inserts the matchup if it is new, otherwise refreshes the
// kickoff time when the schedule moved it. The natural key (season, week,
// home, away) never changes once a game exists.
func (a *App) UpsertGame(ctx context.Context, req UpsertGameRequest) (*models.ScheduledGame, error) {
	game, _, err := a.upsertGame(ctx, req)
	return game, err
}

// SyncSchedule upserts a batch of games from a schedule feed. Individual
// failures are collected so one bad row never aborts the run.
func (a *App) SyncSchedule(ctx context.Context, reqs []UpsertGameRequest) (*SyncResult, error) {
	result := &SyncResult{TotalProcessed: len(reqs)}

	for _, req := range reqs {
		_, outcome, err := a.upsertGame(ctx, req)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Errorf("week %d %s@%s: %w", req.Week, req.AwayTeamID, req.HomeTeamID, err))
			continue
		}
		switch outcome {
		case outcomeCreated:
			result.Created++
		case outcomeUpdated:
			result.Updated++
		case outcomeUnchanged:
			result.Unchanged++
		}
	}

	log.Info().
		Int("total", result.TotalProcessed).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Int("errors", len(result.Errors)).
		Msg("schedule sync finished")

	return result, nil
}

func (a *App) upsertGame(ctx context.Context, req UpsertGameRequest) (*models.ScheduledGame, upsertOutcome, error) {
	req = normalizeUpsert(req)
	if err := validateUpsert(req); err != nil {
		return nil, 0, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := a.repo.FindByMatchup(ctx, req.SeasonID, req.Week, req.HomeTeamID, req.AwayTeamID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, 0, err
	}

	if existing != nil {
		if existing.GameDate.Equal(req.GameDate) {
			return existing, outcomeUnchanged, nil
		}
		updated, err := a.repo.UpdateGameDate(ctx, existing.ID, req.GameDate.UTC())
		if err != nil {
			return nil, 0, err
		}
		log.Debug().
			Str("game_id", updated.ID.String()).
			Time("game_date", updated.GameDate).
			Msg("rescheduled game")
		return updated, outcomeUpdated, nil
	}

	created, err := a.repo.CreateGame(ctx, &models.ScheduledGame{
		ID:         uuid.New(),
		SeasonID:   req.SeasonID,
		Week:       req.Week,
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		GameDate:   req.GameDate.UTC(),
		Status:     models.GameStatusScheduled,
		SeasonType: req.SeasonType,
	})
	if err != nil {
		return nil, 0, err
	}
	return created, outcomeCreated, nil
}

// UpdateGameScore applies a score-sync result and stamps the sync time.
// Marking a game completed is what makes its picks scorable.
func (a *App) UpdateGameScore(ctx context.Context, id uuid.UUID, req UpdateScoreRequest) (*models.ScheduledGame, error) {
	if err := validateScore(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := a.repo.GetGame(ctx, id); err != nil {
		return nil, fmt.Errorf("scheduled game not found: %w", err)
	}

	game, err := a.repo.UpdateScore(ctx, id, req.HomeScore, req.AwayScore, req.Status, a.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update game score: %w", err)
	}

	log.Info().
		Str("game_id", game.ID.String()).
		Int("home_score", req.HomeScore).
		Int("away_score", req.AwayScore).
		Str("status", string(req.Status)).
		Msg("updated game score")

	return game, nil
}

// GetGame retrieves a scheduled game by ID.
func (a *App) GetGame(ctx context.Context, id uuid.UUID) (*models.ScheduledGame, error) {
	game, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled game: %w", err)
	}
	return game, nil
}

// GetGameDetail retrieves a scheduled game with its team records attached.
// A dangling team reference leaves that side nil rather than failing the
// whole read.
func (a *App) GetGameDetail(ctx context.Context, id uuid.UUID) (*GameDetail, error) {
	game, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled game: %w", err)
	}
	detail, err := a.enrich(ctx, *game, map[uuid.UUID]*models.Team{})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// GetGamesBySeasonWeek returns one week's games enriched with team records,
// ordered by kickoff time.
func (a *App) GetGamesBySeasonWeek(ctx context.Context, seasonID uuid.UUID, week int) ([]GameDetail, error) {
	games, err := a.repo.ListBySeasonWeek(ctx, seasonID, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by season week: %w", err)
	}
	sortGames(games)

	teams := make(map[uuid.UUID]*models.Team)
	details := make([]GameDetail, 0, len(games))
	for _, game := range games {
		detail, err := a.enrich(ctx, game, teams)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// ListGamesBySeason returns all games in a season ordered by week, then
// kickoff time.
func (a *App) ListGamesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.ScheduledGame, error) {
	games, err := a.repo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by season: %w", err)
	}
	sortGames(games)
	return games, nil
}

// ListCompletedGames returns a season's completed games, optionally narrowed
// to one week. The pick calculator reads its work list through this.
func (a *App) ListCompletedGames(ctx context.Context, seasonID uuid.UUID, week *int) ([]models.ScheduledGame, error) {
	games, err := a.repo.ListCompleted(ctx, seasonID, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed games: %w", err)
	}
	sortGames(games)
	return games, nil
}

// enrich attaches team records to a game, reusing the cache across a batch.
func (a *App) enrich(ctx context.Context, game models.ScheduledGame, cache map[uuid.UUID]*models.Team) (*GameDetail, error) {
	detail := &GameDetail{ScheduledGame: game}

	for _, side := range []struct {
		id   uuid.UUID
		into **models.Team
	}{
		{game.HomeTeamID, &detail.HomeTeam},
		{game.AwayTeamID, &detail.AwayTeam},
	} {
		if team, ok := cache[side.id]; ok {
			*side.into = team
			continue
		}
		team, err := a.repo.GetTeam(ctx, side.id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				log.Warn().
					Str("game_id", game.ID.String()).
					Str("team_id", side.id.String()).
					Msg("game references missing team")
				cache[side.id] = nil
				continue
			}
			return nil, fmt.Errorf("failed to get team: %w", err)
		}
		cache[side.id] = team
		*side.into = team
	}

	return detail, nil
}

func sortGames(games []models.ScheduledGame) {
	sort.Slice(games, func(i, j int) bool {
		if games[i].Week != games[j].Week {
			return games[i].Week < games[j].Week
		}
		if !games[i].GameDate.Equal(games[j].GameDate) {
			return games[i].GameDate.Before(games[j].GameDate)
		}
		return games[i].ID.String() < games[j].ID.String()
	})
}

func normalizeUpsert(req UpsertGameRequest) UpsertGameRequest {
	if req.SeasonType == "" {
		req.SeasonType = models.SeasonTypeRegular
	}
	return req
}

func validateUpsert(req UpsertGameRequest) error {
	if req.SeasonID == uuid.Nil {
		return fmt.Errorf("season id is required")
	}
	if req.HomeTeamID == uuid.Nil || req.AwayTeamID == uuid.Nil {
		return fmt.Errorf("home and away team ids are required")
	}
	if req.HomeTeamID == req.AwayTeamID {
		return fmt.Errorf("a team cannot play itself")
	}
	if req.Week < 1 {
		return fmt.Errorf("week must be positive, got %d", req.Week)
	}
	if req.GameDate.IsZero() {
		return fmt.Errorf("game date is required")
	}
	if req.SeasonType != models.SeasonTypePreseason && req.SeasonType != models.SeasonTypeRegular {
		return fmt.Errorf("unknown season type %q", req.SeasonType)
	}
	return nil
}

func validateScore(req UpdateScoreRequest) error {
	if req.HomeScore < 0 || req.AwayScore < 0 {
		return fmt.Errorf("scores cannot be negative")
	}
	switch req.Status {
	case models.GameStatusScheduled, models.GameStatusInProgress, models.GameStatusCompleted:
		return nil
	default:
		return fmt.Errorf("unknown game status %q", req.Status)
	}
}
