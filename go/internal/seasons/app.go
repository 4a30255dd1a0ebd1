package seasons

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SeasonsRepository defines what the app layer needs from the repository
type SeasonsRepository interface {
	CreateSeason(ctx context.Context, season *models.Season) (*models.Season, error)
	GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error)
	GetSeasonByYear(ctx context.Context, year int) (*models.Season, error)
	ListSeasons(ctx context.Context) ([]models.Season, error)
	ListCurrentSeasons(ctx context.Context) ([]models.Season, error)
	SetCurrent(ctx context.Context, id uuid.UUID) error
	ClearCurrent(ctx context.Context, id uuid.UUID) error
	CountScheduledGames(ctx context.Context, seasonID uuid.UUID) (int, error)
	DeleteSeason(ctx context.Context, id uuid.UUID) error
}

// App handles seasons business logic
type App struct {
	repo SeasonsRepository
}

// NewApp creates a new seasons App
func NewApp(repo SeasonsRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateSeason creates a season for the year, optionally making it current.
// The season is always created unflagged, then promoted through the same
// swap path SetCurrentSeason uses.
func (a *App) CreateSeason(ctx context.Context, year int, makeCurrent bool) (*models.Season, error) {
	if year < 1990 || year > 2100 {
		return nil, fmt.Errorf("validation failed: year %d out of range", year)
	}

	if existing, err := a.repo.GetSeasonByYear(ctx, year); err == nil && existing != nil {
		return nil, ErrYearTaken
	}

	season, err := a.repo.CreateSeason(ctx, &models.Season{
		ID:   uuid.New(),
		Year: year,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrYearTaken
		}
		return nil, fmt.Errorf("failed to create season: %w", err)
	}

	log.Info().Str("season_id", season.ID.String()).Int("year", year).Msg("created season")

	if makeCurrent {
		return a.SetCurrentSeason(ctx, season.ID)
	}
	return season, nil
}

// GetSeason retrieves a season by ID.
func (a *App) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return season, nil
}

// GetSeasonByYear retrieves the season for a calendar year.
func (a *App) GetSeasonByYear(ctx context.Context, year int) (*models.Season, error) {
	season, err := a.repo.GetSeasonByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get season by year: %w", err)
	}
	return season, nil
}

// ListSeasons returns every season, newest year first.
func (a *App) ListSeasons(ctx context.Context) ([]models.Season, error) {
	seasons, err := a.repo.ListSeasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	sort.Slice(seasons, func(i, j int) bool {
		return seasons[i].Year > seasons[j].Year
	})
	return seasons, nil
}

// SetCurrentSeason makes the season the single current one and returns it.
func (a *App) SetCurrentSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	if _, err := a.repo.GetSeason(ctx, id); err != nil {
		return nil, fmt.Errorf("season not found: %w", err)
	}

	if err := a.repo.SetCurrent(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to set current season: %w", err)
	}

	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}

	log.Info().Str("season_id", season.ID.String()).Int("year", season.Year).Msg("set current season")
	return season, nil
}

// GetCurrentSeason returns the current season. When no season is flagged it
// returns ErrNoCurrentSeason. When more than one is flagged (possible only on
// the key-value backend after a crashed swap) it keeps the highest year,
// clears the rest, and returns the keeper.
func (a *App) GetCurrentSeason(ctx context.Context) (*models.Season, error) {
	current, err := a.repo.ListCurrentSeasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list current seasons: %w", err)
	}

	switch len(current) {
	case 0:
		return nil, ErrNoCurrentSeason
	case 1:
		return &current[0], nil
	}

	sort.Slice(current, func(i, j int) bool {
		return current[i].Year > current[j].Year
	})
	keeper := current[0]

	log.Warn().
		Int("flagged", len(current)).
		Int("kept_year", keeper.Year).
		Msg("multiple current seasons flagged, healing")

	for _, season := range current[1:] {
		if err := a.repo.ClearCurrent(ctx, season.ID); err != nil {
			log.Warn().Err(err).Str("season_id", season.ID.String()).Msg("failed to clear stale current season")
		}
	}

	return &keeper, nil
}

// DeleteSeason deletes the season. Seasons carrying scheduled games refuse
// to go: callers have to remove the games first so no game row is ever left
// pointing at a missing season.
func (a *App) DeleteSeason(ctx context.Context, id uuid.UUID) error {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return fmt.Errorf("season not found: %w", err)
	}

	games, err := a.repo.CountScheduledGames(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count scheduled games for season: %w", err)
	}
	if games > 0 {
		return fmt.Errorf("season %d has %d scheduled games: %w", season.Year, games, ErrSeasonInUse)
	}

	if err := a.repo.DeleteSeason(ctx, id); err != nil {
		return fmt.Errorf("failed to delete season: %w", err)
	}

	log.Info().
		Str("season_id", season.ID.String()).
		Int("year", season.Year).
		Msg("deleted season")
	return nil
}
