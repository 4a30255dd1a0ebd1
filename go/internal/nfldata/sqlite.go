package nfldata

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SQLiteRepository implements scheduled-game data access on the relational
// provider. Matchup lookups are plain multi-column equality; the natural-key
// unique constraint backstops concurrent upserts.
type SQLiteRepository struct {
	store storage.Provider
}

// NewSQLiteRepository creates a scheduled-games repository backed by SQLite.
func NewSQLiteRepository(store storage.Provider) *SQLiteRepository {
	return &SQLiteRepository{store: store}
}

// CreateGame inserts a new scheduled game and returns it with storage
// timestamps.
func (r *SQLiteRepository) CreateGame(ctx context.Context, game *models.ScheduledGame) (*models.ScheduledGame, error) {
	if err := r.store.Put(ctx, storage.TableScheduledGames, gameToRecord(game)); err != nil {
		return nil, fmt.Errorf("failed to create scheduled game: %w", err)
	}
	return r.GetGame(ctx, game.ID)
}

// GetGame retrieves a scheduled game by ID.
func (r *SQLiteRepository) GetGame(ctx context.Context, id uuid.UUID) (*models.ScheduledGame, error) {
	rec, err := r.store.Get(ctx, storage.TableScheduledGames, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled game: %w", err)
	}
	return gameFromRecord(rec), nil
}

// FindByMatchup retrieves a game by its natural key.
func (r *SQLiteRepository) FindByMatchup(ctx context.Context, seasonID uuid.UUID, week int, homeTeamID, awayTeamID uuid.UUID) (*models.ScheduledGame, error) {
	recs, err := r.store.Query(ctx, storage.TableScheduledGames, storage.Query{
		Index: storage.IndexGamesByMatchup,
		Key: map[string]any{
			"season_id":    seasonID.String(),
			"week":         week,
			"home_team_id": homeTeamID.String(),
			"away_team_id": awayTeamID.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find game by matchup: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to find game by matchup: %w", storage.ErrNotFound)
	}
	return gameFromRecord(recs[0]), nil
}

// ListBySeason returns all games in a season.
func (r *SQLiteRepository) ListBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.ScheduledGame, error) {
	recs, err := r.store.Query(ctx, storage.TableScheduledGames, storage.Query{
		Index: storage.IndexGamesBySeason,
		Key:   map[string]any{"season_id": seasonID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list games by season: %w", err)
	}
	return gamesFromRecords(recs), nil
}

// ListBySeasonWeek returns all games in one week of a season.
func (r *SQLiteRepository) ListBySeasonWeek(ctx context.Context, seasonID uuid.UUID, week int) ([]models.ScheduledGame, error) {
	recs, err := r.store.Query(ctx, storage.TableScheduledGames, storage.Query{
		Index: storage.IndexGamesBySeasonWeek,
		Key: map[string]any{
			"season_id": seasonID.String(),
			"week":      week,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list games by season week: %w", err)
	}
	return gamesFromRecords(recs), nil
}

// ListCompleted returns completed games for a season, optionally narrowed to
// one week.
func (r *SQLiteRepository) ListCompleted(ctx context.Context, seasonID uuid.UUID, week *int) ([]models.ScheduledGame, error) {
	key := map[string]any{
		"season_id": seasonID.String(),
		"status":    string(models.GameStatusCompleted),
	}
	if week != nil {
		key["week"] = *week
	}
	recs, err := r.store.Query(ctx, storage.TableScheduledGames, storage.Query{Key: key})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed games: %w", err)
	}
	return gamesFromRecords(recs), nil
}

// UpdateGameDate moves a game's kickoff time.
func (r *SQLiteRepository) UpdateGameDate(ctx context.Context, id uuid.UUID, gameDate time.Time) (*models.ScheduledGame, error) {
	rec, err := r.store.Update(ctx, storage.TableScheduledGames, id.String(), map[string]any{
		"game_date": gameDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update game date: %w", err)
	}
	return gameFromRecord(rec), nil
}

// UpdateScore applies a score-sync result and stamps the sync time.
func (r *SQLiteRepository) UpdateScore(ctx context.Context, id uuid.UUID, homeScore, awayScore int, status models.GameStatus, syncedAt time.Time) (*models.ScheduledGame, error) {
	rec, err := r.store.Update(ctx, storage.TableScheduledGames, id.String(), map[string]any{
		"home_score":     homeScore,
		"away_score":     awayScore,
		"status":         string(status),
		"last_synced_at": syncedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update score: %w", err)
	}
	return gameFromRecord(rec), nil
}

// GetTeam fetches one team row for enrichment.
func (r *SQLiteRepository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	rec, err := r.store.Get(ctx, storage.TableTeams, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return teamFromRecord(rec), nil
}
