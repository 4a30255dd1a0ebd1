package nfldata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// DynamoRepository implements scheduled-game data access on the key-value
// provider. The natural key (season, week, home, away) is mirrored into the
// matchup_key and season_week synthetic attributes on create; those parts
// never change after insert, so updates leave the synthetics alone.
type DynamoRepository struct {
	store storage.Provider
}

// NewDynamoRepository creates a scheduled-games repository backed by DynamoDB.
func NewDynamoRepository(store storage.Provider) *DynamoRepository {
	return &DynamoRepository{store: store}
}

// CreateGame inserts a new scheduled game with its index synthetics and
// returns it with storage timestamps.
func (r *DynamoRepository) CreateGame(ctx context.Context, game *models.ScheduledGame) (*models.ScheduledGame, error) {
	rec := gameToRecord(game)
	rec[storage.AttrSeasonWeek] = seasonWeekKey(game.SeasonID, game.Week)
	rec[storage.AttrMatchupKey] = matchupKey(game.SeasonID, game.Week, game.HomeTeamID, game.AwayTeamID)
	if err := r.store.Put(ctx, storage.TableScheduledGames, rec); err != nil {
		return nil, fmt.Errorf("failed to create scheduled game: %w", err)
	}
	return r.GetGame(ctx, game.ID)
}

// GetGame retrieves a scheduled game by ID.
func (r *DynamoRepository) GetGame(ctx context.Context, id uuid.UUID) (*models.ScheduledGame, error) {
	rec, err := r.store.Get(ctx, storage.TableScheduledGames, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled game: %w", err)
	}
	return gameFromRecord(rec), nil
}

// FindByMatchup retrieves a game by its natural key via the matchup index.
func (r *DynamoRepository) FindByMatchup(ctx context.Context, seasonID uuid.UUID, week int, homeTeamID, awayTeamID uuid.UUID) (*models.ScheduledGame, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableScheduledGames, storage.Query{
		Index: storage.IndexGamesByMatchup,
		Key: map[string]any{
			storage.AttrMatchupKey: matchupKey(seasonID, week, homeTeamID, awayTeamID),
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
func (r *DynamoRepository) ListBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.ScheduledGame, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableScheduledGames, storage.Query{
		Index: storage.IndexGamesBySeason,
		Key:   map[string]any{"season_id": seasonID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list games by season: %w", err)
	}
	return gamesFromRecords(recs), nil
}

// ListBySeasonWeek returns all games in one week of a season.
func (r *DynamoRepository) ListBySeasonWeek(ctx context.Context, seasonID uuid.UUID, week int) ([]models.ScheduledGame, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableScheduledGames, storage.Query{
		Index: storage.IndexGamesBySeasonWeek,
		Key:   map[string]any{storage.AttrSeasonWeek: seasonWeekKey(seasonID, week)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list games by season week: %w", err)
	}
	return gamesFromRecords(recs), nil
}

// ListCompleted returns completed games for a season, optionally narrowed to
// one week. The key-value provider takes one key condition per query, so the
// status filter runs in memory.
func (r *DynamoRepository) ListCompleted(ctx context.Context, seasonID uuid.UUID, week *int) ([]models.ScheduledGame, error) {
	var (
		games []models.ScheduledGame
		err   error
	)
	if week != nil {
		games, err = r.ListBySeasonWeek(ctx, seasonID, *week)
	} else {
		games, err = r.ListBySeason(ctx, seasonID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list completed games: %w", err)
	}

	completed := games[:0]
	for _, g := range games {
		if g.Status == models.GameStatusCompleted {
			completed = append(completed, g)
		}
	}
	return completed, nil
}

// UpdateGameDate moves a game's kickoff time.
func (r *DynamoRepository) UpdateGameDate(ctx context.Context, id uuid.UUID, gameDate time.Time) (*models.ScheduledGame, error) {
	rec, err := r.store.Update(ctx, storage.TableScheduledGames, id.String(), map[string]any{
		"game_date": gameDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update game date: %w", err)
	}
	return gameFromRecord(rec), nil
}

// UpdateScore applies a score-sync result and stamps the sync time.
func (r *DynamoRepository) UpdateScore(ctx context.Context, id uuid.UUID, homeScore, awayScore int, status models.GameStatus, syncedAt time.Time) (*models.ScheduledGame, error) {
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

// GetTeam fetches one team item for enrichment.
func (r *DynamoRepository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	rec, err := r.store.Get(ctx, storage.TableTeams, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return teamFromRecord(rec), nil
}

func seasonWeekKey(seasonID uuid.UUID, week int) string {
	return storage.CompositeKey(seasonID.String(), strconv.Itoa(week))
}

func matchupKey(seasonID uuid.UUID, week int, homeTeamID, awayTeamID uuid.UUID) string {
	return storage.CompositeKey(seasonID.String(), strconv.Itoa(week), homeTeamID.String(), awayTeamID.String())
}
