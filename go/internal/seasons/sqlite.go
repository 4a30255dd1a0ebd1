package seasons

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SQLiteRepository implements season data access on the relational provider.
// The partial unique index on is_current makes more than one current season
// impossible to commit, and SetCurrent swaps the flag inside one transaction.
type SQLiteRepository struct {
	store storage.Provider
}

// NewSQLiteRepository creates a seasons repository backed by SQLite.
func NewSQLiteRepository(store storage.Provider) *SQLiteRepository {
	return &SQLiteRepository{store: store}
}

// CreateSeason inserts a new season and returns it with storage timestamps.
func (r *SQLiteRepository) CreateSeason(ctx context.Context, season *models.Season) (*models.Season, error) {
	if err := r.store.Put(ctx, storage.TableSeasons, seasonToRecord(season)); err != nil {
		return nil, fmt.Errorf("failed to create season: %w", err)
	}
	return r.GetSeason(ctx, season.ID)
}

// GetSeason retrieves a season by ID.
func (r *SQLiteRepository) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	rec, err := r.store.Get(ctx, storage.TableSeasons, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return seasonFromRecord(rec), nil
}

// GetSeasonByYear retrieves the season for a calendar year.
func (r *SQLiteRepository) GetSeasonByYear(ctx context.Context, year int) (*models.Season, error) {
	recs, err := r.store.Query(ctx, storage.TableSeasons, storage.Query{
		Index: storage.IndexSeasonsByYear,
		Key:   map[string]any{"year": year},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get season by year: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to get season by year: %w", storage.ErrNotFound)
	}
	return seasonFromRecord(recs[0]), nil
}

// ListSeasons returns every season.
func (r *SQLiteRepository) ListSeasons(ctx context.Context) ([]models.Season, error) {
	recs, err := r.store.Scan(ctx, storage.TableSeasons, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return seasonsFromRecords(recs), nil
}

// ListCurrentSeasons returns every season flagged current. The unique index
// keeps this at one row at most, but the contract stays a list so the app
// layer can self-heal the key-value backend.
func (r *SQLiteRepository) ListCurrentSeasons(ctx context.Context) ([]models.Season, error) {
	recs, err := r.store.Query(ctx, storage.TableSeasons, storage.Query{
		Index: storage.IndexSeasonsByCurrent,
		Key:   map[string]any{"is_current": true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list current seasons: %w", err)
	}
	return seasonsFromRecords(recs), nil
}

// SetCurrent flags the season as current and unflags the previous one inside
// a single transaction. The unset ops run first so the partial unique index
// never sees two current rows.
func (r *SQLiteRepository) SetCurrent(ctx context.Context, id uuid.UUID) error {
	current, err := r.ListCurrentSeasons(ctx)
	if err != nil {
		return err
	}

	var ops []storage.Op
	for _, season := range current {
		if season.ID == id {
			continue
		}
		ops = append(ops, storage.UpdateOp(storage.TableSeasons, season.ID.String(), map[string]any{
			"is_current": false,
		}))
	}
	ops = append(ops, storage.UpdateOp(storage.TableSeasons, id.String(), map[string]any{
		"is_current": true,
	}))

	if err := r.store.Transact(ctx, ops); err != nil {
		return fmt.Errorf("failed to set current season: %w", err)
	}
	return nil
}

// ClearCurrent unflags one season.
func (r *SQLiteRepository) ClearCurrent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.store.Update(ctx, storage.TableSeasons, id.String(), map[string]any{
		"is_current": false,
	}); err != nil {
		return fmt.Errorf("failed to clear current season: %w", err)
	}
	return nil
}

// CountScheduledGames returns how many scheduled games reference the season.
func (r *SQLiteRepository) CountScheduledGames(ctx context.Context, seasonID uuid.UUID) (int, error) {
	recs, err := r.store.Query(ctx, storage.TableScheduledGames, storage.Query{
		Index: storage.IndexGamesBySeason,
		Key:   map[string]any{"season_id": seasonID.String()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count scheduled games for season: %w", err)
	}
	return len(recs), nil
}

// DeleteSeason deletes a season by ID.
func (r *SQLiteRepository) DeleteSeason(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, storage.TableSeasons, id.String()); err != nil {
		return fmt.Errorf("failed to delete season: %w", err)
	}
	return nil
}
