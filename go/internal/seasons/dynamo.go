package seasons

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// DynamoRepository implements season data access on the key-value provider.
// The current flag is mirrored to the current_flag string attribute for its
// GSI. Nothing here enforces single-current: SetCurrent sequences the swap
// and the app layer self-heals if a crash between writes left two flagged.
type DynamoRepository struct {
	store storage.Provider
}

// NewDynamoRepository creates a seasons repository backed by DynamoDB.
func NewDynamoRepository(store storage.Provider) *DynamoRepository {
	return &DynamoRepository{store: store}
}

// CreateSeason inserts a new season item and returns it with storage
// timestamps.
func (r *DynamoRepository) CreateSeason(ctx context.Context, season *models.Season) (*models.Season, error) {
	rec := seasonToRecord(season)
	rec[storage.AttrCurrentFlag] = storage.FlagValue(season.IsCurrent)

	if err := r.store.Put(ctx, storage.TableSeasons, rec); err != nil {
		return nil, fmt.Errorf("failed to create season: %w", err)
	}
	return r.GetSeason(ctx, season.ID)
}

// GetSeason retrieves a season by ID.
func (r *DynamoRepository) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	rec, err := r.store.Get(ctx, storage.TableSeasons, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return seasonFromRecord(rec), nil
}

// GetSeasonByYear retrieves the season for a calendar year through the year
// GSI, scanning if the index is missing.
func (r *DynamoRepository) GetSeasonByYear(ctx context.Context, year int) (*models.Season, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableSeasons, storage.Query{
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
func (r *DynamoRepository) ListSeasons(ctx context.Context) ([]models.Season, error) {
	recs, err := r.store.Scan(ctx, storage.TableSeasons, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return seasonsFromRecords(recs), nil
}

// ListCurrentSeasons returns every season flagged current. A mid-swap crash
// can leave more than one; callers are expected to handle that.
func (r *DynamoRepository) ListCurrentSeasons(ctx context.Context) ([]models.Season, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableSeasons, storage.Query{
		Index: storage.IndexSeasonsByCurrent,
		Key:   map[string]any{storage.AttrCurrentFlag: storage.FlagValue(true)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list current seasons: %w", err)
	}
	return seasonsFromRecords(recs), nil
}

// SetCurrent unflags the previous current seasons, then flags the target.
// The writes are sequenced, not transactional: unset-first keeps the
// invariant safe if the process dies between them (no current is recoverable,
// two currents would not be detectable by ordinary reads).
func (r *DynamoRepository) SetCurrent(ctx context.Context, id uuid.UUID) error {
	current, err := r.ListCurrentSeasons(ctx)
	if err != nil {
		return err
	}

	for _, season := range current {
		if season.ID == id {
			continue
		}
		if err := r.ClearCurrent(ctx, season.ID); err != nil {
			return err
		}
	}

	if _, err := r.store.Update(ctx, storage.TableSeasons, id.String(), map[string]any{
		"is_current":            true,
		storage.AttrCurrentFlag: storage.FlagValue(true),
	}); err != nil {
		return fmt.Errorf("failed to set current season: %w", err)
	}
	return nil
}

// ClearCurrent unflags one season and its synthetic mirror.
func (r *DynamoRepository) ClearCurrent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.store.Update(ctx, storage.TableSeasons, id.String(), map[string]any{
		"is_current":            false,
		storage.AttrCurrentFlag: storage.FlagValue(false),
	}); err != nil {
		return fmt.Errorf("failed to clear current season: %w", err)
	}
	return nil
}

// CountScheduledGames returns how many scheduled games reference the season.
func (r *DynamoRepository) CountScheduledGames(ctx context.Context, seasonID uuid.UUID) (int, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableScheduledGames, storage.Query{
		Index: storage.IndexGamesBySeason,
		Key:   map[string]any{"season_id": seasonID.String()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count scheduled games for season: %w", err)
	}
	return len(recs), nil
}

// DeleteSeason deletes a season by ID.
func (r *DynamoRepository) DeleteSeason(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, storage.TableSeasons, id.String()); err != nil {
		return fmt.Errorf("failed to delete season: %w", err)
	}
	return nil
}
