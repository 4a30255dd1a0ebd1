package standings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// DynamoRepository implements standings data access on the key-value
// provider. The game_user composite serves the (game, user) upsert key.
type DynamoRepository struct {
	store storage.Provider
}

// NewDynamoRepository creates a standings repository backed by DynamoDB.
func NewDynamoRepository(store storage.Provider) *DynamoRepository {
	return &DynamoRepository{store: store}
}

// GetStanding retrieves one participant's standing in one game via the
// game_user composite.
func (r *DynamoRepository) GetStanding(ctx context.Context, pickemGameID, userID uuid.UUID) (*models.Standing, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableStandings, storage.Query{
		Index: storage.IndexStandingsByGameUser,
		Key: map[string]any{
			storage.AttrGameUser: storage.CompositeKey(pickemGameID.String(), userID.String()),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get standing: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to get standing: %w", storage.ErrNotFound)
	}
	return standingFromRecord(recs[0]), nil
}

// PutStanding writes a standing, updating the existing row for the
// (game, user) pair when there is one.
func (r *DynamoRepository) PutStanding(ctx context.Context, s *models.Standing) (*models.Standing, error) {
	existing, err := r.GetStanding(ctx, s.PickemGameID, s.UserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if _, err := r.store.Update(ctx, storage.TableStandings, existing.ID.String(), map[string]any{
			"wins":    s.Wins,
			"losses":  s.Losses,
			"pending": s.Pending,
		}); err != nil {
			return nil, fmt.Errorf("failed to update standing: %w", err)
		}
		return r.GetStanding(ctx, s.PickemGameID, s.UserID)
	}

	rec := standingToRecord(s)
	rec[storage.AttrGameUser] = storage.CompositeKey(s.PickemGameID.String(), s.UserID.String())
	if err := r.store.Put(ctx, storage.TableStandings, rec); err != nil {
		return nil, fmt.Errorf("failed to create standing: %w", err)
	}
	return r.GetStanding(ctx, s.PickemGameID, s.UserID)
}

// ListByGame returns every standing in a pick'em game.
func (r *DynamoRepository) ListByGame(ctx context.Context, pickemGameID uuid.UUID) ([]models.Standing, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableStandings, storage.Query{
		Index: storage.IndexStandingsByGame,
		Key:   map[string]any{"pickem_game_id": pickemGameID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}
	return standingsFromRecords(recs), nil
}

// DeleteForGame removes every standing in a pick'em game and returns how
// many went away.
func (r *DynamoRepository) DeleteForGame(ctx context.Context, pickemGameID uuid.UUID) (int, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableStandings, storage.Query{
		Index: storage.IndexStandingsByGame,
		Key:   map[string]any{"pickem_game_id": pickemGameID.String()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list standings for delete: %w", err)
	}
	for _, rec := range recs {
		if err := r.store.Delete(ctx, storage.TableStandings, rec.String(storage.FieldID)); err != nil {
			return 0, fmt.Errorf("failed to delete standing: %w", err)
		}
	}
	return len(recs), nil
}

// GetPickemGame fetches the pick'em game a recompute runs against.
func (r *DynamoRepository) GetPickemGame(ctx context.Context, id uuid.UUID) (*models.PickemGame, error) {
	rec, err := r.store.Get(ctx, storage.TablePickemGames, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get pickem game: %w", err)
	}
	return pickemGameFromRecord(rec), nil
}

// ListParticipantUserIDs returns the user IDs enrolled in a pick'em game.
func (r *DynamoRepository) ListParticipantUserIDs(ctx context.Context, pickemGameID uuid.UUID) ([]uuid.UUID, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByGame,
		Key:   map[string]any{"pickem_game_id": pickemGameID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.UUID("user_id"))
	}
	return ids, nil
}

// CountUserPickResults tallies one user's settled and pending picks within
// one pick'em game via the user_game composite.
func (r *DynamoRepository) CountUserPickResults(ctx context.Context, pickemGameID, userID uuid.UUID) (wins, losses, pending int, err error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByUserGame,
		Key: map[string]any{
			storage.AttrUserGame: storage.CompositeKey(userID.String(), pickemGameID.String()),
		},
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count pick results: %w", err)
	}
	wins, losses, pending = tallyResults(recs)
	return wins, losses, pending, nil
}
