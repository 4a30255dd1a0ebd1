package picks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// DynamoRepository implements pick data access on the key-value provider.
// Every pick carries two composites computed at write time: user_game for
// per-game listings and user_game_sched as the upsert key. The triple in a
// composite never changes after insert, so updates leave them alone.
type DynamoRepository struct {
	store storage.Provider
}

// NewDynamoRepository creates a picks repository backed by DynamoDB.
func NewDynamoRepository(store storage.Provider) *DynamoRepository {
	return &DynamoRepository{store: store}
}

// CreatePick inserts a new pick with its index composites and returns it
// with storage timestamps.
func (r *DynamoRepository) CreatePick(ctx context.Context, pick *models.Pick) (*models.Pick, error) {
	rec := pickToRecord(pick)
	rec[storage.AttrUserGame] = storage.CompositeKey(pick.UserID.String(), pick.PickemGameID.String())
	rec[storage.AttrUserGameSched] = storage.CompositeKey(
		pick.UserID.String(), pick.PickemGameID.String(), pick.ScheduledGameID.String())

	if err := r.store.Put(ctx, storage.TablePicks, rec); err != nil {
		return nil, fmt.Errorf("failed to create pick: %w", err)
	}
	return r.GetPick(ctx, pick.ID)
}

// GetPick retrieves a pick by ID.
func (r *DynamoRepository) GetPick(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	rec, err := r.store.Get(ctx, storage.TablePicks, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	return pickFromRecord(rec), nil
}

// FindPick retrieves the pick for one (user, pickem game, scheduled game)
// triple via the user_game_sched composite. When that index is missing the
// lookup drops to the broader user_game index and filters the handful of
// rows in memory, so a half-migrated schema stays correct, only slower.
func (r *DynamoRepository) FindPick(ctx context.Context, userID, pickemGameID, scheduledGameID uuid.UUID) (*models.Pick, error) {
	recs, err := r.store.Query(ctx, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByUserGameSched,
		Key: map[string]any{
			storage.AttrUserGameSched: storage.CompositeKey(
				userID.String(), pickemGameID.String(), scheduledGameID.String()),
		},
	})
	if errors.Is(err, storage.ErrIndexNotFound) {
		log.Warn().
			Str("index", storage.IndexPicksByUserGameSched).
			Msg("index missing, falling back to user-game index")
		recs, err = r.queryUserGame(ctx, userID, pickemGameID)
		if err == nil {
			recs = filterByScheduledGame(recs, scheduledGameID)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pick: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to find pick: %w", storage.ErrNotFound)
	}
	return pickFromRecord(recs[0]), nil
}

// UpdatePick rewrites the chosen team and tiebreaker. A nil tiebreaker clears
// the stored one; resetCorrectness wipes the settled result so the pick goes
// back to pending.
func (r *DynamoRepository) UpdatePick(ctx context.Context, id uuid.UUID, pickedTeamID uuid.UUID, tiebreaker *int, resetCorrectness bool) (*models.Pick, error) {
	fields := map[string]any{
		"picked_team_id": pickedTeamID.String(),
		"tiebreaker":     nil,
	}
	if tiebreaker != nil {
		fields["tiebreaker"] = *tiebreaker
	}
	if resetCorrectness {
		fields["is_correct"] = nil
	}

	rec, err := r.store.Update(ctx, storage.TablePicks, id.String(), fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update pick: %w", err)
	}
	return pickFromRecord(rec), nil
}

// SetPickCorrectness records the settled result for one pick.
func (r *DynamoRepository) SetPickCorrectness(ctx context.Context, id uuid.UUID, correct bool) error {
	if _, err := r.store.Update(ctx, storage.TablePicks, id.String(), map[string]any{
		"is_correct": correct,
	}); err != nil {
		return fmt.Errorf("failed to set pick correctness: %w", err)
	}
	return nil
}

// ListPicksForScheduledGame returns every pick on one real-world game, across
// all pick'em games.
func (r *DynamoRepository) ListPicksForScheduledGame(ctx context.Context, scheduledGameID uuid.UUID) ([]models.Pick, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByScheduledGame,
		Key:   map[string]any{"scheduled_game_id": scheduledGameID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list picks for scheduled game: %w", err)
	}
	return picksFromRecords(recs), nil
}

// ListUserPicksInGame returns one user's picks within one pick'em game.
func (r *DynamoRepository) ListUserPicksInGame(ctx context.Context, userID, pickemGameID uuid.UUID) ([]models.Pick, error) {
	recs, err := r.queryUserGame(ctx, userID, pickemGameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user picks: %w", err)
	}
	return picksFromRecords(recs), nil
}

// ListUserPicksBySeason returns one user's picks across a season. The user
// index hands back every pick the user ever made; the season cut happens
// here.
func (r *DynamoRepository) ListUserPicksBySeason(ctx context.Context, userID, seasonID uuid.UUID) ([]models.Pick, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByUser,
		Key:   map[string]any{"user_id": userID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list season picks: %w", err)
	}

	season := seasonID.String()
	kept := recs[:0]
	for _, rec := range recs {
		if rec.String("season_id") == season {
			kept = append(kept, rec)
		}
	}
	return picksFromRecords(kept), nil
}

// DeleteForPickemGame removes every pick in a pick'em game.
func (r *DynamoRepository) DeleteForPickemGame(ctx context.Context, pickemGameID uuid.UUID) (int, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByPickemGame,
		Key:   map[string]any{"pickem_game_id": pickemGameID.String()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list picks for delete: %w", err)
	}
	return r.deleteAll(ctx, recs)
}

// DeleteForUserInGame removes one user's picks in a pick'em game.
func (r *DynamoRepository) DeleteForUserInGame(ctx context.Context, pickemGameID, userID uuid.UUID) (int, error) {
	recs, err := r.queryUserGame(ctx, userID, pickemGameID)
	if err != nil {
		return 0, fmt.Errorf("failed to list picks for delete: %w", err)
	}
	return r.deleteAll(ctx, recs)
}

// GetParticipant checks one user's membership in one pick'em game.
func (r *DynamoRepository) GetParticipant(ctx context.Context, pickemGameID, userID uuid.UUID) (*models.Participant, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByGameUser,
		Key: map[string]any{
			storage.AttrGameUser: storage.CompositeKey(pickemGameID.String(), userID.String()),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to get participant: %w", storage.ErrNotFound)
	}
	return participantFromRecord(recs[0]), nil
}

// GetScheduledGame fetches the real-world game a pick refers to.
func (r *DynamoRepository) GetScheduledGame(ctx context.Context, id uuid.UUID) (*models.ScheduledGame, error) {
	rec, err := r.store.Get(ctx, storage.TableScheduledGames, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled game: %w", err)
	}
	return scheduledGameFromRecord(rec), nil
}

func (r *DynamoRepository) queryUserGame(ctx context.Context, userID, pickemGameID uuid.UUID) ([]storage.Record, error) {
	return storage.QueryFallback(ctx, r.store, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByUserGame,
		Key: map[string]any{
			storage.AttrUserGame: storage.CompositeKey(userID.String(), pickemGameID.String()),
		},
	})
}

func (r *DynamoRepository) deleteAll(ctx context.Context, recs []storage.Record) (int, error) {
	for _, rec := range recs {
		if err := r.store.Delete(ctx, storage.TablePicks, rec.String(storage.FieldID)); err != nil {
			return 0, fmt.Errorf("failed to delete pick: %w", err)
		}
	}
	return len(recs), nil
}

func filterByScheduledGame(recs []storage.Record, scheduledGameID uuid.UUID) []storage.Record {
	want := scheduledGameID.String()
	kept := recs[:0]
	for _, rec := range recs {
		if rec.String("scheduled_game_id") == want {
			kept = append(kept, rec)
		}
	}
	return kept
}
