package picks

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SQLiteRepository implements pick data access on the relational provider.
// The (user, pickem game, scheduled game) unique constraint backstops the
// upsert's read-then-write window.
type SQLiteRepository struct {
	store storage.Provider
}

// NewSQLiteRepository creates a picks repository backed by SQLite.
func NewSQLiteRepository(store storage.Provider) *SQLiteRepository {
	return &SQLiteRepository{store: store}
}

// CreatePick inserts a new pick and returns it with storage timestamps.
func (r *SQLiteRepository) CreatePick(ctx context.Context, pick *models.Pick) (*models.Pick, error) {
	if err := r.store.Put(ctx, storage.TablePicks, pickToRecord(pick)); err != nil {
		return nil, fmt.Errorf("failed to create pick: %w", err)
	}
	return r.GetPick(ctx, pick.ID)
}

// GetPick retrieves a pick by ID.
func (r *SQLiteRepository) GetPick(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	rec, err := r.store.Get(ctx, storage.TablePicks, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	return pickFromRecord(rec), nil
}

// FindPick retrieves the pick for one (user, pickem game, scheduled game)
// triple.
func (r *SQLiteRepository) FindPick(ctx context.Context, userID, pickemGameID, scheduledGameID uuid.UUID) (*models.Pick, error) {
	recs, err := r.store.Query(ctx, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByUserGameSched,
		Key: map[string]any{
			"user_id":           userID.String(),
			"pickem_game_id":    pickemGameID.String(),
			"scheduled_game_id": scheduledGameID.String(),
		},
	})
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
func (r *SQLiteRepository) UpdatePick(ctx context.Context, id uuid.UUID, pickedTeamID uuid.UUID, tiebreaker *int, resetCorrectness bool) (*models.Pick, error) {
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
func (r *SQLiteRepository) SetPickCorrectness(ctx context.Context, id uuid.UUID, correct bool) error {
	if _, err := r.store.Update(ctx, storage.TablePicks, id.String(), map[string]any{
		"is_correct": correct,
	}); err != nil {
		return fmt.Errorf("failed to set pick correctness: %w", err)
	}
	return nil
}

// ListPicksForScheduledGame returns every pick on one real-world game, across
// all pick'em games.
func (r *SQLiteRepository) ListPicksForScheduledGame(ctx context.Context, scheduledGameID uuid.UUID) ([]models.Pick, error) {
	recs, err := r.store.Query(ctx, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByScheduledGame,
		Key:   map[string]any{"scheduled_game_id": scheduledGameID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list picks for scheduled game: %w", err)
	}
	return picksFromRecords(recs), nil
}

// ListUserPicksInGame returns one user's picks within one pick'em game.
func (r *SQLiteRepository) ListUserPicksInGame(ctx context.Context, userID, pickemGameID uuid.UUID) ([]models.Pick, error) {
	recs, err := r.store.Query(ctx, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByUserGame,
		Key: map[string]any{
			"user_id":        userID.String(),
			"pickem_game_id": pickemGameID.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list user picks: %w", err)
	}
	return picksFromRecords(recs), nil
}

// ListUserPicksBySeason returns one user's picks across a season.
func (r *SQLiteRepository) ListUserPicksBySeason(ctx context.Context, userID, seasonID uuid.UUID) ([]models.Pick, error) {
	recs, err := r.store.Query(ctx, storage.TablePicks, storage.Query{
		Index: storage.IndexPicksByUser,
		Key: map[string]any{
			"user_id":   userID.String(),
			"season_id": seasonID.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list season picks: %w", err)
	}
	return picksFromRecords(recs), nil
}

// DeleteForPickemGame removes every pick in a pick'em game.
func (r *SQLiteRepository) DeleteForPickemGame(ctx context.Context, pickemGameID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.IndexPicksByPickemGame,
		map[string]any{"pickem_game_id": pickemGameID.String()})
}

// DeleteForUserInGame removes one user's picks in a pick'em game.
func (r *SQLiteRepository) DeleteForUserInGame(ctx context.Context, pickemGameID, userID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.IndexPicksByUserGame, map[string]any{
		"pickem_game_id": pickemGameID.String(),
		"user_id":        userID.String(),
	})
}

// GetParticipant checks one user's membership in one pick'em game.
func (r *SQLiteRepository) GetParticipant(ctx context.Context, pickemGameID, userID uuid.UUID) (*models.Participant, error) {
	recs, err := r.store.Query(ctx, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByGameUser,
		Key: map[string]any{
			"pickem_game_id": pickemGameID.String(),
			"user_id":        userID.String(),
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
func (r *SQLiteRepository) GetScheduledGame(ctx context.Context, id uuid.UUID) (*models.ScheduledGame, error) {
	rec, err := r.store.Get(ctx, storage.TableScheduledGames, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled game: %w", err)
	}
	return scheduledGameFromRecord(rec), nil
}

func (r *SQLiteRepository) deleteMatched(ctx context.Context, index string, key map[string]any) (int, error) {
	recs, err := r.store.Query(ctx, storage.TablePicks, storage.Query{Index: index, Key: key})
	if err != nil {
		return 0, fmt.Errorf("failed to list picks for delete: %w", err)
	}
	for _, rec := range recs {
		if err := r.store.Delete(ctx, storage.TablePicks, rec.String(storage.FieldID)); err != nil {
			return 0, fmt.Errorf("failed to delete pick: %w", err)
		}
	}
	return len(recs), nil
}
