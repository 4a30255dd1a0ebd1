package pickem

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SQLiteRepository implements pick'em game and participant data access on the
// relational provider. The (pickem_game_id, user_id) unique constraint
// backstops concurrent joins; cascade deletes still run record by record
// because the key-value variant has nothing better.
type SQLiteRepository struct {
	store storage.Provider
}

// NewSQLiteRepository creates a pick'em repository backed by SQLite.
func NewSQLiteRepository(store storage.Provider) *SQLiteRepository {
	return &SQLiteRepository{store: store}
}

// CreateGame inserts a new pick'em game and returns it with storage
// timestamps.
func (r *SQLiteRepository) CreateGame(ctx context.Context, game *models.PickemGame) (*models.PickemGame, error) {
	if err := r.store.Put(ctx, storage.TablePickemGames, pickemGameToRecord(game)); err != nil {
		return nil, fmt.Errorf("failed to create pickem game: %w", err)
	}
	return r.GetGame(ctx, game.ID)
}

// GetGame retrieves a pick'em game by ID.
func (r *SQLiteRepository) GetGame(ctx context.Context, id uuid.UUID) (*models.PickemGame, error) {
	rec, err := r.store.Get(ctx, storage.TablePickemGames, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get pickem game: %w", err)
	}
	return pickemGameFromRecord(rec), nil
}

// ListGamesBySeason returns all pick'em games in a season.
func (r *SQLiteRepository) ListGamesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.PickemGame, error) {
	recs, err := r.store.Query(ctx, storage.TablePickemGames, storage.Query{
		Index: storage.IndexPickemGamesBySeason,
		Key:   map[string]any{"season_id": seasonID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pickem games by season: %w", err)
	}
	return pickemGamesFromRecords(recs), nil
}

// UpdateGame applies a partial update and returns the updated game.
func (r *SQLiteRepository) UpdateGame(ctx context.Context, id uuid.UUID, req UpdatePickemGameRequest) (*models.PickemGame, error) {
	if req.IsZero() {
		return r.GetGame(ctx, id)
	}

	fields := make(map[string]any)
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	rec, err := r.store.Update(ctx, storage.TablePickemGames, id.String(), fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update pickem game: %w", err)
	}
	return pickemGameFromRecord(rec), nil
}

// DeleteGame removes the pick'em game row itself; children go separately.
func (r *SQLiteRepository) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, storage.TablePickemGames, id.String()); err != nil {
		return fmt.Errorf("failed to delete pickem game: %w", err)
	}
	return nil
}

// CreateParticipant inserts a participant row and returns it with storage
// timestamps.
func (r *SQLiteRepository) CreateParticipant(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	if err := r.store.Put(ctx, storage.TableParticipants, participantToRecord(p)); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	rec, err := r.store.Get(ctx, storage.TableParticipants, p.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return participantFromRecord(rec), nil
}

// GetParticipant retrieves one user's membership in one game.
func (r *SQLiteRepository) GetParticipant(ctx context.Context, gameID, userID uuid.UUID) (*models.Participant, error) {
	recs, err := r.store.Query(ctx, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByGameUser,
		Key: map[string]any{
			"pickem_game_id": gameID.String(),
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

// ListParticipantsByGame returns every participant in a game.
func (r *SQLiteRepository) ListParticipantsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Participant, error) {
	recs, err := r.store.Query(ctx, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByGame,
		Key:   map[string]any{"pickem_game_id": gameID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participantsFromRecords(recs), nil
}

// ListParticipantsByUser returns every game membership a user holds.
func (r *SQLiteRepository) ListParticipantsByUser(ctx context.Context, userID uuid.UUID) ([]models.Participant, error) {
	recs, err := r.store.Query(ctx, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByUser,
		Key:   map[string]any{"user_id": userID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}
	return participantsFromRecords(recs), nil
}

// DeleteParticipant removes one participant row.
func (r *SQLiteRepository) DeleteParticipant(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, storage.TableParticipants, id.String()); err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return nil
}

// DeletePicksForGame removes every pick in the pick'em game.
func (r *SQLiteRepository) DeletePicksForGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TablePicks, storage.IndexPicksByPickemGame,
		map[string]any{"pickem_game_id": gameID.String()})
}

// DeletePicksForUserInGame removes one user's picks in the pick'em game.
func (r *SQLiteRepository) DeletePicksForUserInGame(ctx context.Context, gameID, userID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TablePicks, storage.IndexPicksByUserGame, map[string]any{
		"pickem_game_id": gameID.String(),
		"user_id":        userID.String(),
	})
}

// DeleteInvitationsForGame removes every invitation into the pick'em game.
func (r *SQLiteRepository) DeleteInvitationsForGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TableInvitations, storage.IndexInvitationsByGame,
		map[string]any{"pickem_game_id": gameID.String()})
}

// DeleteParticipantsForGame removes every participant in the pick'em game.
func (r *SQLiteRepository) DeleteParticipantsForGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TableParticipants, storage.IndexParticipantsByGame,
		map[string]any{"pickem_game_id": gameID.String()})
}

// DeleteStandingsForGame removes every standing row for the pick'em game.
func (r *SQLiteRepository) DeleteStandingsForGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TableStandings, storage.IndexStandingsByGame,
		map[string]any{"pickem_game_id": gameID.String()})
}

// GetUser fetches one user row for enrichment.
func (r *SQLiteRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	rec, err := r.store.Get(ctx, storage.TableUsers, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userFromRecord(rec), nil
}

// deleteMatched removes matching rows one by one and reports how many went.
func (r *SQLiteRepository) deleteMatched(ctx context.Context, table, index string, key map[string]any) (int, error) {
	recs, err := r.store.Query(ctx, table, storage.Query{Index: index, Key: key})
	if err != nil {
		return 0, fmt.Errorf("failed to list %s for delete: %w", table, err)
	}
	for _, rec := range recs {
		if err := r.store.Delete(ctx, table, rec.String(storage.FieldID)); err != nil {
			return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	return len(recs), nil
}
