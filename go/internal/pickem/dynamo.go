package pickem

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// DynamoRepository implements pick'em game and participant data access on the
// key-value provider. Participants carry a game_user composite so membership
// checks are one index lookup; nothing enforces (game, user) uniqueness at
// the storage level, the app layer's existence check is the guard.
type DynamoRepository struct {
	store storage.Provider
}

// NewDynamoRepository creates a pick'em repository backed by DynamoDB.
func NewDynamoRepository(store storage.Provider) *DynamoRepository {
	return &DynamoRepository{store: store}
}

// CreateGame inserts a new pick'em game and returns it with storage
// timestamps.
func (r *DynamoRepository) CreateGame(ctx context.Context, game *models.PickemGame) (*models.PickemGame, error) {
	if err := r.store.Put(ctx, storage.TablePickemGames, pickemGameToRecord(game)); err != nil {
		return nil, fmt.Errorf("failed to create pickem game: %w", err)
	}
	return r.GetGame(ctx, game.ID)
}

// GetGame retrieves a pick'em game by ID.
func (r *DynamoRepository) GetGame(ctx context.Context, id uuid.UUID) (*models.PickemGame, error) {
	rec, err := r.store.Get(ctx, storage.TablePickemGames, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get pickem game: %w", err)
	}
	return pickemGameFromRecord(rec), nil
}

// ListGamesBySeason returns all pick'em games in a season.
func (r *DynamoRepository) ListGamesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.PickemGame, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TablePickemGames, storage.Query{
		Index: storage.IndexPickemGamesBySeason,
		Key:   map[string]any{"season_id": seasonID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pickem games by season: %w", err)
	}
	return pickemGamesFromRecords(recs), nil
}

// UpdateGame applies a partial update and returns the updated game.
func (r *DynamoRepository) UpdateGame(ctx context.Context, id uuid.UUID, req UpdatePickemGameRequest) (*models.PickemGame, error) {
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

// DeleteGame removes the pick'em game item itself; children go separately.
func (r *DynamoRepository) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, storage.TablePickemGames, id.String()); err != nil {
		return fmt.Errorf("failed to delete pickem game: %w", err)
	}
	return nil
}

// CreateParticipant inserts a participant with its game_user composite and
// returns it with storage timestamps.
func (r *DynamoRepository) CreateParticipant(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	rec := participantToRecord(p)
	rec[storage.AttrGameUser] = storage.CompositeKey(p.PickemGameID.String(), p.UserID.String())

	if err := r.store.Put(ctx, storage.TableParticipants, rec); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	got, err := r.store.Get(ctx, storage.TableParticipants, p.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return participantFromRecord(got), nil
}

// GetParticipant retrieves one user's membership in one game via the
// game_user composite index.
func (r *DynamoRepository) GetParticipant(ctx context.Context, gameID, userID uuid.UUID) (*models.Participant, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByGameUser,
		Key: map[string]any{
			storage.AttrGameUser: storage.CompositeKey(gameID.String(), userID.String()),
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
func (r *DynamoRepository) ListParticipantsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Participant, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByGame,
		Key:   map[string]any{"pickem_game_id": gameID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participantsFromRecords(recs), nil
}

// ListParticipantsByUser returns every game membership a user holds.
func (r *DynamoRepository) ListParticipantsByUser(ctx context.Context, userID uuid.UUID) ([]models.Participant, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableParticipants, storage.Query{
		Index: storage.IndexParticipantsByUser,
		Key:   map[string]any{"user_id": userID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}
	return participantsFromRecords(recs), nil
}

// DeleteParticipant removes one participant item.
func (r *DynamoRepository) DeleteParticipant(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, storage.TableParticipants, id.String()); err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return nil
}

// DeletePicksForGame removes every pick in the pick'em game.
func (r *DynamoRepository) DeletePicksForGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TablePicks, storage.IndexPicksByPickemGame,
		map[string]any{"pickem_game_id": gameID.String()})
}

// DeletePicksForUserInGame removes one user's picks in the pick'em game via
// the user_game composite index.
func (r *DynamoRepository) DeletePicksForUserInGame(ctx context.Context, gameID, userID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TablePicks, storage.IndexPicksByUserGame, map[string]any{
		storage.AttrUserGame: storage.CompositeKey(userID.String(), gameID.String()),
	})
}

// DeleteInvitationsForGame removes every invitation into the pick'em game.
func (r *DynamoRepository) DeleteInvitationsForGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TableInvitations, storage.IndexInvitationsByGame,
		map[string]any{"pickem_game_id": gameID.String()})
}

// DeleteParticipantsForGame removes every participant in the pick'em game.
func (r *DynamoRepository) DeleteParticipantsForGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TableParticipants, storage.IndexParticipantsByGame,
		map[string]any{"pickem_game_id": gameID.String()})
}

// DeleteStandingsForGame removes every standing row for the pick'em game.
func (r *DynamoRepository) DeleteStandingsForGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.deleteMatched(ctx, storage.TableStandings, storage.IndexStandingsByGame,
		map[string]any{"pickem_game_id": gameID.String()})
}

// GetUser fetches one user item for enrichment.
func (r *DynamoRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	rec, err := r.store.Get(ctx, storage.TableUsers, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userFromRecord(rec), nil
}

// deleteMatched removes matching items one by one and reports how many went.
// Queries fall back to scans on missing indexes so a half-migrated schema
// still cascades completely.
func (r *DynamoRepository) deleteMatched(ctx context.Context, table, index string, key map[string]any) (int, error) {
	recs, err := storage.QueryFallback(ctx, r.store, table, storage.Query{Index: index, Key: key})
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
