package teams

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SQLiteRepository implements team data access on the relational provider.
// The unique code column enforces one row per franchise.
type SQLiteRepository struct {
	store storage.Provider
}

// NewSQLiteRepository creates a teams repository backed by SQLite.
func NewSQLiteRepository(store storage.Provider) *SQLiteRepository {
	return &SQLiteRepository{store: store}
}

// CreateTeam inserts a new team and returns it with storage timestamps.
func (r *SQLiteRepository) CreateTeam(ctx context.Context, team *models.Team) (*models.Team, error) {
	if err := r.store.Put(ctx, storage.TableTeams, teamToRecord(team)); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return r.GetTeam(ctx, team.ID)
}

// GetTeam retrieves a team by ID.
func (r *SQLiteRepository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	rec, err := r.store.Get(ctx, storage.TableTeams, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return teamFromRecord(rec), nil
}

// GetTeamByCode retrieves a team by its franchise code, e.g. "KC".
func (r *SQLiteRepository) GetTeamByCode(ctx context.Context, code string) (*models.Team, error) {
	recs, err := r.store.Query(ctx, storage.TableTeams, storage.Query{
		Index: storage.IndexTeamsByCode,
		Key:   map[string]any{"code": code},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get team by code: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to get team by code: %w", storage.ErrNotFound)
	}
	return teamFromRecord(recs[0]), nil
}

// ListTeams returns every team.
func (r *SQLiteRepository) ListTeams(ctx context.Context) ([]models.Team, error) {
	recs, err := r.store.Scan(ctx, storage.TableTeams, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teamsFromRecords(recs), nil
}

// ListTeamsByConference returns all teams in one conference.
func (r *SQLiteRepository) ListTeamsByConference(ctx context.Context, conference models.Conference) ([]models.Team, error) {
	recs, err := r.store.Scan(ctx, storage.TableTeams, map[string]any{
		"conference": string(conference),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by conference: %w", err)
	}
	return teamsFromRecords(recs), nil
}

// UpdateTeam applies the non-nil fields of the request, keeping the team's
// identity and code.
func (r *SQLiteRepository) UpdateTeam(ctx context.Context, id uuid.UUID, req UpdateTeamRequest) (*models.Team, error) {
	fields := updateFields(req)
	if len(fields) == 0 {
		return r.GetTeam(ctx, id)
	}
	rec, err := r.store.Update(ctx, storage.TableTeams, id.String(), fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return teamFromRecord(rec), nil
}

// DeleteTeam deletes a team by ID.
func (r *SQLiteRepository) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, storage.TableTeams, id.String()); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}
