package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// TeamsRepository defines what the app layer needs from the repository
type TeamsRepository interface {
	CreateTeam(ctx context.Context, team *models.Team) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetTeamByCode(ctx context.Context, code string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	ListTeamsByConference(ctx context.Context, conference models.Conference) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, req UpdateTeamRequest) (*models.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
}

// App handles teams business logic
type App struct {
	repo TeamsRepository
}

// NewApp creates a new teams App
func NewApp(repo TeamsRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateTeam creates a new team from complete seed data with validation.
func (a *App) CreateTeam(ctx context.Context, seed TeamSeed) (*models.Team, error) {
	seed = normalizeSeed(seed)
	if err := validateSeed(seed); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if existing, err := a.repo.GetTeamByCode(ctx, seed.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("team with code %s already exists", seed.Code)
	}

	team, err := a.repo.CreateTeam(ctx, teamFromSeed(seed))
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	log.Info().Str("team_id", team.ID.String()).Str("code", team.Code).Msg("created team")
	return team, nil
}

// GetTeam retrieves a team by ID.
func (a *App) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := a.repo.GetTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetTeamByCode retrieves a team by its franchise code, case-insensitively.
func (a *App) GetTeamByCode(ctx context.Context, code string) (*models.Team, error) {
	team, err := a.repo.GetTeamByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("failed to get team by code: %w", err)
	}
	return team, nil
}

// ListTeams returns every team.
func (a *App) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := a.repo.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// ListTeamsByConference returns all teams in one conference.
func (a *App) ListTeamsByConference(ctx context.Context, conference models.Conference) ([]models.Team, error) {
	if conference != models.ConferenceAFC && conference != models.ConferenceNFC {
		return nil, fmt.Errorf("validation failed: unknown conference %q", conference)
	}
	teams, err := a.repo.ListTeamsByConference(ctx, conference)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by conference: %w", err)
	}
	return teams, nil
}

// UpdateTeam applies an explicit partial update. Unlike upserts, this path
// may overwrite non-empty fields; it exists for manual data fixes.
func (a *App) UpdateTeam(ctx context.Context, id uuid.UUID, req UpdateTeamRequest) (*models.Team, error) {
	if _, err := a.repo.GetTeam(ctx, id); err != nil {
		return nil, fmt.Errorf("team not found: %w", err)
	}

	team, err := a.repo.UpdateTeam(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	log.Info().Str("team_id", team.ID.String()).Str("code", team.Code).Msg("updated team")
	return team, nil
}

// UpsertTeam creates the team if its code is new. For an existing team,
// descriptive fields only fill when previously empty: first write wins, and
// the team keeps its ID so games and picks referencing it stay valid.
func (a *App) UpsertTeam(ctx context.Context, seed TeamSeed) (*models.Team, error) {
	team, _, err := a.upsertTeam(ctx, seed)
	return team, err
}

// SyncTeams upserts the full seed list and reports what changed. Individual
// seed failures are collected rather than aborting the run.
func (a *App) SyncTeams(ctx context.Context, seeds []TeamSeed) (*SyncResult, error) {
	result := &SyncResult{TotalProcessed: len(seeds)}

	for _, seed := range seeds {
		_, outcome, err := a.upsertTeam(ctx, seed)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to upsert team %s: %w", seed.Code, err))
			continue
		}

		switch outcome {
		case outcomeCreated:
			result.Created++
		case outcomeUpdated:
			result.Updated++
		case outcomeUnchanged:
			result.Unchanged++
		}
	}

	log.Info().
		Int("processed", result.TotalProcessed).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Int("errors", len(result.Errors)).
		Msg("synced teams")

	return result, nil
}

// DeleteTeam deletes a team by ID
func (a *App) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	team, err := a.repo.GetTeam(ctx, id)
	if err != nil {
		return fmt.Errorf("team not found: %w", err)
	}

	if err := a.repo.DeleteTeam(ctx, id); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	log.Info().Str("team_id", team.ID.String()).Str("code", team.Code).Msg("deleted team")
	return nil
}

type upsertOutcome int

const (
	outcomeCreated upsertOutcome = iota
	outcomeUpdated
	outcomeUnchanged
)

func (a *App) upsertTeam(ctx context.Context, seed TeamSeed) (*models.Team, upsertOutcome, error) {
	seed = normalizeSeed(seed)
	if seed.Code == "" {
		return nil, 0, fmt.Errorf("validation failed: code is required")
	}

	existing, err := a.repo.GetTeamByCode(ctx, seed.Code)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, 0, fmt.Errorf("failed to get team by code: %w", err)
		}
		if err := validateSeed(seed); err != nil {
			return nil, 0, fmt.Errorf("validation failed: %w", err)
		}
		team, err := a.repo.CreateTeam(ctx, teamFromSeed(seed))
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create team: %w", err)
		}
		return team, outcomeCreated, nil
	}

	// reference data fills only when previously empty; first write wins
	req := UpdateTeamRequest{}
	if existing.Name == "" && seed.Name != "" {
		req.Name = &seed.Name
	}
	if existing.City == "" && seed.City != "" {
		req.City = &seed.City
	}
	if existing.Conference == "" && seed.Conference != "" {
		req.Conference = &seed.Conference
	}
	if existing.Division == "" && seed.Division != "" {
		req.Division = &seed.Division
	}
	if existing.Colors == "" && seed.Colors != "" {
		req.Colors = &seed.Colors
	}
	if existing.LogoURL == "" && seed.LogoURL != "" {
		req.LogoURL = &seed.LogoURL
	}
	if req.IsZero() {
		return existing, outcomeUnchanged, nil
	}

	team, err := a.repo.UpdateTeam(ctx, existing.ID, req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to update team: %w", err)
	}
	return team, outcomeUpdated, nil
}

func teamFromSeed(seed TeamSeed) *models.Team {
	return &models.Team{
		ID:         uuid.New(),
		Code:       seed.Code,
		Name:       seed.Name,
		City:       seed.City,
		Conference: seed.Conference,
		Division:   seed.Division,
		Colors:     seed.Colors,
		LogoURL:    seed.LogoURL,
	}
}

func normalizeSeed(seed TeamSeed) TeamSeed {
	seed.Code = normalizeCode(seed.Code)
	seed.Name = strings.TrimSpace(seed.Name)
	seed.City = strings.TrimSpace(seed.City)
	seed.Division = strings.TrimSpace(seed.Division)
	return seed
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateSeed(seed TeamSeed) error {
	if seed.Code == "" {
		return fmt.Errorf("code is required")
	}
	if len(seed.Code) < 2 || len(seed.Code) > 3 {
		return fmt.Errorf("code must be 2-3 letters")
	}
	if seed.Name == "" {
		return fmt.Errorf("name is required")
	}
	if seed.Conference != models.ConferenceAFC && seed.Conference != models.ConferenceNFC {
		return fmt.Errorf("unknown conference %q", seed.Conference)
	}
	if seed.Division == "" {
		return fmt.Errorf("division is required")
	}
	return nil
}
