package factory

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gridironlabs/gridpick/go/internal/config"
	"github.com/gridironlabs/gridpick/go/internal/invitations"
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/nfldata"
	"github.com/gridironlabs/gridpick/go/internal/pickem"
	"github.com/gridironlabs/gridpick/go/internal/picks"
	"github.com/gridironlabs/gridpick/go/internal/settings"
	"github.com/gridironlabs/gridpick/go/internal/teams"
	"github.com/gridironlabs/gridpick/go/internal/users"
)

var testTime = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestServices(t *testing.T, mutate func(*config.Config)) *Services {
	t.Helper()
	cfg := config.Default()
	cfg.SQLite.Path = ":memory:"
	if mutate != nil {
		mutate(&cfg)
	}
	svcs, err := New(context.Background(), &cfg, clockwork.NewFakeClockAt(testTime))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { svcs.Close() })
	return svcs
}

// TestSeasonScoringFlow walks the whole product loop over one wired service
// graph: reference data in, a second player joining by invitation, picks
// made, a final score synced, the calculator settling it, stats and
// standings reading back out, and the cascade delete cleaning up.
func TestSeasonScoringFlow(t *testing.T) {
	svcs := newTestServices(t, nil)
	ctx := context.Background()

	season, err := svcs.Seasons.CreateSeason(ctx, 2025, true)
	if err != nil {
		t.Fatalf("CreateSeason: %v", err)
	}
	current, err := svcs.Seasons.GetCurrentSeason(ctx)
	if err != nil || current.ID != season.ID {
		t.Fatalf("GetCurrentSeason = (%v, %v), want %s", current, err, season.ID)
	}

	sync, err := svcs.Teams.SyncTeams(ctx, []teams.TeamSeed{
		{Code: "KC", Name: "Kansas City Chiefs", Conference: models.ConferenceAFC, Division: "West"},
		{Code: "DET", Name: "Detroit Lions", Conference: models.ConferenceNFC, Division: "North"},
	})
	if err != nil || len(sync.Errors) != 0 {
		t.Fatalf("SyncTeams = (%+v, %v)", sync, err)
	}
	kc, err := svcs.Teams.GetTeamByCode(ctx, "KC")
	if err != nil {
		t.Fatalf("GetTeamByCode: %v", err)
	}
	det, err := svcs.Teams.GetTeamByCode(ctx, "DET")
	if err != nil {
		t.Fatalf("GetTeamByCode: %v", err)
	}

	game, err := svcs.NFLData.UpsertGame(ctx, nfldata.UpsertGameRequest{
		SeasonID:   season.ID,
		Week:       1,
		HomeTeamID: kc.ID,
		AwayTeamID: det.ID,
		GameDate:   testTime.Add(6 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("UpsertGame: %v", err)
	}

	alice, err := svcs.Users.CreateUser(ctx, users.CreateUserRequest{
		Email:     "alice@example.com",
		Password:  "correct-horse",
		FirstName: "Alice",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	league, err := svcs.Pickem.CreatePickemGame(ctx, pickem.CreatePickemGameRequest{
		Name:           "Office League",
		SeasonID:       season.ID,
		CommissionerID: alice.ID,
	})
	if err != nil {
		t.Fatalf("CreatePickemGame: %v", err)
	}

	bob, err := svcs.Users.CreateUser(ctx, users.CreateUserRequest{
		Email:     "bob@example.com",
		Password:  "battery-staple",
		FirstName: "Bob",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	invite, err := svcs.Invitations.CreateInvitation(ctx, invitations.CreateInvitationRequest{
		PickemGameID: &league.ID,
		Email:        "bob@example.com",
		InvitedBy:    alice.ID,
	})
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}
	if _, err := svcs.Invitations.AcceptInvitation(ctx, invite.Token, bob.ID); err != nil {
		t.Fatalf("AcceptInvitation: %v", err)
	}

	if _, err := svcs.Picks.CreateOrUpdatePick(ctx, picks.CreateOrUpdatePickRequest{
		UserID:          alice.ID,
		PickemGameID:    league.ID,
		ScheduledGameID: game.ID,
		PickedTeamID:    kc.ID,
	}); err != nil {
		t.Fatalf("CreateOrUpdatePick: %v", err)
	}
	if _, err := svcs.Picks.CreateOrUpdatePick(ctx, picks.CreateOrUpdatePickRequest{
		UserID:          bob.ID,
		PickemGameID:    league.ID,
		ScheduledGameID: game.ID,
		PickedTeamID:    det.ID,
	}); err != nil {
		t.Fatalf("CreateOrUpdatePick: %v", err)
	}

	if _, err := svcs.NFLData.UpdateGameScore(ctx, game.ID, nfldata.UpdateScoreRequest{
		HomeScore: 21,
		AwayScore: 20,
		Status:    models.GameStatusCompleted,
	}); err != nil {
		t.Fatalf("UpdateGameScore: %v", err)
	}

	result, err := svcs.Calculator.ProcessSeason(ctx, season.ID, nil)
	if err != nil {
		t.Fatalf("ProcessSeason: %v", err)
	}
	if result.GamesProcessed != 1 || result.PicksUpdated != 2 || result.StandingsUpdated != 1 {
		t.Errorf("result = %+v, want 1 game, 2 picks, 1 standing recompute", result)
	}

	stats, err := svcs.Picks.GetPickStats(ctx, alice.ID, season.ID)
	if err != nil {
		t.Fatalf("GetPickStats: %v", err)
	}
	if stats.Correct != 1 || stats.Accuracy != 100.0 {
		t.Errorf("alice stats = %+v, want 1 correct at 100.00", stats)
	}
	stats, err = svcs.Picks.GetPickStats(ctx, bob.ID, season.ID)
	if err != nil {
		t.Fatalf("GetPickStats: %v", err)
	}
	if stats.Incorrect != 1 || stats.Accuracy != 0 {
		t.Errorf("bob stats = %+v, want 1 incorrect at 0.00", stats)
	}

	table, err := svcs.Standings.ListStandingsForGame(ctx, league.ID)
	if err != nil {
		t.Fatalf("ListStandingsForGame: %v", err)
	}
	if len(table) != 2 || table[0].UserID != alice.ID || table[0].Wins != 1 || table[1].UserID != bob.ID || table[1].Losses != 1 {
		t.Errorf("standings = %+v, want alice 1-0 over bob 0-1", table)
	}

	if err := svcs.Pickem.DeletePickemGame(ctx, league.ID); err != nil {
		t.Fatalf("DeletePickemGame: %v", err)
	}
	if _, err := svcs.Pickem.GetPickemGame(ctx, league.ID); err == nil {
		t.Error("pickem game survived the cascade")
	}
	if left, err := svcs.Invitations.ListInvitationsForGame(ctx, league.ID); err != nil || len(left) != 0 {
		t.Errorf("invitations after cascade = (%v, %v), want none", left, err)
	}
	if left, err := svcs.Picks.GetUserPicks(ctx, bob.ID, league.ID, nil); err != nil || len(left) != 0 {
		t.Errorf("picks after cascade = (%v, %v), want none", left, err)
	}
	if table, err = svcs.Standings.ListStandingsForGame(ctx, league.ID); err != nil || len(table) != 0 {
		t.Errorf("standings after cascade = (%v, %v), want none", table, err)
	}
}

func TestSettingsEncryptionWiredFromConfig(t *testing.T) {
	key := hex.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	svcs := newTestServices(t, func(cfg *config.Config) {
		cfg.Settings.EncryptionKey = key
	})
	ctx := context.Background()

	if _, err := svcs.Settings.UpsertSetting(ctx, settings.UpsertSettingRequest{
		Category:  "espn",
		Key:       "api_key",
		Value:     "hunter2",
		Encrypted: true,
	}); err != nil {
		t.Fatalf("UpsertSetting: %v", err)
	}

	value, err := svcs.Settings.GetSettingValue(ctx, "espn", "api_key")
	if err != nil {
		t.Fatalf("GetSettingValue: %v", err)
	}
	if value != "hunter2" {
		t.Errorf("value = %q, want decrypted plaintext", value)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "postgres"
	if _, err := New(context.Background(), &cfg, clockwork.NewFakeClockAt(testTime)); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewWiresDynamoBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendDynamoDB
	cfg.DynamoDB.Endpoint = "http://localhost:8000"

	svcs, err := New(context.Background(), &cfg, clockwork.NewFakeClockAt(testTime))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer svcs.Close()

	if svcs.Picks == nil || svcs.Calculator == nil || svcs.Standings == nil {
		t.Error("dynamo service graph left apps unwired")
	}
}
