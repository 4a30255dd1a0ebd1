package nfldata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
	"github.com/gridironlabs/gridpick/go/internal/storage/sqlite"
	"github.com/gridironlabs/gridpick/go/internal/storage/storagetest"
)

var testTime = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func runBothBackends(t *testing.T, fn func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock)) {
	t.Run("sqlite", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(testTime)
		store, err := sqlite.Open(":memory:", clock)
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		fn(t, NewApp(NewSQLiteRepository(store), clock), store, clock)
	})
	t.Run("dynamo", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(testTime)
		store := storagetest.New(clock)
		fn(t, NewApp(NewDynamoRepository(store), clock), store, clock)
	})
}

func seedTeam(t *testing.T, store storage.Provider, code string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := store.Put(context.Background(), storage.TableTeams, storage.Record{
		storage.FieldID: id.String(),
		"code":          code,
		"name":          code + " Team",
		"city":          "",
		"conference":    "AFC",
		"division":      "West",
		"colors":        "",
		"logo_url":      "",
	})
	if err != nil {
		t.Fatalf("seed team %s: %v", code, err)
	}
	return id
}

func upsertReq(seasonID uuid.UUID, week int, home, away uuid.UUID, kickoff time.Time) UpsertGameRequest {
	return UpsertGameRequest{
		SeasonID:   seasonID,
		Week:       week,
		HomeTeamID: home,
		AwayTeamID: away,
		GameDate:   kickoff,
	}
}

func TestUpsertGameCreatesThenReschedules(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		seasonID := uuid.New()
		home, away := uuid.New(), uuid.New()
		kickoff := testTime.Add(72 * time.Hour)

		created, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, home, away, kickoff))
		if err != nil {
			t.Fatalf("UpsertGame: %v", err)
		}
		if created.Status != models.GameStatusScheduled {
			t.Errorf("status = %q, want SCHEDULED", created.Status)
		}
		if created.SeasonType != models.SeasonTypeRegular {
			t.Errorf("season type = %q, want REG default", created.SeasonType)
		}
		if !created.GameDate.Equal(kickoff) {
			t.Errorf("game date = %v, want %v", created.GameDate, kickoff)
		}

		same, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, home, away, kickoff))
		if err != nil {
			t.Fatalf("UpsertGame repeat: %v", err)
		}
		if same.ID != created.ID {
			t.Fatalf("repeat upsert created new game %s, want %s", same.ID, created.ID)
		}

		moved, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, home, away, kickoff.Add(3*time.Hour)))
		if err != nil {
			t.Fatalf("UpsertGame reschedule: %v", err)
		}
		if moved.ID != created.ID {
			t.Fatalf("reschedule created new game %s, want %s", moved.ID, created.ID)
		}
		if !moved.GameDate.Equal(kickoff.Add(3 * time.Hour)) {
			t.Errorf("game date = %v, want moved kickoff", moved.GameDate)
		}

		all, err := app.ListGamesBySeason(ctx, seasonID)
		if err != nil {
			t.Fatalf("ListGamesBySeason: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("games in season = %d, want 1", len(all))
		}
	})
}

func TestSyncScheduleCounts(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		seasonID := uuid.New()
		kc, det, buf := uuid.New(), uuid.New(), uuid.New()
		kickoff := testTime.Add(96 * time.Hour)

		batch := []UpsertGameRequest{
			upsertReq(seasonID, 1, kc, det, kickoff),
			upsertReq(seasonID, 1, buf, kc, kickoff.Add(3*time.Hour)),
		}

		first, err := app.SyncSchedule(ctx, batch)
		if err != nil {
			t.Fatalf("SyncSchedule: %v", err)
		}
		if first.Created != 2 || first.Updated != 0 || first.Unchanged != 0 || len(first.Errors) != 0 {
			t.Fatalf("first sync = %+v, want 2 created", first)
		}

		// one game moves, one stays, one row is garbage
		batch[1].GameDate = kickoff.Add(27 * time.Hour)
		batch = append(batch, upsertReq(seasonID, 1, det, det, kickoff))

		second, err := app.SyncSchedule(ctx, batch)
		if err != nil {
			t.Fatalf("SyncSchedule rerun: %v", err)
		}
		if second.TotalProcessed != 3 {
			t.Errorf("total = %d, want 3", second.TotalProcessed)
		}
		if second.Unchanged != 1 || second.Updated != 1 || second.Created != 0 {
			t.Errorf("rerun = %+v, want 1 updated 1 unchanged", second)
		}
		if len(second.Errors) != 1 {
			t.Fatalf("errors = %v, want the self-match rejected", second.Errors)
		}
	})
}

func TestUpdateGameScore(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		seasonID := uuid.New()
		home, away := uuid.New(), uuid.New()

		game, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, home, away, testTime.Add(time.Hour)))
		if err != nil {
			t.Fatalf("UpsertGame: %v", err)
		}

		clock.Advance(4 * time.Hour)

		scored, err := app.UpdateGameScore(ctx, game.ID, UpdateScoreRequest{
			HomeScore: 21,
			AwayScore: 20,
			Status:    models.GameStatusCompleted,
		})
		if err != nil {
			t.Fatalf("UpdateGameScore: %v", err)
		}
		if scored.HomeScore == nil || *scored.HomeScore != 21 || scored.AwayScore == nil || *scored.AwayScore != 20 {
			t.Errorf("scores = %v/%v, want 21/20", scored.HomeScore, scored.AwayScore)
		}
		if scored.Status != models.GameStatusCompleted {
			t.Errorf("status = %q, want COMPLETED", scored.Status)
		}
		if scored.LastSyncedAt == nil || !scored.LastSyncedAt.Equal(testTime.Add(4*time.Hour)) {
			t.Errorf("last synced = %v, want %v", scored.LastSyncedAt, testTime.Add(4*time.Hour))
		}
		if winner := scored.WinnerTeamID(); winner == nil || *winner != home {
			t.Errorf("winner = %v, want home team", winner)
		}

		if _, err := app.UpdateGameScore(ctx, game.ID, UpdateScoreRequest{HomeScore: -1, AwayScore: 0, Status: models.GameStatusCompleted}); err == nil {
			t.Error("negative score accepted")
		}
		if _, err := app.UpdateGameScore(ctx, game.ID, UpdateScoreRequest{HomeScore: 1, AwayScore: 0, Status: "HALFTIME"}); err == nil {
			t.Error("unknown status accepted")
		}
		if _, err := app.UpdateGameScore(ctx, uuid.New(), UpdateScoreRequest{HomeScore: 1, AwayScore: 0, Status: models.GameStatusCompleted}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("missing game = %v, want ErrNotFound", err)
		}
	})
}

func TestGetGameDetailJoinsTeams(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		seasonID := uuid.New()
		kc := seedTeam(t, store, "KC")
		det := seedTeam(t, store, "DET")

		game, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, kc, det, testTime.Add(time.Hour)))
		if err != nil {
			t.Fatalf("UpsertGame: %v", err)
		}

		detail, err := app.GetGameDetail(ctx, game.ID)
		if err != nil {
			t.Fatalf("GetGameDetail: %v", err)
		}
		if detail.HomeTeam == nil || detail.HomeTeam.Code != "KC" {
			t.Errorf("home team = %+v, want KC", detail.HomeTeam)
		}
		if detail.AwayTeam == nil || detail.AwayTeam.Code != "DET" {
			t.Errorf("away team = %+v, want DET", detail.AwayTeam)
		}

		// a dangling reference degrades to a nil side, not an error
		orphan, err := app.UpsertGame(ctx, upsertReq(seasonID, 2, uuid.New(), det, testTime.Add(time.Hour)))
		if err != nil {
			t.Fatalf("UpsertGame orphan: %v", err)
		}
		orphanDetail, err := app.GetGameDetail(ctx, orphan.ID)
		if err != nil {
			t.Fatalf("GetGameDetail orphan: %v", err)
		}
		if orphanDetail.HomeTeam != nil {
			t.Errorf("home team = %+v, want nil for missing team", orphanDetail.HomeTeam)
		}
		if orphanDetail.AwayTeam == nil {
			t.Error("away team missing, want DET")
		}
	})
}

func TestGetGamesBySeasonWeekSortsByKickoff(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		seasonID := uuid.New()
		kc := seedTeam(t, store, "KC")
		det := seedTeam(t, store, "DET")
		buf := seedTeam(t, store, "BUF")
		mia := seedTeam(t, store, "MIA")

		late, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, kc, det, testTime.Add(30*time.Hour)))
		if err != nil {
			t.Fatalf("UpsertGame: %v", err)
		}
		early, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, buf, mia, testTime.Add(6*time.Hour)))
		if err != nil {
			t.Fatalf("UpsertGame: %v", err)
		}
		if _, err := app.UpsertGame(ctx, upsertReq(seasonID, 2, det, kc, testTime.Add(200*time.Hour))); err != nil {
			t.Fatalf("UpsertGame week 2: %v", err)
		}

		details, err := app.GetGamesBySeasonWeek(ctx, seasonID, 1)
		if err != nil {
			t.Fatalf("GetGamesBySeasonWeek: %v", err)
		}
		if len(details) != 2 {
			t.Fatalf("week 1 games = %d, want 2", len(details))
		}
		if details[0].ID != early.ID || details[1].ID != late.ID {
			t.Errorf("order = %s, %s; want earliest kickoff first", details[0].ID, details[1].ID)
		}
		if details[0].HomeTeam == nil || details[0].HomeTeam.Code != "BUF" {
			t.Errorf("home team = %+v, want BUF", details[0].HomeTeam)
		}
	})
}

func TestListCompletedGames(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		seasonID := uuid.New()
		a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

		week1, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, a, b, testTime.Add(time.Hour)))
		if err != nil {
			t.Fatalf("UpsertGame: %v", err)
		}
		week2, err := app.UpsertGame(ctx, upsertReq(seasonID, 2, c, d, testTime.Add(170*time.Hour)))
		if err != nil {
			t.Fatalf("UpsertGame: %v", err)
		}
		if _, err := app.UpsertGame(ctx, upsertReq(seasonID, 3, b, a, testTime.Add(340*time.Hour))); err != nil {
			t.Fatalf("UpsertGame: %v", err)
		}

		for _, id := range []uuid.UUID{week1.ID, week2.ID} {
			if _, err := app.UpdateGameScore(ctx, id, UpdateScoreRequest{
				HomeScore: 17, AwayScore: 14, Status: models.GameStatusCompleted,
			}); err != nil {
				t.Fatalf("UpdateGameScore: %v", err)
			}
		}

		all, err := app.ListCompletedGames(ctx, seasonID, nil)
		if err != nil {
			t.Fatalf("ListCompletedGames: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("completed = %d, want 2", len(all))
		}
		if all[0].Week != 1 || all[1].Week != 2 {
			t.Errorf("order = weeks %d,%d; want 1,2", all[0].Week, all[1].Week)
		}

		week := 2
		one, err := app.ListCompletedGames(ctx, seasonID, &week)
		if err != nil {
			t.Fatalf("ListCompletedGames week 2: %v", err)
		}
		if len(one) != 1 || one[0].ID != week2.ID {
			t.Fatalf("completed week 2 = %v, want just the week 2 game", one)
		}
	})
}

func TestFindByMatchupIndexFallback(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testTime)
	store := storagetest.New(clock)
	app := NewApp(NewDynamoRepository(store), clock)
	ctx := context.Background()

	seasonID := uuid.New()
	home, away := uuid.New(), uuid.New()

	created, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, home, away, testTime.Add(time.Hour)))
	if err != nil {
		t.Fatalf("UpsertGame: %v", err)
	}

	store.RemoveIndex(storage.TableScheduledGames, storage.IndexGamesByMatchup)

	again, err := app.UpsertGame(ctx, upsertReq(seasonID, 1, home, away, testTime.Add(time.Hour)))
	if err != nil {
		t.Fatalf("UpsertGame after index removal: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("scan fallback missed the existing game: got %s, want %s", again.ID, created.ID)
	}
}
