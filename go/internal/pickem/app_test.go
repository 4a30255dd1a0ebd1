package pickem

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

func runBothBackends(t *testing.T, fn func(t *testing.T, app *App, store storage.Provider)) {
	t.Run("sqlite", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(testTime)
		store, err := sqlite.Open(":memory:", clock)
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		fn(t, NewApp(NewSQLiteRepository(store), clock), store)
	})
	t.Run("dynamo", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(testTime)
		store := storagetest.New(clock)
		fn(t, NewApp(NewDynamoRepository(store), clock), store)
	})
}

func seedUser(t *testing.T, store storage.Provider, email string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := store.Put(context.Background(), storage.TableUsers, storage.Record{
		storage.FieldID: id.String(),
		"email":         email,
		"password_hash": "x",
		"first_name":    "Pat",
		"last_name":     "Tester",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return id
}

// seedPick plants a pick row the way the picks repositories would store it,
// including the key-value composites when the store is the test double.
func seedPick(t *testing.T, store storage.Provider, gameID, userID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	schedID := uuid.New()
	rec := storage.Record{
		storage.FieldID:     id.String(),
		"user_id":           userID.String(),
		"pickem_game_id":    gameID.String(),
		"scheduled_game_id": schedID.String(),
		"picked_team_id":    uuid.New().String(),
		"week":              1,
		"season_id":         uuid.New().String(),
	}
	if _, kv := store.(*storagetest.Provider); kv {
		rec[storage.AttrUserGame] = storage.CompositeKey(userID.String(), gameID.String())
		rec[storage.AttrUserGameSched] = storage.CompositeKey(userID.String(), gameID.String(), schedID.String())
	}
	if err := store.Put(context.Background(), storage.TablePicks, rec); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
	return id
}

func seedInvitation(t *testing.T, store storage.Provider, gameID uuid.UUID, email string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := store.Put(context.Background(), storage.TableInvitations, storage.Record{
		storage.FieldID:  id.String(),
		"pickem_game_id": gameID.String(),
		"email":          email,
		"invited_by":     uuid.New().String(),
		"token":          uuid.New().String(),
		"status":         "PENDING",
		"expires_at":     testTime.Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed invitation: %v", err)
	}
	return id
}

func seedStanding(t *testing.T, store storage.Provider, gameID, userID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := store.Put(context.Background(), storage.TableStandings, storage.Record{
		storage.FieldID:  id.String(),
		"pickem_game_id": gameID.String(),
		"user_id":        userID.String(),
		"season_id":      uuid.New().String(),
		"wins":           3,
		"losses":         1,
		"pending":        0,
	})
	if err != nil {
		t.Fatalf("seed standing: %v", err)
	}
	return id
}

func countByGame(t *testing.T, store storage.Provider, table string, gameID uuid.UUID) int {
	t.Helper()
	recs, err := store.Scan(context.Background(), table, map[string]any{
		"pickem_game_id": gameID.String(),
	})
	if err != nil {
		t.Fatalf("scan %s: %v", table, err)
	}
	return len(recs)
}

func TestCreatePickemGameEnrollsOwner(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider) {
		ctx := context.Background()
		commissioner := seedUser(t, store, "boss@example.com")

		game, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "  Test League ",
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		})
		if err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}
		if game.Name != "Test League" {
			t.Errorf("name = %q, want trimmed", game.Name)
		}
		if game.Type != models.PickemGameTypeWeekly {
			t.Errorf("type = %q, want WEEKLY default", game.Type)
		}
		if !game.IsActive {
			t.Error("new game should be active")
		}

		owner, err := app.GetParticipant(ctx, game.ID, commissioner)
		if err != nil {
			t.Fatalf("GetParticipant: %v", err)
		}
		if owner.Role != models.ParticipantRoleOwner {
			t.Errorf("role = %q, want OWNER", owner.Role)
		}
		if !owner.JoinedAt.Equal(testTime) {
			t.Errorf("joined at = %v, want %v", owner.JoinedAt, testTime)
		}

		if _, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		}); err == nil {
			t.Error("empty name accepted")
		}
		if _, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Bad Type",
			Type:           "KNOCKOUT",
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		}); err == nil {
			t.Error("unknown type accepted")
		}
	})
}

func TestAddParticipant(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider) {
		ctx := context.Background()
		commissioner := seedUser(t, store, "boss@example.com")
		member := seedUser(t, store, "member@example.com")

		game, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Test League",
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		})
		if err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}

		p, err := app.AddParticipant(ctx, game.ID, member)
		if err != nil {
			t.Fatalf("AddParticipant: %v", err)
		}
		if p.Role != models.ParticipantRoleMember {
			t.Errorf("role = %q, want MEMBER", p.Role)
		}

		if _, err := app.AddParticipant(ctx, game.ID, member); !errors.Is(err, ErrAlreadyParticipant) {
			t.Fatalf("duplicate join = %v, want ErrAlreadyParticipant", err)
		}
		if _, err := app.AddParticipant(ctx, game.ID, commissioner); !errors.Is(err, ErrAlreadyParticipant) {
			t.Fatalf("owner rejoin = %v, want ErrAlreadyParticipant", err)
		}
		if _, err := app.AddParticipant(ctx, uuid.New(), member); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("join missing game = %v, want ErrNotFound", err)
		}
	})
}

func TestRemoveParticipant(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider) {
		ctx := context.Background()
		commissioner := seedUser(t, store, "boss@example.com")
		member := seedUser(t, store, "member@example.com")

		game, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Test League",
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		})
		if err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}
		other, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Other League",
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		})
		if err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}
		if _, err := app.AddParticipant(ctx, game.ID, member); err != nil {
			t.Fatalf("AddParticipant: %v", err)
		}
		if _, err := app.AddParticipant(ctx, other.ID, member); err != nil {
			t.Fatalf("AddParticipant: %v", err)
		}

		seedPick(t, store, game.ID, member)
		seedPick(t, store, game.ID, member)
		seedPick(t, store, game.ID, commissioner)
		seedPick(t, store, other.ID, member)

		if err := app.RemoveParticipant(ctx, game.ID, commissioner); !errors.Is(err, ErrOwnerRemoval) {
			t.Fatalf("remove owner = %v, want ErrOwnerRemoval", err)
		}

		if err := app.RemoveParticipant(ctx, game.ID, member); err != nil {
			t.Fatalf("RemoveParticipant: %v", err)
		}
		if _, err := app.GetParticipant(ctx, game.ID, member); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("participant after removal = %v, want ErrNotFound", err)
		}

		left, err := store.Scan(ctx, storage.TablePicks, map[string]any{
			"user_id":        member.String(),
			"pickem_game_id": game.ID.String(),
		})
		if err != nil {
			t.Fatalf("scan picks: %v", err)
		}
		if len(left) != 0 {
			t.Errorf("member picks left in game = %d, want 0", len(left))
		}
		if n := countByGame(t, store, storage.TablePicks, game.ID); n != 1 {
			t.Errorf("picks left in game = %d, want just the owner's", n)
		}
		if n := countByGame(t, store, storage.TablePicks, other.ID); n != 1 {
			t.Errorf("picks in other game = %d, want untouched", n)
		}

		if err := app.RemoveParticipant(ctx, game.ID, member); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("second removal = %v, want ErrNotFound", err)
		}
	})
}

func TestDeletePickemGameCascades(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider) {
		ctx := context.Background()
		commissioner := seedUser(t, store, "boss@example.com")
		member := seedUser(t, store, "member@example.com")

		doomed, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Doomed League",
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		})
		if err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}
		survivor, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Survivor League",
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		})
		if err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}

		for _, g := range []uuid.UUID{doomed.ID, survivor.ID} {
			if _, err := app.AddParticipant(ctx, g, member); err != nil {
				t.Fatalf("AddParticipant: %v", err)
			}
			seedPick(t, store, g, member)
			seedPick(t, store, g, commissioner)
			seedInvitation(t, store, g, "invitee@example.com")
			seedStanding(t, store, g, member)
		}

		if err := app.DeletePickemGame(ctx, doomed.ID); err != nil {
			t.Fatalf("DeletePickemGame: %v", err)
		}

		if _, err := app.GetPickemGame(ctx, doomed.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("game after delete = %v, want ErrNotFound", err)
		}
		for _, table := range []string{
			storage.TablePicks,
			storage.TableInvitations,
			storage.TableParticipants,
			storage.TableStandings,
		} {
			if n := countByGame(t, store, table, doomed.ID); n != 0 {
				t.Errorf("%s rows referencing deleted game = %d, want 0", table, n)
			}
			if n := countByGame(t, store, table, survivor.ID); n == 0 {
				t.Errorf("%s rows for surviving game were deleted", table)
			}
		}

		if err := app.DeletePickemGame(ctx, doomed.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("second delete = %v, want ErrNotFound", err)
		}
	})
}

func TestListParticipantsEnriched(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider) {
		ctx := context.Background()
		commissioner := seedUser(t, store, "boss@example.com")
		member := seedUser(t, store, "member@example.com")
		ghost := uuid.New() // no user record

		game, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Test League",
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		})
		if err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}
		if _, err := app.AddParticipant(ctx, game.ID, member); err != nil {
			t.Fatalf("AddParticipant: %v", err)
		}
		if _, err := app.AddParticipant(ctx, game.ID, ghost); err != nil {
			t.Fatalf("AddParticipant ghost: %v", err)
		}

		details, err := app.ListParticipants(ctx, game.ID)
		if err != nil {
			t.Fatalf("ListParticipants: %v", err)
		}
		if len(details) != 3 {
			t.Fatalf("participants = %d, want 3", len(details))
		}
		if details[0].Role != models.ParticipantRoleOwner {
			t.Errorf("first participant role = %q, want owner first", details[0].Role)
		}
		if details[0].User == nil || details[0].User.Email != "boss@example.com" {
			t.Errorf("owner user = %+v, want boss@example.com", details[0].User)
		}

		var ghostDetail *ParticipantDetail
		for i := range details {
			if details[i].UserID == ghost {
				ghostDetail = &details[i]
			}
		}
		if ghostDetail == nil {
			t.Fatal("ghost participant missing from list")
		}
		if ghostDetail.User != nil {
			t.Errorf("ghost user = %+v, want nil", ghostDetail.User)
		}
	})
}

func TestListPickemGames(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider) {
		ctx := context.Background()
		commissioner := seedUser(t, store, "boss@example.com")
		member := seedUser(t, store, "member@example.com")
		seasonID := uuid.New()

		alpha, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Alpha",
			SeasonID:       seasonID,
			CommissionerID: commissioner,
		})
		if err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}
		if _, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Beta",
			SeasonID:       seasonID,
			CommissionerID: commissioner,
		}); err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}
		if _, err := app.AddParticipant(ctx, alpha.ID, member); err != nil {
			t.Fatalf("AddParticipant: %v", err)
		}

		bySeason, err := app.ListPickemGamesBySeason(ctx, seasonID)
		if err != nil {
			t.Fatalf("ListPickemGamesBySeason: %v", err)
		}
		if len(bySeason) != 2 || bySeason[0].Name != "Alpha" || bySeason[1].Name != "Beta" {
			t.Errorf("season games = %+v, want Alpha, Beta", bySeason)
		}

		mine, err := app.ListPickemGamesByUser(ctx, member)
		if err != nil {
			t.Fatalf("ListPickemGamesByUser: %v", err)
		}
		if len(mine) != 1 || mine[0].ID != alpha.ID {
			t.Errorf("member games = %+v, want just Alpha", mine)
		}

		both, err := app.ListPickemGamesByUser(ctx, commissioner)
		if err != nil {
			t.Fatalf("ListPickemGamesByUser: %v", err)
		}
		if len(both) != 2 {
			t.Errorf("commissioner games = %d, want 2", len(both))
		}
	})
}

func TestUpdatePickemGame(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider) {
		ctx := context.Background()
		commissioner := seedUser(t, store, "boss@example.com")

		game, err := app.CreatePickemGame(ctx, CreatePickemGameRequest{
			Name:           "Test League",
			SeasonID:       uuid.New(),
			CommissionerID: commissioner,
		})
		if err != nil {
			t.Fatalf("CreatePickemGame: %v", err)
		}

		name := "Renamed League"
		inactive := false
		updated, err := app.UpdatePickemGame(ctx, game.ID, UpdatePickemGameRequest{
			Name:     &name,
			IsActive: &inactive,
		})
		if err != nil {
			t.Fatalf("UpdatePickemGame: %v", err)
		}
		if updated.Name != "Renamed League" || updated.IsActive {
			t.Errorf("updated = %+v, want renamed and inactive", updated)
		}

		empty := "   "
		if _, err := app.UpdatePickemGame(ctx, game.ID, UpdatePickemGameRequest{Name: &empty}); err == nil {
			t.Error("blank rename accepted")
		}

		same, err := app.UpdatePickemGame(ctx, game.ID, UpdatePickemGameRequest{})
		if err != nil {
			t.Fatalf("empty update: %v", err)
		}
		if same.Name != "Renamed League" {
			t.Errorf("empty update changed name to %q", same.Name)
		}
	})
}
