package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/gridironlabs/gridpick/go/internal/storage"
)

var testTime = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func openTest(t *testing.T) (*Provider, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testTime)
	p, err := Open(":memory:", clock)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p, clock
}

func TestPutGetRoundtrip(t *testing.T) {
	p, _ := openTest(t)
	ctx := context.Background()

	id := uuid.New().String()
	kickoff := testTime.Add(6 * 24 * time.Hour)
	err := p.Put(ctx, storage.TableScheduledGames, storage.Record{
		storage.FieldID: id,
		"season_id":     uuid.New().String(),
		"week":          1,
		"home_team_id":  uuid.New().String(),
		"away_team_id":  uuid.New().String(),
		"game_date":     kickoff,
		"status":        "SCHEDULED",
		"home_score":    nil,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, err := p.Get(ctx, storage.TableScheduledGames, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := rec.Int("week"); got != 1 {
		t.Errorf("week = %d", got)
	}
	if got := rec.Time("game_date"); !got.Equal(kickoff) {
		t.Errorf("game_date = %v, want %v", got, kickoff)
	}
	// NULL columns come back absent, matching the key-value backend.
	if rec.Has("home_score") {
		t.Errorf("home_score = %#v, want absent", rec["home_score"])
	}
	if got := rec.Time(storage.FieldCreatedAt); !got.Equal(testTime) {
		t.Errorf("created_at = %v, want clock time", got)
	}

	if _, err := p.Get(ctx, storage.TableScheduledGames, uuid.New().String()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get(absent) = %v, want ErrNotFound", err)
	}
}

func TestPutPreservesCreatedAt(t *testing.T) {
	p, clock := openTest(t)
	ctx := context.Background()

	id := uuid.New().String()
	seed := storage.Record{
		storage.FieldID: id,
		"code":          "KC",
		"name":          "Chiefs",
	}
	if err := p.Put(ctx, storage.TableTeams, seed); err != nil {
		t.Fatalf("Put: %v", err)
	}

	clock.Advance(time.Hour)
	seed["name"] = "Kansas City Chiefs"
	if err := p.Put(ctx, storage.TableTeams, seed); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	rec, err := p.Get(ctx, storage.TableTeams, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := rec.Time(storage.FieldCreatedAt); !got.Equal(testTime) {
		t.Errorf("created_at = %v, want first-write time", got)
	}
	if got := rec.Time(storage.FieldUpdatedAt); !got.Equal(testTime.Add(time.Hour)) {
		t.Errorf("updated_at = %v, want restamped", got)
	}
	if got := rec.String("name"); got != "Kansas City Chiefs" {
		t.Errorf("name = %q", got)
	}
}

func TestUpdatePartialAndClear(t *testing.T) {
	p, _ := openTest(t)
	ctx := context.Background()

	id := uuid.New().String()
	err := p.Put(ctx, storage.TableUsers, storage.Record{
		storage.FieldID: id,
		"email":         "alice@example.com",
		"reset_token":   "tok123",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, err := p.Update(ctx, storage.TableUsers, id, map[string]any{
		"first_name":  "Alice",
		"reset_token": nil,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := rec.String("first_name"); got != "Alice" {
		t.Errorf("first_name = %q", got)
	}
	if rec.Has("reset_token") {
		t.Error("reset_token survived a nil update")
	}
	if got := rec.String("email"); got != "alice@example.com" {
		t.Errorf("untouched email = %q", got)
	}

	if _, err := p.Update(ctx, storage.TableUsers, uuid.New().String(), map[string]any{"first_name": "X"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update(absent) = %v, want ErrNotFound", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	p, _ := openTest(t)
	ctx := context.Background()

	id := uuid.New().String()
	if err := p.Put(ctx, storage.TableTeams, storage.Record{storage.FieldID: id, "code": "DET"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := p.Delete(ctx, storage.TableTeams, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := p.Delete(ctx, storage.TableTeams, id); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
	if _, err := p.Get(ctx, storage.TableTeams, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestUniqueViolationMapsToConflict(t *testing.T) {
	p, _ := openTest(t)
	ctx := context.Background()

	err := p.Put(ctx, storage.TableUsers, storage.Record{
		storage.FieldID: uuid.New().String(),
		"email":         "Taken@Example.com",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Different id, same email modulo case: NOCASE unique index fires.
	err = p.Put(ctx, storage.TableUsers, storage.Record{
		storage.FieldID: uuid.New().String(),
		"email":         "taken@example.com",
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate email Put = %v, want ErrConflict", err)
	}
}

func TestScanMatchesNullColumns(t *testing.T) {
	p, _ := openTest(t)
	ctx := context.Background()

	adminID := uuid.New().String()
	gameID := uuid.New().String()
	put := func(id string, game any) {
		t.Helper()
		err := p.Put(ctx, storage.TableInvitations, storage.Record{
			storage.FieldID:  id,
			"pickem_game_id": game,
			"email":          id + "@example.com",
			"invited_by":     uuid.New().String(),
			"token":          id,
			"status":         "PENDING",
			"expires_at":     testTime.Add(7 * 24 * time.Hour),
		})
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	put(adminID, nil)
	put(uuid.New().String(), gameID)

	recs, err := p.Scan(ctx, storage.TableInvitations, map[string]any{"pickem_game_id": nil})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(recs) != 1 || recs[0].String(storage.FieldID) != adminID {
		t.Errorf("null-column scan = %v, want only the admin invitation", recs)
	}

	all, err := p.Scan(ctx, storage.TableInvitations, nil)
	if err != nil {
		t.Fatalf("Scan all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}
}

func TestTransactRollsBackOnFailure(t *testing.T) {
	p, _ := openTest(t)
	ctx := context.Background()

	first := storage.Record{storage.FieldID: uuid.New().String(), "year": 2030}
	dupYear := storage.Record{storage.FieldID: uuid.New().String(), "year": 2030}

	err := p.Transact(ctx, []storage.Op{
		storage.PutOp(storage.TableSeasons, first),
		storage.PutOp(storage.TableSeasons, dupYear),
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("Transact = %v, want ErrConflict", err)
	}

	recs, err := p.Scan(ctx, storage.TableSeasons, map[string]any{"year": 2030})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("rows after rollback = %d, want 0", len(recs))
	}

	// A clean batch commits both writes.
	err = p.Transact(ctx, []storage.Op{
		storage.PutOp(storage.TableSeasons, first),
		storage.UpdateOp(storage.TableSeasons, first.String(storage.FieldID), map[string]any{"is_current": true}),
	})
	if err != nil {
		t.Fatalf("Transact: %v", err)
	}
	rec, err := p.Get(ctx, storage.TableSeasons, first.String(storage.FieldID))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rec.Bool("is_current") {
		t.Error("batched update not applied")
	}
}
