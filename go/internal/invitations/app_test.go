package invitations

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

func seedUser(t *testing.T, store storage.Provider, email string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	rec := storage.Record{
		storage.FieldID: id.String(),
		"email":         email,
		"password_hash": "x",
		"first_name":    "Pat",
		"last_name":     "Tester",
		"is_admin":      false,
	}
	if _, kv := store.(*storagetest.Provider); kv {
		rec[storage.AttrEmailLC] = email
		rec[storage.AttrAdminFlag] = storage.FlagValue(false)
	}
	if err := store.Put(context.Background(), storage.TableUsers, rec); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func invite(t *testing.T, app *App, gameID *uuid.UUID, email string) *models.Invitation {
	t.Helper()
	inv, err := app.CreateInvitation(context.Background(), CreateInvitationRequest{
		PickemGameID: gameID,
		Email:        email,
		InvitedBy:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("CreateInvitation(%s): %v", email, err)
	}
	return inv
}

func TestCreateInvitationRejectsDuplicatePending(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		gameA, gameB := uuid.New(), uuid.New()

		first := invite(t, app, &gameA, "Fan@Example.com")
		if first.Email != "fan@example.com" {
			t.Errorf("stored email = %q, want normalized lowercase", first.Email)
		}
		if got := first.ExpiresAt; !got.Equal(testTime.Add(InvitationTTL)) {
			t.Errorf("expires_at = %v, want %v", got, testTime.Add(InvitationTTL))
		}

		_, err := app.CreateInvitation(ctx, CreateInvitationRequest{
			PickemGameID: &gameA,
			Email:        "fan@example.COM",
			InvitedBy:    uuid.New(),
		})
		if !errors.Is(err, ErrPendingExists) {
			t.Errorf("duplicate error = %v, want ErrPendingExists", err)
		}

		// A different game and the admin role are separate targets.
		invite(t, app, &gameB, "fan@example.com")
		admin := invite(t, app, nil, "fan@example.com")
		if !admin.IsAdminInvite() {
			t.Error("nil game should build an admin invitation")
		}
		if _, err := app.CreateAdminInvitation(ctx, "fan@example.com", uuid.New()); !errors.Is(err, ErrPendingExists) {
			t.Errorf("duplicate admin error = %v, want ErrPendingExists", err)
		}

		// Cancelling frees the slot.
		if _, err := app.CancelInvitation(ctx, first.ID); err != nil {
			t.Fatalf("CancelInvitation: %v", err)
		}
		invite(t, app, &gameA, "fan@example.com")
	})
}

func TestAcceptGameInvitationEnrollsMember(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		gameID := uuid.New()
		userID := seedUser(t, store, "joiner@example.com")

		inv := invite(t, app, &gameID, "joiner@example.com")

		accepted, err := app.AcceptInvitation(ctx, inv.Token, userID)
		if err != nil {
			t.Fatalf("AcceptInvitation: %v", err)
		}
		if accepted.Status != models.InvitationStatusAccepted {
			t.Errorf("status = %q, want ACCEPTED", accepted.Status)
		}
		if accepted.AcceptedAt == nil || !accepted.AcceptedAt.Equal(testTime) {
			t.Errorf("accepted_at = %v, want %v", accepted.AcceptedAt, testTime)
		}

		members, err := store.Scan(ctx, storage.TableParticipants, map[string]any{
			"pickem_game_id": gameID.String(),
			"user_id":        userID.String(),
		})
		if err != nil {
			t.Fatalf("scan participants: %v", err)
		}
		if len(members) != 1 {
			t.Fatalf("participant rows = %d, want 1", len(members))
		}
		if role := members[0].String("role"); role != string(models.ParticipantRoleMember) {
			t.Errorf("role = %q, want MEMBER", role)
		}

		if _, err := app.AcceptInvitation(ctx, inv.Token, userID); !errors.Is(err, ErrNotPending) {
			t.Errorf("second accept error = %v, want ErrNotPending", err)
		}
	})
}

func TestAcceptAdminInvitationGrantsAdmin(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		userID := seedUser(t, store, "ops@example.com")

		inv := invite(t, app, nil, "ops@example.com")
		if _, err := app.AcceptInvitation(ctx, inv.Token, userID); err != nil {
			t.Fatalf("AcceptInvitation: %v", err)
		}

		rec, err := store.Get(ctx, storage.TableUsers, userID.String())
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if !rec.Bool("is_admin") {
			t.Error("user is_admin not set by admin invitation")
		}
		if _, kv := store.(*storagetest.Provider); kv {
			if flag := rec.String(storage.AttrAdminFlag); flag != "true" {
				t.Errorf("admin_flag = %q, want %q", flag, "true")
			}
		}
	})
}

func TestAcceptExpiredInvitationMarksExpired(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		gameID := uuid.New()
		userID := seedUser(t, store, "late@example.com")

		inv := invite(t, app, &gameID, "late@example.com")
		clock.Advance(InvitationTTL + time.Hour)

		_, err := app.AcceptInvitation(ctx, inv.Token, userID)
		if !errors.Is(err, ErrExpired) {
			t.Fatalf("accept error = %v, want ErrExpired", err)
		}

		stale, err := app.GetInvitationByToken(ctx, inv.Token)
		if err != nil {
			t.Fatalf("GetInvitationByToken: %v", err)
		}
		if stale.Status != models.InvitationStatusExpired {
			t.Errorf("status = %q, want EXPIRED", stale.Status)
		}
		if _, err := app.AcceptInvitation(ctx, inv.Token, userID); !errors.Is(err, ErrNotPending) {
			t.Errorf("accept after expiry error = %v, want ErrNotPending", err)
		}

		// The expired invitation no longer blocks a fresh one.
		invite(t, app, &gameID, "late@example.com")
	})
}

func TestGetInvitationByTokenFailsClosed(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		for _, token := range []string{"", "   ", "never-issued"} {
			if _, err := app.GetInvitationByToken(ctx, token); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("token %q error = %v, want ErrNotFound", token, err)
			}
		}
	})
}

func TestDeclineAndCancel(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		gameID := uuid.New()

		inv := invite(t, app, &gameID, "maybe@example.com")
		declined, err := app.DeclineInvitation(ctx, inv.Token)
		if err != nil {
			t.Fatalf("DeclineInvitation: %v", err)
		}
		if declined.Status != models.InvitationStatusDeclined {
			t.Errorf("status = %q, want DECLINED", declined.Status)
		}
		if _, err := app.CancelInvitation(ctx, inv.ID); !errors.Is(err, ErrNotPending) {
			t.Errorf("cancel declined error = %v, want ErrNotPending", err)
		}

		second := invite(t, app, &gameID, "maybe@example.com")
		cancelled, err := app.CancelInvitation(ctx, second.ID)
		if err != nil {
			t.Fatalf("CancelInvitation: %v", err)
		}
		if cancelled.Status != models.InvitationStatusCancelled {
			t.Errorf("status = %q, want CANCELLED", cancelled.Status)
		}
		if _, err := app.CancelInvitation(ctx, second.ID); !errors.Is(err, ErrNotPending) {
			t.Errorf("second cancel error = %v, want ErrNotPending", err)
		}
	})
}

func TestListPendingForEmail(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		gameA, gameB := uuid.New(), uuid.New()

		one := invite(t, app, &gameA, "busy@example.com")
		invite(t, app, &gameB, "busy@example.com")
		invite(t, app, nil, "busy@example.com")
		invite(t, app, &gameA, "other@example.com")

		pending, err := app.ListPendingForEmail(ctx, "BUSY@example.com")
		if err != nil {
			t.Fatalf("ListPendingForEmail: %v", err)
		}
		if len(pending) != 3 {
			t.Fatalf("pending = %d, want 3", len(pending))
		}

		if _, err := app.DeclineInvitation(ctx, one.Token); err != nil {
			t.Fatalf("DeclineInvitation: %v", err)
		}
		pending, err = app.ListPendingForEmail(ctx, "busy@example.com")
		if err != nil {
			t.Fatalf("ListPendingForEmail after decline: %v", err)
		}
		if len(pending) != 2 {
			t.Errorf("pending after decline = %d, want 2", len(pending))
		}

		all, err := app.ListInvitationsForGame(ctx, gameA)
		if err != nil {
			t.Fatalf("ListInvitationsForGame: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("game invitations = %d, want 2 regardless of status", len(all))
		}
	})
}

func TestDeleteInvitationsForGame(t *testing.T) {
	runBothBackends(t, func(t *testing.T, app *App, store storage.Provider, clock *clockwork.FakeClock) {
		ctx := context.Background()
		doomed, survivor := uuid.New(), uuid.New()

		invite(t, app, &doomed, "a@example.com")
		invite(t, app, &doomed, "b@example.com")
		invite(t, app, &survivor, "c@example.com")

		deleted, err := app.DeleteInvitationsForGame(ctx, doomed)
		if err != nil {
			t.Fatalf("DeleteInvitationsForGame: %v", err)
		}
		if deleted != 2 {
			t.Errorf("deleted = %d, want 2", deleted)
		}

		left, err := store.Scan(ctx, storage.TableInvitations, nil)
		if err != nil {
			t.Fatalf("scan invitations: %v", err)
		}
		if len(left) != 1 || left[0].String("pickem_game_id") != survivor.String() {
			t.Errorf("remaining invitations = %v, want only the survivor's", left)
		}
	})
}

func TestPendingLookupSurvivesMissingIndex(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testTime)
	store := storagetest.New(clock)
	app := NewApp(NewDynamoRepository(store), clock)
	ctx := context.Background()
	gameID := uuid.New()

	inv := invite(t, app, &gameID, "drift@example.com")

	store.RemoveIndex(storage.TableInvitations, storage.IndexInvitationsByPending)
	if _, err := app.CreateInvitation(ctx, CreateInvitationRequest{
		PickemGameID: &gameID,
		Email:        "drift@example.com",
		InvitedBy:    uuid.New(),
	}); !errors.Is(err, ErrPendingExists) {
		t.Errorf("duplicate after index removal = %v, want ErrPendingExists", err)
	}

	store.RemoveIndex(storage.TableInvitations, storage.IndexInvitationsByToken)
	got, err := app.GetInvitationByToken(ctx, inv.Token)
	if err != nil {
		t.Fatalf("GetInvitationByToken after index removal: %v", err)
	}
	if got.ID != inv.ID {
		t.Errorf("token lookup = %s, want %s", got.ID, inv.ID)
	}
}
