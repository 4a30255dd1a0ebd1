package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gridironlabs/gridpick/go/internal/crypto"
	"github.com/gridironlabs/gridpick/go/internal/storage"
	"github.com/gridironlabs/gridpick/go/internal/storage/sqlite"
	"github.com/gridironlabs/gridpick/go/internal/storage/storagetest"
)

var testTime = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// runBothBackends hands each test an App factory so the same store can be
// viewed with and without an encryption key.
func runBothBackends(t *testing.T, fn func(t *testing.T, newApp func(*crypto.Encryptor) *App, clock *clockwork.FakeClock)) {
	t.Run("sqlite", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(testTime)
		store, err := sqlite.Open(":memory:", clock)
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		fn(t, func(enc *crypto.Encryptor) *App {
			return NewApp(NewSQLiteRepository(store), enc)
		}, clock)
	})
	t.Run("dynamo", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(testTime)
		store := storagetest.New(clock)
		fn(t, func(enc *crypto.Encryptor) *App {
			return NewApp(NewDynamoRepository(store), enc)
		}, clock)
	})
}

func newEncryptor(t *testing.T) *crypto.Encryptor {
	t.Helper()
	enc, err := crypto.NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}
	return enc
}

func TestUpsertSettingKeepsCreatedAt(t *testing.T) {
	runBothBackends(t, func(t *testing.T, newApp func(*crypto.Encryptor) *App, clock *clockwork.FakeClock) {
		ctx := context.Background()
		app := newApp(nil)

		first, err := app.UpsertSetting(ctx, UpsertSettingRequest{
			Category: "smtp", Key: "host", Value: "mail.example.com",
		})
		if err != nil {
			t.Fatalf("UpsertSetting: %v", err)
		}
		if !first.CreatedAt.Equal(testTime) {
			t.Errorf("created_at = %v, want %v", first.CreatedAt, testTime)
		}

		clock.Advance(2 * time.Hour)
		second, err := app.UpsertSetting(ctx, UpsertSettingRequest{
			Category: "smtp", Key: "host", Value: "mail2.example.com", Description: "failover",
		})
		if err != nil {
			t.Fatalf("UpsertSetting again: %v", err)
		}
		if second.Value != "mail2.example.com" || second.Description != "failover" {
			t.Errorf("second upsert = %+v, want new value and description", second)
		}
		if !second.CreatedAt.Equal(testTime) {
			t.Errorf("created_at moved to %v on upsert", second.CreatedAt)
		}
		if !second.UpdatedAt.Equal(testTime.Add(2 * time.Hour)) {
			t.Errorf("updated_at = %v, want %v", second.UpdatedAt, testTime.Add(2*time.Hour))
		}

		list, err := app.GetCategory(ctx, "smtp")
		if err != nil {
			t.Fatalf("GetCategory: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("category rows = %d, want 1 after re-upsert", len(list))
		}
	})
}

func TestEncryptedSettingRoundtrip(t *testing.T) {
	runBothBackends(t, func(t *testing.T, newApp func(*crypto.Encryptor) *App, clock *clockwork.FakeClock) {
		ctx := context.Background()
		app := newApp(newEncryptor(t))

		if _, err := app.UpsertSetting(ctx, UpsertSettingRequest{
			Category: "smtp", Key: "password", Value: "hunter2", Encrypted: true,
		}); err != nil {
			t.Fatalf("UpsertSetting: %v", err)
		}

		stored, err := app.GetSetting(ctx, "smtp", "password")
		if err != nil {
			t.Fatalf("GetSetting: %v", err)
		}
		if !stored.Encrypted {
			t.Error("stored setting lost its encrypted flag")
		}
		if stored.Value == "hunter2" {
			t.Error("stored value is plaintext")
		}

		plain, err := app.GetSettingValue(ctx, "smtp", "password")
		if err != nil {
			t.Fatalf("GetSettingValue: %v", err)
		}
		if plain != "hunter2" {
			t.Errorf("decrypted value = %q, want %q", plain, "hunter2")
		}

		list, err := app.GetCategory(ctx, "smtp")
		if err != nil {
			t.Fatalf("GetCategory: %v", err)
		}
		if len(list) != 1 || list[0].Value != "hunter2" {
			t.Errorf("category view = %+v, want decrypted password", list)
		}
	})
}

func TestEncryptedOperationsWithoutKey(t *testing.T) {
	runBothBackends(t, func(t *testing.T, newApp func(*crypto.Encryptor) *App, clock *clockwork.FakeClock) {
		ctx := context.Background()
		keyed := newApp(newEncryptor(t))
		keyless := newApp(nil)

		if _, err := keyless.UpsertSetting(ctx, UpsertSettingRequest{
			Category: "smtp", Key: "password", Value: "hunter2", Encrypted: true,
		}); !errors.Is(err, ErrNoEncryptionKey) {
			t.Errorf("keyless upsert error = %v, want ErrNoEncryptionKey", err)
		}

		if _, err := keyed.UpsertSetting(ctx, UpsertSettingRequest{
			Category: "smtp", Key: "password", Value: "hunter2", Encrypted: true,
		}); err != nil {
			t.Fatalf("keyed upsert: %v", err)
		}

		if _, err := keyless.GetSettingValue(ctx, "smtp", "password"); !errors.Is(err, ErrNoEncryptionKey) {
			t.Errorf("keyless read error = %v, want ErrNoEncryptionKey", err)
		}
		if _, err := keyless.GetCategory(ctx, "smtp"); !errors.Is(err, ErrNoEncryptionKey) {
			t.Errorf("keyless category error = %v, want ErrNoEncryptionKey", err)
		}

		// Plain settings stay readable without a key.
		if _, err := keyless.UpsertSetting(ctx, UpsertSettingRequest{
			Category: "app", Key: "name", Value: "gridpick",
		}); err != nil {
			t.Fatalf("plain upsert: %v", err)
		}
		if v, err := keyless.GetSettingValue(ctx, "app", "name"); err != nil || v != "gridpick" {
			t.Errorf("plain value = %q, %v; want gridpick, nil", v, err)
		}
	})
}

func TestGetCategorySortsAndDelete(t *testing.T) {
	runBothBackends(t, func(t *testing.T, newApp func(*crypto.Encryptor) *App, clock *clockwork.FakeClock) {
		ctx := context.Background()
		app := newApp(nil)

		for _, key := range []string{"port", "host", "from"} {
			if _, err := app.UpsertSetting(ctx, UpsertSettingRequest{
				Category: "smtp", Key: key, Value: key + "-value",
			}); err != nil {
				t.Fatalf("UpsertSetting %s: %v", key, err)
			}
		}

		list, err := app.GetCategory(ctx, "smtp")
		if err != nil {
			t.Fatalf("GetCategory: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("category rows = %d, want 3", len(list))
		}
		for i, want := range []string{"from", "host", "port"} {
			if list[i].Key != want {
				t.Errorf("list[%d].Key = %q, want %q", i, list[i].Key, want)
			}
		}

		empty, err := app.GetCategory(ctx, "nothing-here")
		if err != nil {
			t.Fatalf("GetCategory empty: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("unknown category rows = %d, want 0", len(empty))
		}

		if err := app.DeleteSetting(ctx, "smtp", "port"); err != nil {
			t.Fatalf("DeleteSetting: %v", err)
		}
		if _, err := app.GetSetting(ctx, "smtp", "port"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("get after delete error = %v, want ErrNotFound", err)
		}

		if _, err := app.UpsertSetting(ctx, UpsertSettingRequest{
			Category: "bad:colon", Key: "k", Value: "v",
		}); err == nil {
			t.Error("expected validation error for category containing the key delimiter")
		}
	})
}
