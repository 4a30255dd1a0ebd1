package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.SQLite.Path == "" {
		t.Errorf("default config = %+v, want sqlite with a path", cfg)
	}
}

func TestLoadLayersFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridpick.yaml")
	body := strings.Join([]string{
		"backend: dynamodb",
		"dynamodb:",
		"  region: eu-west-1",
		"  table_prefix: pickem",
		"nats:",
		"  url: nats://broker:4222",
		"scoring:",
		"  interval: 5m",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// Environment wins over the file.
	t.Setenv("DYNAMODB_TABLE_PREFIX", "staging")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendDynamoDB || cfg.DynamoDB.Region != "eu-west-1" {
		t.Errorf("config = %+v, want dynamodb in eu-west-1", cfg)
	}
	if cfg.DynamoDB.TablePrefix != "staging" {
		t.Errorf("table prefix = %q, want env override", cfg.DynamoDB.TablePrefix)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.NATS.URL != "nats://broker:4222" {
		t.Errorf("nats url = %q", cfg.NATS.URL)
	}

	interval, err := cfg.ScoringInterval()
	if err != nil {
		t.Fatalf("ScoringInterval: %v", err)
	}
	if interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", interval)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg = Default()
	cfg.Backend = BackendDynamoDB
	cfg.DynamoDB.Region = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for dynamodb without region")
	}

	cfg = Default()
	cfg.Scoring.Interval = "every tuesday"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unparseable interval")
	}

	cfg = Default()
	cfg.Settings.EncryptionKey = "not-hex"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-hex encryption key")
	}

	cfg = Default()
	cfg.Settings.EncryptionKey = hex.EncodeToString([]byte("short"))
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short encryption key")
	}
}

func TestEncryptionKeyRoundtrip(t *testing.T) {
	raw := []byte("0123456789abcdef0123456789abcdef")
	cfg := Default()
	cfg.Settings.EncryptionKey = hex.EncodeToString(raw)

	key, err := cfg.EncryptionKey()
	if err != nil {
		t.Fatalf("EncryptionKey: %v", err)
	}
	if string(key) != string(raw) {
		t.Errorf("key = %q, want %q", key, raw)
	}

	cfg.Settings.EncryptionKey = ""
	key, err = cfg.EncryptionKey()
	if err != nil || key != nil {
		t.Errorf("unset key = (%v, %v), want (nil, nil)", key, err)
	}
}
