// Package config loads runtime settings from an optional YAML file and the
// environment. Environment variables override file values.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects the storage implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendDynamoDB Backend = "dynamodb"
)

type Config struct {
	Backend Backend `yaml:"backend"`

	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`

	DynamoDB struct {
		Region      string `yaml:"region"`
		Endpoint    string `yaml:"endpoint"` // non-empty points at DynamoDB Local
		TablePrefix string `yaml:"table_prefix"`
	} `yaml:"dynamodb"`

	NATS struct {
		URL string `yaml:"url"` // empty disables event publishing
	} `yaml:"nats"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Settings struct {
		EncryptionKey string `yaml:"encryption_key"` // 64 hex characters
	} `yaml:"settings"`

	Scoring struct {
		Interval string `yaml:"interval"` // Go duration; empty runs once
	} `yaml:"scoring"`
}

// Default returns the configuration used when nothing else is set: a local
// SQLite file and no event publishing.
func Default() Config {
	var cfg Config
	cfg.Backend = BackendSQLite
	cfg.SQLite.Path = "gridpick.db"
	cfg.DynamoDB.Region = "us-east-1"
	cfg.DynamoDB.TablePrefix = "gridpick"
	cfg.Log.Level = "info"
	return cfg
}

// Load layers defaults, the YAML file at path (when given), and environment
// overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Backend = Backend(getEnv("GRIDPICK_BACKEND", string(cfg.Backend)))
	cfg.SQLite.Path = getEnv("SQLITE_PATH", cfg.SQLite.Path)
	cfg.DynamoDB.Region = getEnv("AWS_REGION", cfg.DynamoDB.Region)
	cfg.DynamoDB.Endpoint = getEnv("DYNAMODB_ENDPOINT", cfg.DynamoDB.Endpoint)
	cfg.DynamoDB.TablePrefix = getEnv("DYNAMODB_TABLE_PREFIX", cfg.DynamoDB.TablePrefix)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Settings.EncryptionKey = getEnv("SETTINGS_ENCRYPTION_KEY", cfg.Settings.EncryptionKey)
	cfg.Scoring.Interval = getEnv("SCORING_INTERVAL", cfg.Scoring.Interval)
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	case BackendDynamoDB:
		if c.DynamoDB.Region == "" {
			return fmt.Errorf("dynamodb backend requires a region")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := c.EncryptionKey(); err != nil {
		return err
	}
	if _, err := c.ScoringInterval(); err != nil {
		return err
	}
	return nil
}

// EncryptionKey decodes the settings encryption key. Nil when unset, which
// leaves encrypted settings unavailable.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.Settings.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Settings.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("settings encryption key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("settings encryption key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// ScoringInterval parses the scoring loop interval; zero means run once.
func (c *Config) ScoringInterval() (time.Duration, error) {
	if c.Scoring.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Scoring.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid scoring interval %q: %w", c.Scoring.Interval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("scoring interval cannot be negative")
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
