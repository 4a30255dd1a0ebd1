package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/crypto"
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SettingsRepository defines the data access layer contract for system
// settings.
type SettingsRepository interface {
	GetSetting(ctx context.Context, category, key string) (*models.SystemSetting, error)
	ListByCategory(ctx context.Context, category string) ([]models.SystemSetting, error)
	PutSetting(ctx context.Context, s *models.SystemSetting) (*models.SystemSetting, error)
	DeleteSetting(ctx context.Context, category, key string) error
}

// App contains the business logic for runtime configuration entries such as
// SMTP credentials. Values flagged encrypted are sealed with AES-256-GCM
// before storage; the encryptor is nil when no key is configured, and any
// encrypted operation then fails with ErrNoEncryptionKey.
type App struct {
	repo SettingsRepository
	enc  *crypto.Encryptor
}

// NewApp creates a settings App. enc may be nil when no encryption key is
// configured.
func NewApp(repo SettingsRepository, enc *crypto.Encryptor) *App {
	return &App{repo: repo, enc: enc}
}

// UpsertSetting creates or replaces the setting at (category, key).
func (a *App) UpsertSetting(ctx context.Context, req UpsertSettingRequest) (*models.SystemSetting, error) {
	if err := validateSetting(req.Category, req.Key); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	value := req.Value
	if req.Encrypted {
		if a.enc == nil {
			return nil, fmt.Errorf("setting %s/%s: %w", req.Category, req.Key, ErrNoEncryptionKey)
		}
		sealed, err := a.enc.EncryptString(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt setting: %w", err)
		}
		value = sealed
	}

	saved, err := a.repo.PutSetting(ctx, &models.SystemSetting{
		Category:    req.Category,
		Key:         req.Key,
		Value:       value,
		Encrypted:   req.Encrypted,
		Description: req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}

	log.Info().
		Str("category", saved.Category).
		Str("key", saved.Key).
		Bool("encrypted", saved.Encrypted).
		Msg("setting upserted")
	return saved, nil
}

// GetSetting returns the stored form of one setting; encrypted values stay
// sealed. Use GetSettingValue for the plaintext.
func (a *App) GetSetting(ctx context.Context, category, key string) (*models.SystemSetting, error) {
	return a.repo.GetSetting(ctx, category, key)
}

// GetSettingValue returns the usable value of one setting, decrypting it
// when flagged.
func (a *App) GetSettingValue(ctx context.Context, category, key string) (string, error) {
	setting, err := a.repo.GetSetting(ctx, category, key)
	if err != nil {
		return "", err
	}
	if !setting.Encrypted {
		return setting.Value, nil
	}
	if a.enc == nil {
		return "", fmt.Errorf("setting %s/%s: %w", category, key, ErrNoEncryptionKey)
	}
	plain, err := a.enc.DecryptString(setting.Value)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt setting %s/%s: %w", category, key, err)
	}
	return plain, nil
}

// GetCategory returns every setting in a category sorted by key, with
// encrypted values opened for display.
func (a *App) GetCategory(ctx context.Context, category string) ([]models.SystemSetting, error) {
	list, err := a.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	for i := range list {
		if !list[i].Encrypted {
			continue
		}
		if a.enc == nil {
			return nil, fmt.Errorf("setting %s/%s: %w", list[i].Category, list[i].Key, ErrNoEncryptionKey)
		}
		plain, err := a.enc.DecryptString(list[i].Value)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt setting %s/%s: %w", list[i].Category, list[i].Key, err)
		}
		list[i].Value = plain
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list, nil
}

// DeleteSetting removes one setting.
func (a *App) DeleteSetting(ctx context.Context, category, key string) error {
	if err := validateSetting(category, key); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := a.repo.DeleteSetting(ctx, category, key); err != nil {
		return err
	}

	log.Info().Str("category", category).Str("key", key).Msg("setting deleted")
	return nil
}

func validateSetting(category, key string) error {
	if strings.TrimSpace(category) == "" {
		return errors.New("category is required")
	}
	if strings.Contains(category, storage.KeyDelimiter) {
		return fmt.Errorf("category may not contain %q", storage.KeyDelimiter)
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}
	return nil
}
