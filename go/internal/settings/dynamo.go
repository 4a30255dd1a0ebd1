package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// DynamoRepository implements system-setting data access on the key-value
// provider. The "{category}:{key}" composite serves as the primary key, so
// single-setting reads never touch an index.
type DynamoRepository struct {
	store storage.Provider
}

// NewDynamoRepository creates a settings repository backed by DynamoDB.
func NewDynamoRepository(store storage.Provider) *DynamoRepository {
	return &DynamoRepository{store: store}
}

// GetSetting retrieves one setting by category and key.
func (r *DynamoRepository) GetSetting(ctx context.Context, category, key string) (*models.SystemSetting, error) {
	rec, err := r.store.Get(ctx, storage.TableSettings, settingID(category, key))
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return settingFromRecord(rec), nil
}

// ListByCategory returns every setting in a category via the category GSI.
func (r *DynamoRepository) ListByCategory(ctx context.Context, category string) ([]models.SystemSetting, error) {
	recs, err := storage.QueryFallback(ctx, r.store, storage.TableSettings, storage.Query{
		Index: storage.IndexSettingsByCategory,
		Key:   map[string]any{"category": category},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settingsFromRecords(recs), nil
}

// PutSetting writes a setting, updating in place when the (category, key)
// pair already exists so the original created_at survives.
func (r *DynamoRepository) PutSetting(ctx context.Context, s *models.SystemSetting) (*models.SystemSetting, error) {
	id := settingID(s.Category, s.Key)

	if _, err := r.store.Get(ctx, storage.TableSettings, id); err == nil {
		if _, err := r.store.Update(ctx, storage.TableSettings, id, map[string]any{
			"value":       s.Value,
			"encrypted":   s.Encrypted,
			"description": s.Description,
		}); err != nil {
			return nil, fmt.Errorf("failed to update setting: %w", err)
		}
	} else if errors.Is(err, storage.ErrNotFound) {
		if err := r.store.Put(ctx, storage.TableSettings, settingToRecord(s)); err != nil {
			return nil, fmt.Errorf("failed to create setting: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to check existing setting: %w", err)
	}

	return r.GetSetting(ctx, s.Category, s.Key)
}

// DeleteSetting removes one setting by category and key.
func (r *DynamoRepository) DeleteSetting(ctx context.Context, category, key string) error {
	if err := r.store.Delete(ctx, storage.TableSettings, settingID(category, key)); err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}
