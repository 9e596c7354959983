// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/btc-tracker/backend/internal/application/adapter"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
	"github.com/btc-tracker/backend/internal/integration/persistence/model"
)

// storageRepository implements the adapter.CollectionStorage interface.
type storageRepository struct {
	db *gorm.DB
}

// NewStorageRepository creates a new key-value storage repository instance.
func NewStorageRepository(db *gorm.DB) adapter.CollectionStorage {
	return &storageRepository{
		db: db,
	}
}

// Get retrieves the document stored under key with its revision.
func (r *storageRepository) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var entry model.StorageEntryModel
	result := r.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, 0, domainerror.ErrStorageKeyNotFound
		}
		return nil, 0, result.Error
	}
	return []byte(entry.Value), entry.Revision, nil
}

// Put inserts the document when expected is 0, or replaces it when the
// stored revision still equals expected.
func (r *storageRepository) Put(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	now := time.Now().UTC()

	if expected == 0 {
		entry := &model.StorageEntryModel{
			Key:       key,
			Value:     string(value),
			Revision:  1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, domainerror.ErrStorageConflict
		}
		return 1, nil
	}

	next := expected + 1
	result := r.db.WithContext(ctx).
		Model(&model.StorageEntryModel{}).
		Where("storage_key = ? AND revision = ?", key, expected).
		Updates(map[string]interface{}{
			"value":      string(value),
			"revision":   next,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, domainerror.ErrStorageConflict
	}
	return next, nil
}
