package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
	"github.com/btc-tracker/backend/internal/integration/persistence/model"
)

// lnMarketsConfigRepository implements the adapter.LNMarketsConfigRepository interface.
type lnMarketsConfigRepository struct {
	db *gorm.DB
}

// NewLNMarketsConfigRepository creates a new LN Markets config repository instance.
func NewLNMarketsConfigRepository(db *gorm.DB) adapter.LNMarketsConfigRepository {
	return &lnMarketsConfigRepository{
		db: db,
	}
}

// Create creates a new config in the database.
func (r *lnMarketsConfigRepository) Create(ctx context.Context, config *entity.LNMarketsConfig) error {
	result := r.db.WithContext(ctx).Create(model.LNMarketsConfigFromEntity(config))
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a config by its ID, scoped to its owner.
func (r *lnMarketsConfigRepository) FindByID(ctx context.Context, userIdentity string, id uuid.UUID) (*entity.LNMarketsConfig, error) {
	var configModel model.LNMarketsConfigModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_identity = ?", id, userIdentity).
		First(&configModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrLNMarketsConfigNotFound
		}
		return nil, result.Error
	}
	return configModel.ToEntity(), nil
}

// FindByUser retrieves all configs for a given user.
func (r *lnMarketsConfigRepository) FindByUser(ctx context.Context, userIdentity string) ([]*entity.LNMarketsConfig, error) {
	var configModels []model.LNMarketsConfigModel
	result := r.db.WithContext(ctx).
		Where("user_identity = ?", userIdentity).
		Order("created_at ASC").
		Find(&configModels)
	if result.Error != nil {
		return nil, result.Error
	}

	configs := make([]*entity.LNMarketsConfig, len(configModels))
	for i, cm := range configModels {
		configs[i] = cm.ToEntity()
	}
	return configs, nil
}

// Delete removes a config from the database (soft delete).
func (r *lnMarketsConfigRepository) Delete(ctx context.Context, userIdentity string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_identity = ?", id, userIdentity).
		Delete(&model.LNMarketsConfigModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrLNMarketsConfigNotFound
	}
	return nil
}
