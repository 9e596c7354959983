package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

// LNMarketsConfigModel represents the lnmarkets_configs table in the database.
type LNMarketsConfigModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserIdentity string         `gorm:"type:varchar(128);not null;index"`
	Name         string         `gorm:"type:varchar(100);not null"`
	APIKey       string         `gorm:"type:varchar(255);not null"`
	APISecret    string         `gorm:"type:varchar(255);not null"`
	Passphrase   string         `gorm:"type:varchar(255);not null"`
	Network      string         `gorm:"type:varchar(20);not null;default:'mainnet'"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
	DeletedAt    gorm.DeletedAt `gorm:"index"` // Soft-delete support
}

// TableName returns the table name for the LNMarketsConfigModel.
func (LNMarketsConfigModel) TableName() string {
	return "lnmarkets_configs"
}

// ToEntity converts a LNMarketsConfigModel to a domain LNMarketsConfig entity.
func (m *LNMarketsConfigModel) ToEntity() *entity.LNMarketsConfig {
	return &entity.LNMarketsConfig{
		ID:           m.ID,
		UserIdentity: m.UserIdentity,
		Name:         m.Name,
		APIKey:       m.APIKey,
		APISecret:    m.APISecret,
		Passphrase:   m.Passphrase,
		Network:      entity.LNMarketsNetwork(m.Network),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// LNMarketsConfigFromEntity creates a LNMarketsConfigModel from a domain LNMarketsConfig entity.
func LNMarketsConfigFromEntity(config *entity.LNMarketsConfig) *LNMarketsConfigModel {
	return &LNMarketsConfigModel{
		ID:           config.ID,
		UserIdentity: config.UserIdentity,
		Name:         config.Name,
		APIKey:       config.APIKey,
		APISecret:    config.APISecret,
		Passphrase:   config.Passphrase,
		Network:      string(config.Network),
		CreatedAt:    config.CreatedAt,
		UpdatedAt:    config.UpdatedAt,
	}
}

// AllModels returns every model the service migrates.
func AllModels() []any {
	return []any{
		&StorageEntryModel{},
		&LNMarketsConfigModel{},
	}
}
