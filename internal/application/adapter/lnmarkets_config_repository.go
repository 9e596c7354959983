package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

// LNMarketsConfigRepository defines persistence operations for LN Markets credentials.
type LNMarketsConfigRepository interface {
	// Create stores a new config.
	Create(ctx context.Context, config *entity.LNMarketsConfig) error

	// FindByID retrieves a config owned by userIdentity.
	// Returns domainerror.ErrLNMarketsConfigNotFound when absent.
	FindByID(ctx context.Context, userIdentity string, id uuid.UUID) (*entity.LNMarketsConfig, error)

	// FindByUser lists the configs owned by userIdentity.
	FindByUser(ctx context.Context, userIdentity string) ([]*entity.LNMarketsConfig, error)

	// Delete removes a config owned by userIdentity.
	Delete(ctx context.Context, userIdentity string, id uuid.UUID) error
}
