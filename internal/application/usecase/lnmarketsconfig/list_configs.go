package lnmarketsconfig

import (
	"context"
	"fmt"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/domain/entity"
)

// ListConfigsInput represents the input for listing credentials.
type ListConfigsInput struct {
	UserIdentity string
}

// ListConfigsOutput represents the output of listing credentials.
type ListConfigsOutput struct {
	Configs []*entity.LNMarketsConfig
}

// ListConfigsUseCase handles listing a user's credentials.
type ListConfigsUseCase struct {
	configRepo adapter.LNMarketsConfigRepository
}

// NewListConfigsUseCase creates a new ListConfigsUseCase instance.
func NewListConfigsUseCase(configRepo adapter.LNMarketsConfigRepository) *ListConfigsUseCase {
	return &ListConfigsUseCase{
		configRepo: configRepo,
	}
}

// Execute lists the credentials owned by the user.
func (uc *ListConfigsUseCase) Execute(ctx context.Context, input ListConfigsInput) (*ListConfigsOutput, error) {
	configs, err := uc.configRepo.FindByUser(ctx, input.UserIdentity)
	if err != nil {
		return nil, fmt.Errorf("failed to list lnmarkets configs: %w", err)
	}
	return &ListConfigsOutput{
		Configs: configs,
	}, nil
}
