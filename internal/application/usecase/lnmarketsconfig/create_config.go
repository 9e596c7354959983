// Package lnmarketsconfig contains use cases managing LN Markets API credentials.
package lnmarketsconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

// CreateConfigInput represents the input for registering credentials.
type CreateConfigInput struct {
	UserIdentity string
	Name         string
	APIKey       string
	APISecret    string
	Passphrase   string
	Network      entity.LNMarketsNetwork // Optional, defaults to mainnet
}

// CreateConfigOutput represents the output of registering credentials.
type CreateConfigOutput struct {
	Config *entity.LNMarketsConfig
}

// CreateConfigUseCase handles credential registration.
type CreateConfigUseCase struct {
	configRepo adapter.LNMarketsConfigRepository
}

// NewCreateConfigUseCase creates a new CreateConfigUseCase instance.
func NewCreateConfigUseCase(configRepo adapter.LNMarketsConfigRepository) *CreateConfigUseCase {
	return &CreateConfigUseCase{
		configRepo: configRepo,
	}
}

// Execute performs the credential registration.
func (uc *CreateConfigUseCase) Execute(ctx context.Context, input CreateConfigInput) (*CreateConfigOutput, error) {
	if strings.TrimSpace(input.APIKey) == "" || strings.TrimSpace(input.APISecret) == "" || strings.TrimSpace(input.Passphrase) == "" {
		return nil, domainerror.NewLNMarketsError(
			domainerror.ErrCodeLNMarketsCredentialsMissing,
			"api key, secret and passphrase are required",
			domainerror.ErrLNMarketsCredentialsMissing,
		)
	}

	switch input.Network {
	case "", entity.LNMarketsMainnet, entity.LNMarketsTestnet:
	default:
		return nil, domainerror.NewLNMarketsError(
			domainerror.ErrCodeLNMarketsInvalidNetwork,
			fmt.Sprintf("unknown network %q", input.Network),
			domainerror.ErrLNMarketsInvalidNetwork,
		)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "LN Markets"
	}

	config := entity.NewLNMarketsConfig(input.UserIdentity, name, input.APIKey, input.APISecret, input.Passphrase, input.Network)
	if err := uc.configRepo.Create(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to create lnmarkets config: %w", err)
	}

	return &CreateConfigOutput{
		Config: config,
	}, nil
}
