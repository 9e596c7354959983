package lnmarketsconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/btc-tracker/backend/internal/application/adapter"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

// DeleteConfigInput represents the input for credential deletion.
type DeleteConfigInput struct {
	UserIdentity string
	ConfigID     uuid.UUID
}

// DeleteConfigOutput represents the output of credential deletion.
type DeleteConfigOutput struct {
	Success bool
}

// DeleteConfigUseCase handles credential deletion. Reports keep the
// association so previously imported records stay attributable.
type DeleteConfigUseCase struct {
	configRepo adapter.LNMarketsConfigRepository
}

// NewDeleteConfigUseCase creates a new DeleteConfigUseCase instance.
func NewDeleteConfigUseCase(configRepo adapter.LNMarketsConfigRepository) *DeleteConfigUseCase {
	return &DeleteConfigUseCase{
		configRepo: configRepo,
	}
}

// Execute performs the credential deletion.
func (uc *DeleteConfigUseCase) Execute(ctx context.Context, input DeleteConfigInput) (*DeleteConfigOutput, error) {
	if err := uc.configRepo.Delete(ctx, input.UserIdentity, input.ConfigID); err != nil {
		if errors.Is(err, domainerror.ErrLNMarketsConfigNotFound) {
			return nil, domainerror.NewLNMarketsError(
				domainerror.ErrCodeLNMarketsConfigNotFound,
				"lnmarkets config not found",
				domainerror.ErrLNMarketsConfigNotFound,
			)
		}
		return nil, fmt.Errorf("failed to delete lnmarkets config: %w", err)
	}

	return &DeleteConfigOutput{
		Success: true,
	}, nil
}
