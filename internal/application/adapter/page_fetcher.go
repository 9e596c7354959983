package adapter

import (
	"context"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

// PageFetcher is the external collaborator returning one page of upstream records.
type PageFetcher interface {
	// FetchPage returns the page described by req. A transport failure is
	// reported through the error; an upstream refusal through Success=false.
	FetchPage(ctx context.Context, userIdentity, configID string, req entity.PageRequest) (*entity.PageResult, error)
}
