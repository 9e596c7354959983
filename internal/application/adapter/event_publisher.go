package adapter

import (
	"context"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

// EventPublisher delivers store mutation events to subscribers.
// Implementations must not fail the mutation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.StoreEvent)
}
