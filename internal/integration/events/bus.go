// Package events delivers report store mutation events to in-process
// subscribers and to external channels.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/domain/entity"
)

// Handler receives one store event.
type Handler func(ctx context.Context, event entity.StoreEvent)

// Bus fans events out synchronously to every subscribed handler.
// A panicking handler is logged and does not reach the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for every subsequent event.
func (b *Bus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish implements adapter.EventPublisher.
func (b *Bus) Publish(ctx context.Context, event entity.StoreEvent) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(ctx, h, event)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, event entity.StoreEvent) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked",
				"event", event.Name,
				"reportID", event.ReportID,
				"panic", r,
			)
		}
	}()
	h(ctx, event)
}

// Multi publishes every event to each wrapped publisher in order.
type Multi []adapter.EventPublisher

// Publish implements adapter.EventPublisher.
func (m Multi) Publish(ctx context.Context, event entity.StoreEvent) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}
