package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/domain/entity"
)

const publishTimeout = 2 * time.Second

// Envelope is the wire form of a store event on the Redis channel.
type Envelope struct {
	Origin string            `json:"origin"`
	Event  entity.StoreEvent `json:"event"`
}

// RedisPublisher mirrors store events onto a Redis pub/sub channel so other
// processes can refresh their own views. origin identifies this process.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	origin  string
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(client *redis.Client, channel, origin string) adapter.EventPublisher {
	return &RedisPublisher{client: client, channel: channel, origin: origin}
}

// Publish implements adapter.EventPublisher. Failures are logged only.
func (p *RedisPublisher) Publish(ctx context.Context, event entity.StoreEvent) {
	payload, err := json.Marshal(Envelope{Origin: p.origin, Event: event})
	if err != nil {
		slog.Error("Failed to encode store event", "event", event.Name, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		slog.Warn("Failed to publish store event",
			"channel", p.channel,
			"event", event.Name,
			"reportID", event.ReportID,
			"error", err,
		)
	}
}

// Listen subscribes to channel and forwards events published by other
// origins to handler until ctx is done.
func Listen(ctx context.Context, client *redis.Client, channel, origin string, handler Handler) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var envelope Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				slog.Warn("Dropping malformed store event", "channel", channel, "error", err)
				continue
			}
			if envelope.Origin == origin {
				continue
			}
			handler(ctx, envelope.Event)
		}
	}
}
