package outbox

import (
	"context"
	"fmt"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notifications:"

// RedisNotifier publishes events to redis pub/sub channels keyed by event
// type (notifications:order.created, ...). Downstream consumers fan the
// messages out to users; the settlement core only guarantees at-least-once
// handoff.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Notify(ctx context.Context, ev domain.OutboxEvent) error {
	channel := channelPrefix + ev.EventType
	if err := n.client.Publish(ctx, channel, ev.Payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}
