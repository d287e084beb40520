package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier carries change signals over Redis pub/sub so that every
// server instance sees inserts performed through any other instance.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a Notifier backed by the given Redis client
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func channelFor(groupID string) string {
	return "watercup:logs:" + groupID
}

// Publish emits a change signal on the group's channel
func (n *RedisNotifier) Publish(ctx context.Context, groupID string) error {
	return n.client.Publish(ctx, channelFor(groupID), "changed").Err()
}

// Subscribe listens on the group's channel and forwards signals. The
// payload is dropped on purpose: subscribers only learn that a row was
// inserted, never what it contained.
func (n *RedisNotifier) Subscribe(ctx context.Context, groupID string) (<-chan struct{}, func(), error) {
	sub := n.client.Subscribe(ctx, channelFor(groupID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, err
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for range sub.Channel() {
			select {
			case ch <- struct{}{}:
			default:
				// subscriber already has a pending signal
			}
		}
	}()

	cancel := func() {
		// closing the subscription ends sub.Channel and with it the goroutine
		sub.Close()
	}
	return ch, cancel, nil
}
