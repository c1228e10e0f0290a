package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// channelPrefix namespaces pub/sub channels so the broker can be shared
// with other keyspaces.
const channelPrefix = "notify:"

// RedisTransport publishes messages over Redis pub/sub.
type RedisTransport struct {
	client *redis.Client
}

// NewRedisTransport creates a transport backed by the given client.
func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{client: client}
}

// Publish implements Transport.
func (t *RedisTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := t.client.Publish(ctx, channelPrefix+channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
