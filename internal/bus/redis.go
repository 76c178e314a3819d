package bus

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus implements Bus over a single Redis server using native Pub/Sub.
type RedisBus struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisBus dials addr and pings it once so misconfiguration surfaces at
// startup rather than on the first Publish.
func NewRedisBus(ctx context.Context, addr, password string, db int, log *zap.Logger) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("bus: ping redis at %s: %w", addr, err)
	}
	return &RedisBus{client: client, log: log}, nil
}

// Publish writes payload to topic as a Redis channel message.
func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("bus: publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens one Redis subscription over the given topics and adapts
// it to a Message channel. The returned channel closes when ctx is
// cancelled or the underlying subscription errors out.
func (b *RedisBus) Subscribe(ctx context.Context, topics ...string) (<-chan Message, error) {
	sub := b.client.Subscribe(ctx, topics...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("bus: subscribe %v: %w", topics, err)
	}

	out := make(chan Message, 256)
	raw := sub.Channel()
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-raw:
				if !ok {
					return
				}
				select {
				case out <- Message{Topic: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close releases the underlying Redis client.
func (b *RedisBus) Close() error {
	return b.client.Close()
}
