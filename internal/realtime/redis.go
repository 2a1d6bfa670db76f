package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"aams/internal/metrics"
)

// NewRedisClient connects to redis with short timeouts.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// RedisHealthy verifies redis connectivity.
func RedisHealthy(ctx context.Context, client *redis.Client) bool {
	if client == nil {
		return false
	}
	return client.Ping(ctx).Err() == nil
}

// RedisBus broadcasts change events across processes over redis pub/sub.
// Channel names follow the aams-<entity>-updates convention.
type RedisBus struct {
	client *redis.Client
	prefix string
	log    *zap.Logger

	mu      sync.Mutex
	pubsubs []*redis.PubSub
	cancels []context.CancelFunc
}

// NewRedisBus builds a bus on an existing redis client.
func NewRedisBus(client *redis.Client, log *zap.Logger) *RedisBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBus{client: client, prefix: "aams", log: log}
}

func (b *RedisBus) channel(entity Entity) string {
	return fmt.Sprintf("%s-%s-updates", b.prefix, entity)
}

// Publish serializes the event as JSON and posts it on the entity channel.
func (b *RedisBus) Publish(ctx context.Context, evt Event) error {
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel(evt.Entity), payload).Err(); err != nil {
		return err
	}
	metrics.Publishes.WithLabelValues(string(evt.Entity)).Inc()
	return nil
}

// Subscribe listens on the entity channel until the returned function is
// called. Malformed messages are dropped with a log line.
func (b *RedisBus) Subscribe(entity Entity, h Handler) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	ps := b.client.Subscribe(ctx, b.channel(entity))
	if _, err := ps.Receive(ctx); err != nil {
		cancel()
		_ = ps.Close()
		return nil, err
	}
	b.mu.Lock()
	b.pubsubs = append(b.pubsubs, ps)
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	go func() {
		for msg := range ps.Channel() {
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				b.log.Warn("dropping malformed event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			metrics.Deliveries.WithLabelValues(string(entity)).Inc()
			h(evt)
		}
	}()

	return func() {
		cancel()
		_ = ps.Close()
	}, nil
}

// Close tears down every active subscription. Closing the PubSub is
// what actually unsubscribes and ends the delivery goroutine; the
// context only covered the initial SUBSCRIBE command.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	pubsubs := b.pubsubs
	cancels := b.cancels
	b.pubsubs = nil
	b.cancels = nil
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	var firstErr error
	for _, ps := range pubsubs {
		if err := ps.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
