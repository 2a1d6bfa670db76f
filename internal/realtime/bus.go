package realtime

import (
	"context"
	"sort"
	"sync"
	"time"

	"aams/internal/metrics"
)

// Handler receives events on a subscribed channel.
type Handler func(Event)

// Bus is the abstraction over broadcast backends.
type Bus interface {
	Publish(ctx context.Context, evt Event) error
	Subscribe(entity Entity, h Handler) (func(), error)
	Close() error
}

// MemoryBus delivers events to subscribers within one process.
type MemoryBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Entity]map[int]Handler
	closed bool
}

// NewMemoryBus creates a bus with no subscribers.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[Entity]map[int]Handler)}
}

// Publish invokes every handler subscribed to the event's entity
// channel, in subscription order. Handlers on other channels never see
// the event. The timestamp is stamped at publish time when unset.
func (b *MemoryBus) Publish(_ context.Context, evt Event) error {
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	handlers := make([]Handler, 0, len(b.subs[evt.Entity]))
	ids := make([]int, 0, len(b.subs[evt.Entity]))
	for id := range b.subs[evt.Entity] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		handlers = append(handlers, b.subs[evt.Entity][id])
	}
	b.mu.Unlock()

	metrics.Publishes.WithLabelValues(string(evt.Entity)).Inc()
	for _, h := range handlers {
		h(evt)
		metrics.Deliveries.WithLabelValues(string(evt.Entity)).Inc()
	}
	return nil
}

// Subscribe registers h for future events on the entity channel and
// returns the unsubscribe function. Past events are never replayed.
func (b *MemoryBus) Subscribe(entity Entity, h Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[entity] == nil {
		b.subs[entity] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.subs[entity][id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[entity], id)
	}, nil
}

// Close drops every subscription.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[Entity]map[int]Handler)
	return nil
}
