// Package store holds every dashboard collection as a JSON blob under a
// fixed storage key and broadcasts a change event after each mutation.
//
// All accessors are synchronous. Within one process the store mutex
// serializes read-modify-write cycles; across processes sharing the same
// data directory the policy is last-write-wins with no version check,
// an accepted limitation of a local-only system.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aams/internal/kv"
	"aams/internal/realtime"
)

// Store exposes typed accessors over the blob writer and the bus.
type Store struct {
	mu      sync.Mutex
	kv      *kv.Writer
	bus     realtime.Bus
	log     *zap.Logger
	now     func() time.Time
	codeTTL time.Duration
}

// Options tunes a Store; zero values pick defaults.
type Options struct {
	Logger      *zap.Logger
	Clock       func() time.Time
	LiveCodeTTL time.Duration
}

// New builds a Store over the given writer and bus. The bus may be nil
// for consumers that only read.
func New(w *kv.Writer, bus realtime.Bus, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	ttl := opts.LiveCodeTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{kv: w, bus: bus, log: log, now: now, codeTTL: ttl}
}

// Close flushes pending writes.
func (s *Store) Close() error {
	return s.kv.Close()
}

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

// readList loads a collection, mapping an absent key to an empty slice.
// On corruption the empty slice is still returned alongside the error so
// callers can keep rendering best-effort data.
func readList[T any](s *Store, key string) ([]T, error) {
	raw, err := s.kv.Get(key)
	if err != nil {
		if errors.Is(err, kv.ErrNoKey) {
			return []T{}, nil
		}
		return []T{}, &DeserializationError{Key: key, Err: err}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return []T{}, &DeserializationError{Key: key, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// readListFallback is readList for mutation paths, which proceed with an
// empty collection when the stored blob is corrupt (the follow-up write
// replaces it).
func readListFallback[T any](s *Store, key string) []T {
	items, err := readList[T](s, key)
	if err != nil {
		s.log.Warn("treating corrupt collection as empty", zap.String("key", key), zap.Error(err))
	}
	return items
}

func writeList[T any](s *Store, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	if err := s.kv.Put(key, raw); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

// publish stamps actor and time onto evt and fans it out. Broadcast
// failures are logged, never returned: the write already landed.
func (s *Store) publish(evt realtime.Event) {
	if s.bus == nil {
		return
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = s.now().UnixMilli()
	}
	if evt.UserID == "" {
		if actor, _ := s.CurrentUser(); actor != nil {
			evt.UserID = actor.ID
			evt.Source = string(actor.Role)
		}
	}
	if err := s.bus.Publish(context.Background(), evt); err != nil {
		s.log.Warn("broadcast failed",
			zap.String("entity", string(evt.Entity)),
			zap.String("type", string(evt.Type)),
			zap.Error(err))
	}
}
