package kv

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"aams/internal/metrics"
)

// FlushPolicy selects how Put reaches the backend.
type FlushPolicy string

const (
	// FlushImmediate writes synchronously; Put errors surface to the caller.
	FlushImmediate FlushPolicy = "immediate"
	// FlushDebounced coalesces rapid writes to the same key and flushes
	// after a quiet window; flush errors are logged, not returned.
	FlushDebounced FlushPolicy = "debounced"
)

// Writer is the single write path over a Store. A debounced writer keeps
// the latest pending blob per key so reads through it stay
// read-your-writes even before the flush lands.
type Writer struct {
	store    Store
	policy   FlushPolicy
	debounce time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string][]byte
	timers  map[string]*time.Timer
	gens    map[string]uint64
}

// NewWriter wraps store with the given flush policy.
func NewWriter(store Store, policy FlushPolicy, debounce time.Duration, log *zap.Logger) *Writer {
	if policy != FlushDebounced {
		policy = FlushImmediate
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		store:    store,
		policy:   policy,
		debounce: debounce,
		log:      log,
		pending:  make(map[string][]byte),
		timers:   make(map[string]*time.Timer),
		gens:     make(map[string]uint64),
	}
}

// Put stores value under key according to the flush policy.
func (w *Writer) Put(key string, value []byte) error {
	metrics.StoreWrites.WithLabelValues(key).Inc()
	if w.policy == FlushImmediate {
		return w.store.Set(key, value)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[key] = value
	if t, ok := w.timers[key]; ok {
		t.Stop()
	}
	// The generation ties a timer to the Put that armed it. A timer
	// that already fired and is waiting on the lock while a newer Put
	// lands sees a bumped generation and leaves the fresh entry to its
	// own timer.
	w.gens[key]++
	gen := w.gens[key]
	w.timers[key] = time.AfterFunc(w.debounce, func() { w.flushKey(key, gen) })
	return nil
}

// Get reads through pending writes first, then the backend.
func (w *Writer) Get(key string) ([]byte, error) {
	w.mu.Lock()
	if b, ok := w.pending[key]; ok {
		out := make([]byte, len(b))
		copy(out, b)
		w.mu.Unlock()
		return out, nil
	}
	w.mu.Unlock()
	return w.store.Get(key)
}

// Delete removes key, cancelling any pending write for it.
func (w *Writer) Delete(key string) error {
	w.mu.Lock()
	delete(w.pending, key)
	if t, ok := w.timers[key]; ok {
		t.Stop()
		delete(w.timers, key)
	}
	w.gens[key]++
	w.mu.Unlock()
	return w.store.Delete(key)
}

// Has reports whether key is pending or stored.
func (w *Writer) Has(key string) bool {
	w.mu.Lock()
	_, ok := w.pending[key]
	w.mu.Unlock()
	if ok {
		return true
	}
	return w.store.Has(key)
}

func (w *Writer) flushKey(key string, gen uint64) {
	w.mu.Lock()
	if w.gens[key] != gen {
		w.mu.Unlock()
		return
	}
	value, ok := w.pending[key]
	delete(w.pending, key)
	delete(w.timers, key)
	w.mu.Unlock()
	if !ok {
		return
	}
	if err := w.store.Set(key, value); err != nil {
		w.log.Error("debounced flush failed", zap.String("key", key), zap.Error(err))
		return
	}
	metrics.DebouncedFlushes.Inc()
	w.log.Debug("auto-saved", zap.String("key", key))
}

// Flush writes every pending blob now.
func (w *Writer) Flush() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	pending := w.pending
	w.pending = make(map[string][]byte)
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()

	var firstErr error
	for k, v := range pending {
		if err := w.store.Set(k, v); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close flushes pending writes and stops all timers.
func (w *Writer) Close() error {
	return w.Flush()
}
