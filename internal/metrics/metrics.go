// Package metrics exposes Prometheus collectors for the sync layer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// StoreWrites counts blob writes through the unified write path, per key.
	StoreWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aams_store_writes_total",
		Help: "Collection blob writes, by storage key.",
	}, []string{"key"})

	// DebouncedFlushes counts debounced writes that reached the backend.
	DebouncedFlushes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aams_store_debounced_flushes_total",
		Help: "Debounced writes flushed to the backend.",
	})

	// Publishes counts change events published, per entity channel.
	Publishes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aams_bus_publishes_total",
		Help: "Change events published, by entity type.",
	}, []string{"entity"})

	// Deliveries counts handler invocations, per entity channel.
	Deliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aams_bus_deliveries_total",
		Help: "Change events delivered to subscribers, by entity type.",
	}, []string{"entity"})
)

func init() {
	prometheus.MustRegister(StoreWrites, DebouncedFlushes, Publishes, Deliveries)
}
