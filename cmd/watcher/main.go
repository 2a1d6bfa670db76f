package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"aams/internal/config"
	"aams/internal/kv"
	"aams/internal/realtime"
	"aams/internal/store"
)

// Watcher is a second execution context over the same storage: it
// subscribes to every broadcast channel and re-reads the affected
// collection on each event, the same refresh-on-change contract the
// dashboard views follow.
func main() {
	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.BusBackend != "redis" {
		logger.Fatal("watcher needs the redis bus to see other processes; set BUS_BACKEND=redis")
	}

	blobs, err := kv.NewFile(cfg.DataDir)
	if err != nil {
		logger.Fatal("open data dir failed", zap.Error(err))
	}
	writer := kv.NewWriter(blobs, kv.FlushImmediate, 0, logger)

	client := realtime.NewRedisClient(cfg.RedisAddr)
	bus := realtime.NewRedisBus(client, logger)
	defer bus.Close()

	// Read-only consumer: nil bus so its own reads never publish.
	st := store.New(writer, nil, store.Options{Logger: logger})

	refresher := realtime.NewRefresher(bus, realtime.Entities, func(evt realtime.Event) {
		logger.Info("change observed",
			zap.String("entity", string(evt.Entity)),
			zap.String("type", string(evt.Type)),
			zap.Int64("timestamp", evt.Timestamp),
			zap.String("actor", evt.UserID))

		// Coarse refresh: re-fetch the whole collection, no merging.
		switch evt.Entity {
		case realtime.EntityAttendance:
			if records, err := st.AllAttendance(); err == nil {
				logger.Info("attendance refreshed", zap.Int("records", len(records)))
			}
		case realtime.EntityUser:
			if users, err := st.Users(); err == nil {
				logger.Info("users refreshed", zap.Int("users", len(users)))
			}
		}
	})
	if err := refresher.Start(); err != nil {
		logger.Fatal("subscribe failed", zap.Error(err))
	}
	defer refresher.Stop()

	logger.Info("watcher started, listening on all channels")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("watcher stopped")
}
