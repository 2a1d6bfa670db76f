package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisBus(t *testing.T) *RedisBus {
	t.Helper()
	srv := miniredis.RunT(t)
	client := NewRedisClient(srv.Addr())
	t.Cleanup(func() { client.Close() })
	return NewRedisBus(client, nil)
}

func TestRedisBusRoundTrip(t *testing.T) {
	bus := newTestRedisBus(t)
	defer bus.Close()

	got := make(chan Event, 1)
	unsub, err := bus.Subscribe(EntityAttendance, func(evt Event) { got <- evt })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	evt := Event{Type: ChangeAdd, Entity: EntityAttendance, Data: map[string]any{"id": "a1"}}
	if err := bus.Publish(context.Background(), evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case received := <-got:
		if received.Type != ChangeAdd || received.Entity != EntityAttendance {
			t.Fatalf("event %+v", received)
		}
		data, ok := received.Data.(map[string]any)
		if !ok || data["id"] != "a1" {
			t.Fatalf("payload %v", received.Data)
		}
		if received.Timestamp == 0 {
			t.Fatal("missing timestamp")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}

	unsub()
	if err := bus.Publish(context.Background(), evt); err != nil {
		t.Fatalf("publish after unsubscribe: %v", err)
	}
	select {
	case <-got:
		t.Fatal("handler invoked after unsubscribe")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRedisBusCloseTearsDownSubscriptions(t *testing.T) {
	bus := newTestRedisBus(t)

	got := make(chan Event, 4)
	for _, entity := range []Entity{EntityAttendance, EntityUser} {
		if _, err := bus.Subscribe(entity, func(evt Event) { got <- evt }); err != nil {
			t.Fatalf("subscribe %s: %v", entity, err)
		}
	}

	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, entity := range []Entity{EntityAttendance, EntityUser} {
		evt := Event{Type: ChangeAdd, Entity: entity}
		if err := bus.Publish(context.Background(), evt); err != nil {
			t.Fatalf("publish after close: %v", err)
		}
	}
	select {
	case evt := <-got:
		t.Fatalf("handler invoked after Close: %+v", evt)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRedisBusChannelNaming(t *testing.T) {
	bus := newTestRedisBus(t)
	defer bus.Close()
	if got := bus.channel(EntityMasterSubject); got != "aams-masterSubject-updates" {
		t.Fatalf("channel name %q", got)
	}
}
