package realtime

import (
	"context"
	"testing"
)

func TestMemoryBusFanOut(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	const n = 3
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		i := i
		if _, err := bus.Subscribe(EntityAttendance, func(Event) { counts[i]++ }); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}
	otherSeen := 0
	if _, err := bus.Subscribe(EntityUser, func(Event) { otherSeen++ }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	evt := Event{Type: ChangeAdd, Entity: EntityAttendance, Data: map[string]string{"id": "a1"}}
	if err := bus.Publish(context.Background(), evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for i, c := range counts {
		if c != 1 {
			t.Fatalf("subscriber %d saw %d events, want 1", i, c)
		}
	}
	if otherSeen != 0 {
		t.Fatalf("user channel subscriber saw %d attendance events", otherSeen)
	}
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	seen := 0
	unsub, err := bus.Subscribe(EntityUser, func(Event) { seen++ })
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.Publish(context.Background(), Event{Type: ChangeAdd, Entity: EntityUser}); err != nil {
		t.Fatal(err)
	}
	unsub()
	if err := bus.Publish(context.Background(), Event{Type: ChangeDelete, Entity: EntityUser}); err != nil {
		t.Fatal(err)
	}
	if seen != 1 {
		t.Fatalf("handler ran %d times after unsubscribe, want 1", seen)
	}
}

func TestMemoryBusNoReplay(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	if err := bus.Publish(context.Background(), Event{Type: ChangeAdd, Entity: EntitySubject}); err != nil {
		t.Fatal(err)
	}
	seen := 0
	if _, err := bus.Subscribe(EntitySubject, func(Event) { seen++ }); err != nil {
		t.Fatal(err)
	}
	if seen != 0 {
		t.Fatalf("late subscriber replayed %d past events", seen)
	}
}

func TestMemoryBusInOrderDelivery(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	var order []ChangeType
	if _, err := bus.Subscribe(EntityTimetable, func(evt Event) { order = append(order, evt.Type) }); err != nil {
		t.Fatal(err)
	}
	for _, typ := range []ChangeType{ChangeAdd, ChangeUpdate, ChangeDelete} {
		if err := bus.Publish(context.Background(), Event{Type: typ, Entity: EntityTimetable}); err != nil {
			t.Fatal(err)
		}
	}
	want := []ChangeType{ChangeAdd, ChangeUpdate, ChangeDelete}
	if len(order) != len(want) {
		t.Fatalf("saw %d events, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("event %d was %s, want %s", i, order[i], want[i])
		}
	}
}

func TestMemoryBusStampsTimestamp(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	var got Event
	if _, err := bus.Subscribe(EntitySection, func(evt Event) { got = evt }); err != nil {
		t.Fatal(err)
	}
	if err := bus.Publish(context.Background(), Event{Type: ChangeAdd, Entity: EntitySection}); err != nil {
		t.Fatal(err)
	}
	if got.Timestamp == 0 {
		t.Fatal("publish should stamp a timestamp")
	}
}

func TestRefresherMultipleEntities(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	refreshed := 0
	r := NewRefresher(bus, []Entity{EntityAttendance, EntityAnnouncement}, func(Event) { refreshed++ })
	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	bus.Publish(context.Background(), Event{Type: ChangeAdd, Entity: EntityAttendance})
	bus.Publish(context.Background(), Event{Type: ChangeAdd, Entity: EntityAnnouncement})
	bus.Publish(context.Background(), Event{Type: ChangeAdd, Entity: EntityUser}) // not listed
	if refreshed != 2 {
		t.Fatalf("refresh ran %d times, want 2", refreshed)
	}

	r.Stop()
	bus.Publish(context.Background(), Event{Type: ChangeAdd, Entity: EntityAttendance})
	if refreshed != 2 {
		t.Fatalf("refresh ran after Stop")
	}

	// Stop twice is fine.
	r.Stop()
}

func TestTwoContextsOneChannel(t *testing.T) {
	// Two simulated tabs sharing a bus: both handlers see the add.
	bus := NewMemoryBus()
	defer bus.Close()

	var tabA, tabB Event
	if _, err := bus.Subscribe(EntityAttendance, func(evt Event) { tabA = evt }); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.Subscribe(EntityAttendance, func(evt Event) { tabB = evt }); err != nil {
		t.Fatal(err)
	}

	bus.Publish(context.Background(), Event{
		Type:   ChangeAdd,
		Entity: EntityAttendance,
		Data:   map[string]string{"id": "a1"},
	})

	for name, evt := range map[string]Event{"A": tabA, "B": tabB} {
		if evt.Type != ChangeAdd {
			t.Fatalf("tab %s: type %q, want add", name, evt.Type)
		}
		data, ok := evt.Data.(map[string]string)
		if !ok || data["id"] != "a1" {
			t.Fatalf("tab %s: payload %v", name, evt.Data)
		}
	}
}
