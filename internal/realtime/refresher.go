package realtime

// Refresher bridges a view's lifecycle to the bus: subscribe to a set of
// entity channels, call the refresh callback on every event received on
// any of them, unsubscribe on Stop. No payload filtering happens here;
// subscribers are expected to re-fetch the affected collection.
type Refresher struct {
	bus      Bus
	entities []Entity
	onChange Handler
	unsubs   []func()
}

// NewRefresher prepares a refresher; nothing is subscribed until Start.
func NewRefresher(bus Bus, entities []Entity, onChange Handler) *Refresher {
	return &Refresher{bus: bus, entities: entities, onChange: onChange}
}

// Start subscribes to every listed entity channel. Events published
// before Start are never seen; callers refresh their own state first.
func (r *Refresher) Start() error {
	for _, entity := range r.entities {
		unsub, err := r.bus.Subscribe(entity, r.onChange)
		if err != nil {
			r.Stop()
			return err
		}
		r.unsubs = append(r.unsubs, unsub)
	}
	return nil
}

// Stop unsubscribes from all channels. Safe to call more than once.
func (r *Refresher) Stop() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}
