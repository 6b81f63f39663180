package particles

// Event is one ephemeral annihilation record. Entries are overwritten
// round-robin once the ring is full; Age keeps advancing whether or not a
// renderer is looking at the entry.
type Event struct {
	Pos       [3]float64
	Age       float64
	Intensity float64
	Live      bool
}

type EventRing struct {
	events []Event
	next   int
}

func NewEventRing(capacity int) *EventRing {
	if capacity < 1 {
		capacity = 1
	}
	return &EventRing{events: make([]Event, capacity)}
}

func (r *EventRing) Add(pos [3]float64, intensity float64) {
	r.events[r.next] = Event{Pos: pos, Intensity: intensity, Live: true}
	r.next = (r.next + 1) % len(r.events)
}

func (r *EventRing) Advance(dt float64) {
	for i := range r.events {
		if r.events[i].Live {
			r.events[i].Age += dt
		}
	}
}

// Events exposes the backing slice for the read surface.
func (r *EventRing) Events() []Event { return r.events }

func (r *EventRing) Reset() {
	for i := range r.events {
		r.events[i] = Event{}
	}
	r.next = 0
}
