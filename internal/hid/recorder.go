package hid

import (
	"sync"

	"github.com/stigoleg/ghost-operator/internal/settings"
)

// Event is one recorded emission.
type Event struct {
	Kind   string
	Key    settings.Key
	DX, DY int
	Scroll int
}

// Recorder keeps every emission in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (r *Recorder) add(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Key(k settings.Key) error { return r.add(Event{Kind: "key", Key: k}) }
func (r *Recorder) Move(dx, dy int) error    { return r.add(Event{Kind: "move", DX: dx, DY: dy}) }
func (r *Recorder) Scroll(dir int) error     { return r.add(Event{Kind: "scroll", Scroll: dir}) }

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Events returns a copy of the recorded emissions.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns the number of recorded emissions of kind.
func (r *Recorder) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
