// Package keyboard schedules simulated keystrokes: when the next one fires
// and which slot key it sends.
package keyboard

import (
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/timing"
)

// Scheduler picks keystroke intervals and keys. It only ever reads the
// settings snapshot it is given.
type Scheduler struct {
	rnd      timing.Rand
	last     timing.Millis
	interval timing.Millis
	next     int
}

// NewScheduler returns a scheduler with the NONE key pre-selected; call
// Reset before the first Due.
func NewScheduler(rnd timing.Rand) *Scheduler {
	return &Scheduler{rnd: rnd, next: settings.KeyNone}
}

// ScheduleNextKeyInterval draws the next delay uniformly from the
// profile-adjusted [KeyMin, KeyMax] and stores it as the fire target.
func (s *Scheduler) ScheduleNextKeyInterval(adj profile.Adjuster) timing.Millis {
	lo, hi := adj.KeyMin(), adj.KeyMax()
	if hi > lo {
		s.interval = lo + timing.Millis(s.rnd.Intn(int(hi-lo)+1))
	} else {
		s.interval = lo
	}
	return s.interval
}

// PickNextKey chooses uniformly among the populated slots. With no
// populated slot the NONE sentinel is selected.
func (s *Scheduler) PickNextKey(cfg *settings.Settings) int {
	populated := make([]int, 0, settings.NumSlots)
	for _, k := range cfg.KeySlots {
		if settings.Populated(k) {
			populated = append(populated, k)
		}
	}
	if len(populated) == 0 {
		s.next = settings.KeyNone
	} else {
		s.next = populated[s.rnd.Intn(len(populated))]
	}
	return s.next
}

// Reset restarts the interval timer at now with a fresh interval and key.
func (s *Scheduler) Reset(now timing.Millis, adj profile.Adjuster) {
	s.last = now
	s.ScheduleNextKeyInterval(adj)
	s.PickNextKey(adj.Settings)
}

// Due reports whether the current interval has elapsed.
func (s *Scheduler) Due(now timing.Millis) bool {
	return timing.Since(now, s.last) >= s.interval
}

// Fire consumes the due keystroke: it restarts the timer, draws the next
// interval and pre-picks the following key. It returns the catalog index
// to send and ok=false when nothing should be emitted.
func (s *Scheduler) Fire(now timing.Millis, adj profile.Adjuster) (key int, ok bool) {
	key = s.next
	if !settings.Populated(key) {
		// Slots may have been filled since the last pick.
		key = s.PickNextKey(adj.Settings)
	}
	s.last = now
	s.ScheduleNextKeyInterval(adj)
	if !settings.Populated(key) {
		return settings.KeyNone, false
	}
	s.PickNextKey(adj.Settings)
	return key, true
}

// NextKey is the key that will be sent next, for previews.
func (s *Scheduler) NextKey() int { return s.next }

// Interval is the current fire target.
func (s *Scheduler) Interval() timing.Millis { return s.interval }

// Remaining returns the time left until the next keystroke.
func (s *Scheduler) Remaining(now timing.Millis) timing.Millis {
	elapsed := timing.Since(now, s.last)
	if elapsed >= s.interval {
		return 0
	}
	return s.interval - elapsed
}

// Progress returns the elapsed fraction of the current interval in [0,1].
func (s *Scheduler) Progress(now timing.Millis) float64 {
	if s.interval == 0 {
		return 1
	}
	p := float64(timing.Since(now, s.last)) / float64(s.interval)
	if p > 1 {
		return 1
	}
	return p
}
