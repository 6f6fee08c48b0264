package schedule

import "github.com/stigoleg/ghost-operator/internal/timing"

// Clock tracks wall-clock time of day from a one-off sync against the
// monotonic millisecond counter. An unsynced clock reports ok=false.
type Clock struct {
	synced   bool
	syncSecs uint32
	syncAt   timing.Millis
}

// Sync records that it is daySeconds past midnight at monotonic time now.
// Out-of-range values sync to midnight.
func (c *Clock) Sync(daySeconds uint32, now timing.Millis) {
	if daySeconds >= DaySeconds {
		daySeconds = 0
	}
	c.syncSecs = daySeconds
	c.syncAt = now
	c.synced = true
}

// Synced reports whether Sync has been called.
func (c *Clock) Synced() bool { return c.synced }

// DaySeconds returns the current seconds since midnight.
func (c *Clock) DaySeconds(now timing.Millis) (uint32, bool) {
	if !c.synced {
		return 0, false
	}
	elapsed := uint32(timing.Since(now, c.syncAt)) / 1000
	return (c.syncSecs + elapsed) % DaySeconds, true
}
