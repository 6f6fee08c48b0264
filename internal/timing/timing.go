// Package timing holds the millisecond clock arithmetic and randomness
// helpers shared by the keyboard and mouse schedulers.
package timing

import (
	"fmt"
	"strings"
)

// Millis is a monotonic millisecond timestamp. It wraps like the device
// millis() counter; elapsed time must always be computed with Since.
type Millis uint32

// Timing constants shared by the schedulers.
const (
	// MinClamp is the floor applied to every adjusted or jittered duration.
	MinClamp Millis = 500

	// RandomnessPercent is the +/- jitter applied to mouse durations.
	RandomnessPercent = 20
)

// Since returns now-then using unsigned subtraction so a counter wrap
// between the two timestamps still yields the right elapsed time.
func Since(now, then Millis) Millis {
	return now - then
}

// Rand is the randomness source consumed by the schedulers.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Between draws a uniform integer in [lo, hi]. When hi <= lo it returns lo.
func Between(rnd Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rnd.Intn(hi-lo+1)
}

// Jitter applies +/-RandomnessPercent uniform noise to base, floored at MinClamp.
func Jitter(rnd Rand, base Millis) Millis {
	variation := int64(base) * RandomnessPercent / 100
	result := int64(base) + int64(Between(rnd, int(-variation), int(variation)))
	if result < int64(MinClamp) {
		result = int64(MinClamp)
	}
	return Millis(result)
}

// FormatDuration renders ms as seconds: one decimal below ten seconds,
// whole seconds above.
func FormatDuration(ms Millis, withUnit bool) string {
	suffix := ""
	if withUnit {
		suffix = "s"
	}
	sec := float64(ms) / 1000.0
	if sec < 10 {
		return fmt.Sprintf("%.1f%s", sec, suffix)
	}
	return fmt.Sprintf("%d%s", int(sec), suffix)
}

// FormatUptime renders an uptime as "1d 2h 3m", showing seconds only for
// uptimes shorter than a day.
func FormatUptime(ms uint64) string {
	total := ms / 1000
	d := total / 86400
	h := (total % 86400) / 3600
	m := (total % 3600) / 60
	s := total % 60

	var parts []string
	if d > 0 {
		parts = append(parts, fmt.Sprintf("%dd", d))
	}
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if d == 0 && s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}
