// Package profile applies the Lazy/Normal/Busy timing bias to the base
// durations of a settings snapshot.
package profile

import (
	"strings"

	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/timing"
)

// Profile is a named timing bias applied to keyboard and mouse cadence.
type Profile int

const (
	Lazy Profile = iota
	Normal
	Busy
)

func (p Profile) String() string {
	switch p {
	case Lazy:
		return "LAZY"
	case Normal:
		return "NORMAL"
	case Busy:
		return "BUSY"
	default:
		return "UNKNOWN"
	}
}

// Shift moves the profile by delta steps along Lazy <- Normal -> Busy,
// clamping at both ends.
func (p Profile) Shift(delta int) Profile {
	n := int(p) + delta
	if n < int(Lazy) {
		n = int(Lazy)
	}
	if n > int(Busy) {
		n = int(Busy)
	}
	return Profile(n)
}

// Parse maps a case-insensitive profile name to a Profile.
func Parse(name string) (Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lazy":
		return Lazy, true
	case "normal", "":
		return Normal, true
	case "busy":
		return Busy, true
	}
	return Normal, false
}

// Adjust returns base + direction*(base*percent/100), floored at MinClamp.
func Adjust(base timing.Millis, direction int, percent uint8) timing.Millis {
	delta := int64(base) * int64(percent) / 100
	result := int64(base) + int64(direction)*delta
	if result < int64(timing.MinClamp) {
		result = int64(timing.MinClamp)
	}
	return timing.Millis(result)
}

// Adjuster derives the profile-adjusted durations from a settings snapshot.
//
// Busy shortens key intervals and mouse idle and lengthens the jiggle;
// Lazy is the mirror image. Normal passes values through untouched.
type Adjuster struct {
	Settings *settings.Settings
	Profile  Profile
}

func (a Adjuster) apply(base uint32, busyDirection int) timing.Millis {
	switch a.Profile {
	case Normal:
		return timing.Millis(base)
	case Busy:
		return Adjust(timing.Millis(base), busyDirection, a.Settings.BusyPercent)
	case Lazy:
		return Adjust(timing.Millis(base), -busyDirection, a.Settings.LazyPercent)
	default:
		panic("profile: unknown profile")
	}
}

// KeyMin is the effective lower keystroke interval bound.
func (a Adjuster) KeyMin() timing.Millis { return a.apply(a.Settings.KeyIntervalMin, -1) }

// KeyMax is the effective upper keystroke interval bound.
func (a Adjuster) KeyMax() timing.Millis { return a.apply(a.Settings.KeyIntervalMax, -1) }

// MouseJiggle is the effective jiggle duration before jitter.
func (a Adjuster) MouseJiggle() timing.Millis { return a.apply(a.Settings.MouseJiggleDuration, 1) }

// MouseIdle is the effective idle duration before jitter.
func (a Adjuster) MouseIdle() timing.Millis { return a.apply(a.Settings.MouseIdleDuration, -1) }
