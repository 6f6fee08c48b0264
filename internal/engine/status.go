package engine

import (
	"github.com/stigoleg/ghost-operator/internal/motion"
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/schedule"
	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/timing"
)

// Status is a read-only snapshot for displays and status replies. The
// remaining times and progress values are derived, not authoritative.
type Status struct {
	Profile      profile.Profile
	KeyEnabled   bool
	MouseEnabled bool

	NextKeyIndex int
	NextKey      settings.Key
	KeyInterval  timing.Millis
	KeyRemaining timing.Millis
	KeyProgress  float64

	MouseState     motion.State
	SweepPhase     motion.SweepPhase
	MouseDuration  timing.Millis
	MouseRemaining timing.Millis
	MouseProgress  float64
	Net            motion.Point
	Jiggles        uint32

	ScheduleMode schedule.Mode
	LightSleep   bool
	ManualWake   bool
	TimeSynced   bool
	DaySeconds   uint32

	OutputAllowed bool
	Uptime        timing.Millis
	Stats         Stats
}

// Status returns the engine state at now.
func (e *Engine) Status(now timing.Millis) Status {
	ds, synced := e.clock.DaySeconds(now)
	next := e.keys.NextKey()
	return Status{
		Profile:      e.profile,
		KeyEnabled:   e.keyEnabled,
		MouseEnabled: e.mouseEnabled,

		NextKeyIndex: next,
		NextKey:      settings.KeyAt(next),
		KeyInterval:  e.keys.Interval(),
		KeyRemaining: e.keys.Remaining(now),
		KeyProgress:  e.keys.Progress(now),

		MouseState:     e.mouse.State(),
		SweepPhase:     e.mouse.Phase(),
		MouseDuration:  e.mouse.Duration(),
		MouseRemaining: e.mouse.Remaining(now),
		MouseProgress:  e.mouse.Progress(now),
		Net:            e.mouse.Net(),
		Jiggles:        e.mouse.Jiggles(),

		ScheduleMode: e.cfg.ScheduleMode,
		LightSleep:   e.lightSleep,
		ManualWake:   e.sched.ManualWakeActive(),
		TimeSynced:   synced,
		DaySeconds:   ds,

		OutputAllowed: e.out.Allow(now),
		Uptime:        timing.Since(now, e.started),
		Stats:         e.stats,
	}
}

// Stats returns the emission counters.
func (e *Engine) Stats() Stats { return e.stats }
