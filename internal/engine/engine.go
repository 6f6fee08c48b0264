// Package engine composes the keystroke scheduler, the mouse planner and
// the schedule and output gates into the polled activity engine.
//
// The engine has no goroutines or timers of its own. Its owner calls Poll
// and CheckSchedule with a monotonic millisecond timestamp and serializes
// every other call with them.
package engine

import (
	"github.com/stigoleg/ghost-operator/internal/keyboard"
	"github.com/stigoleg/ghost-operator/internal/motion"
	"github.com/stigoleg/ghost-operator/internal/outputgate"
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/schedule"
	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/timing"
)

// RareEventInterval is the number of completed jiggles between two rare
// events.
const RareEventInterval = 80

// Sink receives the HID output of the engine.
type Sink interface {
	Key(k settings.Key) error
	Move(dx, dy int) error
	Scroll(dir int) error
}

// Power carries out the sleep requests raised by the schedule gate.
type Power interface {
	DeepSleep()
	LightSleep(enter bool)
}

// Stats counts what the engine emitted or held back.
type Stats struct {
	Keystrokes uint64
	Moves      uint64
	Scrolls    uint64
	Suppressed uint64
	SinkErrors uint64
}

// Options configures a new Engine.
type Options struct {
	// Settings is the snapshot read on every poll. The owner may mutate
	// it between calls and must then call SettingsChanged.
	Settings *settings.Settings
	Rand     timing.Rand
	Sink     Sink
	Power    Power

	// Profile is the starting profile. Nil means Normal.
	Profile *profile.Profile

	// Reference is hashed by the output gate. Empty means settings.AboutText.
	Reference string

	// OnSinkError is called for every failed emission, if set.
	OnSinkError func(op string, err error)
}

// Engine is the activity simulation engine.
type Engine struct {
	cfg     *settings.Settings
	profile profile.Profile
	rnd     timing.Rand
	sink    Sink
	power   Power
	onError func(op string, err error)

	keys  *keyboard.Scheduler
	mouse *motion.Planner
	sched schedule.Gate
	clock schedule.Clock
	out   *outputgate.Gate

	keyEnabled   bool
	mouseEnabled bool
	lightSleep   bool

	started     timing.Millis
	lastJiggles uint32
	rarePending bool
	stats       Stats
}

// New builds an engine with both outputs enabled and all timers started
// at now.
func New(opts Options, now timing.Millis) *Engine {
	ref := opts.Reference
	if ref == "" {
		ref = settings.AboutText
	}
	e := &Engine{
		cfg:          opts.Settings,
		profile:      profile.Normal,
		rnd:          opts.Rand,
		sink:         opts.Sink,
		power:        opts.Power,
		onError:      opts.OnSinkError,
		keys:         keyboard.NewScheduler(opts.Rand),
		mouse:        motion.NewPlanner(opts.Rand),
		out:          outputgate.New(ref, opts.Rand, now),
		keyEnabled:   true,
		mouseEnabled: true,
		started:      now,
	}
	if opts.Profile != nil {
		e.profile = *opts.Profile
	}
	e.keys.Reset(now, e.adjuster())
	e.mouse.Reset(now, e.adjuster())
	return e
}

func (e *Engine) adjuster() profile.Adjuster {
	return profile.Adjuster{Settings: e.cfg, Profile: e.profile}
}

// Poll runs the keyboard and mouse schedulers once. Timers advance even
// when an output is disabled; light sleep freezes both.
func (e *Engine) Poll(now timing.Millis) {
	if e.lightSleep {
		return
	}
	adj := e.adjuster()

	if e.keys.Due(now) {
		if key, ok := e.keys.Fire(now, adj); ok {
			e.emitKey(now, settings.KeyAt(key))
		}
	}

	e.mouse.Tick(now, adj, mouseOutput{e: e, now: now})

	if j := e.mouse.Jiggles(); j != e.lastJiggles {
		e.lastJiggles = j
		if j%RareEventInterval == 0 && e.mouseEnabled {
			e.rarePending = true
		}
	}
}

func (e *Engine) allow(now timing.Millis, enabled bool) bool {
	if !enabled {
		return false
	}
	if !e.out.Allow(now) {
		e.stats.Suppressed++
		return false
	}
	return true
}

func (e *Engine) emitKey(now timing.Millis, k settings.Key) {
	if !e.allow(now, e.keyEnabled) {
		return
	}
	if err := e.sink.Key(k); err != nil {
		e.sinkError("key", err)
		return
	}
	e.stats.Keystrokes++
}

func (e *Engine) sinkError(op string, err error) {
	e.stats.SinkErrors++
	if e.onError != nil {
		e.onError(op, err)
	}
}

// mouseOutput gates planner output on the mouse enable flag and the
// output gate.
type mouseOutput struct {
	e   *Engine
	now timing.Millis
}

func (m mouseOutput) Move(dx, dy int) {
	if !m.e.allow(m.now, m.e.mouseEnabled) {
		return
	}
	if err := m.e.sink.Move(dx, dy); err != nil {
		m.e.sinkError("move", err)
		return
	}
	m.e.stats.Moves++
}

func (m mouseOutput) Scroll(dir int) {
	if !m.e.allow(m.now, m.e.mouseEnabled) {
		return
	}
	if err := m.e.sink.Scroll(dir); err != nil {
		m.e.sinkError("scroll", err)
		return
	}
	m.e.stats.Scrolls++
}

// SetEnabled sets the output flags. Turning an output back on restarts
// its timers so the progress bars start fresh.
func (e *Engine) SetEnabled(now timing.Millis, keyboardOn, mouseOn bool) {
	adj := e.adjuster()
	if keyboardOn && !e.keyEnabled {
		e.keys.Reset(now, adj)
	}
	if mouseOn && !e.mouseEnabled {
		e.mouse.Reset(now, adj)
	}
	e.keyEnabled = keyboardOn
	e.mouseEnabled = mouseOn
}

// CycleEnabled steps through the output combinations
// both -> keyboard only -> mouse only -> none -> both.
func (e *Engine) CycleEnabled(now timing.Millis) {
	state := 0
	if e.keyEnabled {
		state |= 2
	}
	if e.mouseEnabled {
		state |= 1
	}
	if state == 0 {
		state = 3
	} else {
		state--
	}
	e.SetEnabled(now, state&2 != 0, state&1 != 0)
}

// Enabled returns the keyboard and mouse output flags.
func (e *Engine) Enabled() (keyboardOn, mouseOn bool) {
	return e.keyEnabled, e.mouseEnabled
}

// Disable cancels any mouse activity at once: the planner drops to Idle
// with zero displacement and nothing is emitted.
func (e *Engine) Disable(now timing.Millis) {
	e.mouse.Disable(now)
}

// SettingsChanged redraws the key interval and mouse durations from the
// current settings and re-picks the next key.
func (e *Engine) SettingsChanged() {
	adj := e.adjuster()
	e.keys.ScheduleNextKeyInterval(adj)
	e.keys.PickNextKey(e.cfg)
	e.mouse.Reschedule(adj)
}

// SetProfile switches the timing bias and redraws the pending durations.
func (e *Engine) SetProfile(p profile.Profile) {
	e.profile = p
	adj := e.adjuster()
	e.keys.ScheduleNextKeyInterval(adj)
	e.mouse.Reschedule(adj)
}

// Profile returns the active profile.
func (e *Engine) Profile() profile.Profile { return e.profile }

// SyncTime sets the wall clock to daySeconds since midnight at now.
func (e *Engine) SyncTime(daySeconds uint32, now timing.Millis) {
	e.clock.Sync(daySeconds, now)
}

// SetEditing suspends schedule evaluation while the window is edited.
func (e *Engine) SetEditing(editing bool) {
	e.sched.SetEditing(editing)
}

// CheckSchedule evaluates the schedule window and carries out the
// resulting intent.
func (e *Engine) CheckSchedule(now timing.Millis) schedule.Intent {
	ds, synced := e.clock.DaySeconds(now)
	intent := e.sched.Check(now, e.cfg.Window(), ds, synced)
	e.apply(now, intent)
	return intent
}

// ManualWake wakes the engine from light sleep and keeps the schedule
// from putting it back to sleep until the window reopens.
func (e *Engine) ManualWake(now timing.Millis) schedule.Intent {
	intent := e.sched.ManualWake()
	e.apply(now, intent)
	return intent
}

func (e *Engine) apply(now timing.Millis, intent schedule.Intent) {
	switch intent {
	case schedule.IntentNone:
	case schedule.IntentDeepSleep:
		if e.power != nil {
			e.power.DeepSleep()
		}
	case schedule.IntentEnterLightSleep:
		e.lightSleep = true
		if e.power != nil {
			e.power.LightSleep(true)
		}
	case schedule.IntentExitLightSleep:
		e.lightSleep = false
		adj := e.adjuster()
		e.keys.Reset(now, adj)
		e.mouse.Reset(now, adj)
		if e.power != nil {
			e.power.LightSleep(false)
		}
	default:
		panic("engine: unknown schedule intent")
	}
}

// TakeRareEvent reports, once, that the jiggle counter reached a multiple
// of RareEventInterval while the mouse was enabled.
func (e *Engine) TakeRareEvent() bool {
	pending := e.rarePending
	e.rarePending = false
	return pending
}
