package schedule

import "github.com/stigoleg/ghost-operator/internal/timing"

// CheckInterval is the minimum spacing between two schedule evaluations.
const CheckInterval timing.Millis = 10000

// Intent is a power request produced by the gate.
type Intent int

const (
	// IntentNone asks for nothing.
	IntentNone Intent = iota
	// IntentDeepSleep powers the device off until physically woken.
	IntentDeepSleep
	// IntentEnterLightSleep suspends activity until the window reopens.
	IntentEnterLightSleep
	// IntentExitLightSleep resumes activity.
	IntentExitLightSleep
)

func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentDeepSleep:
		return "deep-sleep"
	case IntentEnterLightSleep:
		return "enter-light-sleep"
	case IntentExitLightSleep:
		return "exit-light-sleep"
	default:
		return "unknown"
	}
}

// Gate turns schedule window transitions into sleep and wake intents.
// The zero value is ready to use.
type Gate struct {
	lastCheck  timing.Millis
	checked    bool
	sleeping   bool
	manualWake bool
	editing    bool
	active     bool
}

// Sleeping reports whether the gate put the device into light sleep.
func (g *Gate) Sleeping() bool { return g.sleeping }

// ManualWakeActive reports whether re-sleep is suppressed by a manual wake.
func (g *Gate) ManualWakeActive() bool { return g.manualWake }

// Active reports the result of the last evaluation.
func (g *Gate) Active() bool { return !g.checked || g.active }

// SetEditing pauses evaluation while the user edits the schedule.
func (g *Gate) SetEditing(editing bool) { g.editing = editing }

// Check evaluates the window at most once per CheckInterval and returns
// the resulting intent. It never acts with the schedule off, with an
// unsynced clock or while the schedule is being edited.
func (g *Gate) Check(now timing.Millis, w Window, daySeconds uint32, synced bool) Intent {
	if w.Mode == ModeOff || !synced || g.editing {
		return IntentNone
	}
	if g.checked && timing.Since(now, g.lastCheck) < CheckInterval {
		return IntentNone
	}
	g.lastCheck = now
	g.checked = true
	g.active = IsActive(w, daySeconds, synced)

	if g.active {
		g.manualWake = false
		if g.sleeping {
			g.sleeping = false
			return IntentExitLightSleep
		}
		return IntentNone
	}

	if g.sleeping || g.manualWake {
		return IntentNone
	}

	switch w.Mode {
	case ModeAutoSleep:
		return IntentDeepSleep
	case ModeFullAuto:
		g.sleeping = true
		return IntentEnterLightSleep
	case ModeOff:
		return IntentNone
	default:
		panic("schedule: unknown mode")
	}
}

// ManualWake records that the user woke the device outside the window.
// Sleep is suppressed until the window becomes active again. It returns
// IntentExitLightSleep if the device was light-sleeping.
func (g *Gate) ManualWake() Intent {
	g.manualWake = true
	if g.sleeping {
		g.sleeping = false
		return IntentExitLightSleep
	}
	return IntentNone
}
