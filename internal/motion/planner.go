// Package motion plans the simulated mouse activity: idle gaps, jiggle
// bursts driven by a Brownian walk or Bezier sweeps, and the walk back to
// the starting position.
package motion

import (
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/timing"
)

// Motion timing constants.
const (
	// StepPeriod is the spacing between two movement steps.
	StepPeriod timing.Millis = 20

	// ReturnStep is the largest per-axis correction while returning.
	ReturnStep = 5

	ScrollIntervalMin = 2000
	ScrollIntervalMax = 5000
)

// Emitter receives the movement produced by the planner.
type Emitter interface {
	Move(dx, dy int)
	Scroll(dir int)
}

// State is the top-level mouse state.
type State int

const (
	Idle State = iota
	Jiggling
	Returning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Jiggling:
		return "MOUSE"
	case Returning:
		return "RETURN"
	default:
		return "UNKNOWN"
	}
}

// Point is a pixel displacement.
type Point struct {
	X, Y int32
}

// Planner is the mouse state machine. It is not safe for concurrent use;
// the owner serializes Tick with the other calls.
type Planner struct {
	rnd timing.Rand

	state    State
	changed  timing.Millis
	lastStep timing.Millis
	idle     timing.Millis
	jiggle   timing.Millis

	net         Point
	returnTotal int
	jiggles     uint32

	dir   Point
	phase SweepPhase
	sweep bezierPlan

	lastScroll     timing.Millis
	scrollInterval timing.Millis
}

// NewPlanner returns an idle planner. Call Reset before the first Tick.
func NewPlanner(rnd timing.Rand) *Planner {
	return &Planner{rnd: rnd}
}

// Reset returns to Idle at now with zero displacement and a freshly drawn
// idle duration.
func (p *Planner) Reset(now timing.Millis, adj profile.Adjuster) {
	p.state = Idle
	p.changed = now
	p.net = Point{}
	p.returnTotal = 0
	p.idle = timing.Jitter(p.rnd, adj.MouseIdle())
}

// Reschedule redraws both durations from adj without touching the state.
func (p *Planner) Reschedule(adj profile.Adjuster) {
	p.idle = timing.Jitter(p.rnd, adj.MouseIdle())
	p.jiggle = timing.Jitter(p.rnd, adj.MouseJiggle())
}

// Disable abandons any jiggle immediately. Nothing is emitted.
func (p *Planner) Disable(now timing.Millis) {
	p.state = Idle
	p.changed = now
	p.net = Point{}
	p.returnTotal = 0
}

// Tick advances the state machine to now, sending movement to em.
func (p *Planner) Tick(now timing.Millis, adj profile.Adjuster, em Emitter) {
	cfg := adj.Settings
	elapsed := timing.Since(now, p.changed)

	switch p.state {
	case Idle:
		if elapsed >= p.idle {
			p.enterJiggling(now, adj)
		}

	case Jiggling:
		if cfg.ScrollEnabled && timing.Since(now, p.lastScroll) >= p.scrollInterval {
			dir := 1
			if p.rnd.Intn(2) == 0 {
				dir = -1
			}
			em.Scroll(dir)
			p.lastScroll = now
			p.scrollInterval = drawScrollInterval(p.rnd)
		}
		if elapsed >= p.jiggle {
			p.state = Returning
			p.returnTotal = int(abs32(p.net.X) + abs32(p.net.Y))
			p.changed = now
			p.lastStep = now
			return
		}
		switch cfg.MouseStyle {
		case settings.StyleBezier:
			p.tickSweep(now, em)
		case settings.StyleBrownian:
			if timing.Since(now, p.lastStep) >= StepPeriod {
				p.stepBrownian(now, cfg.MouseAmplitude, em)
				p.lastStep = now
			}
		default:
			panic("motion: unknown mouse style")
		}

	case Returning:
		if p.net == (Point{}) {
			p.state = Idle
			p.changed = now
			p.idle = timing.Jitter(p.rnd, adj.MouseIdle())
			p.jiggles++
			return
		}
		if timing.Since(now, p.lastStep) >= StepPeriod {
			dx := towardZero(p.net.X)
			dy := towardZero(p.net.Y)
			p.emit(dx, dy, em)
			p.lastStep = now
		}

	default:
		panic("motion: unknown state")
	}
}

func (p *Planner) enterJiggling(now timing.Millis, adj profile.Adjuster) {
	p.state = Jiggling
	p.changed = now
	p.lastStep = now
	p.net = Point{}
	p.lastScroll = now
	p.scrollInterval = drawScrollInterval(p.rnd)
	p.phase = PhasePlanning
	p.dir = randomDirection(p.rnd)
	p.jiggle = timing.Jitter(p.rnd, adj.MouseJiggle())
}

func (p *Planner) tickSweep(now timing.Millis, em Emitter) {
	switch p.phase {
	case PhasePlanning:
		p.sweep = planSweep(p.rnd, p.net)
		p.phase = PhaseMoving

	case PhaseMoving:
		if timing.Since(now, p.lastStep) < StepPeriod {
			return
		}
		dx, dy := p.sweep.advance()
		p.emit(dx, dy, em)
		p.lastStep = now
		if p.sweep.done() {
			p.phase = PhasePausing
			p.sweep.pauseStart = now
			p.sweep.pauseLen = drawPause(p.rnd)
		}

	case PhasePausing:
		if timing.Since(now, p.sweep.pauseStart) >= p.sweep.pauseLen {
			p.phase = PhasePlanning
		}

	default:
		panic("motion: unknown sweep phase")
	}
}

// emit sends a nonzero delta and folds it into the net displacement.
func (p *Planner) emit(dx, dy int, em Emitter) {
	if dx == 0 && dy == 0 {
		return
	}
	em.Move(dx, dy)
	p.net.X += int32(dx)
	p.net.Y += int32(dy)
}

// State returns the current top-level state.
func (p *Planner) State() State { return p.state }

// Phase returns the Bezier sub-state; it is only meaningful while
// jiggling in the Bezier style.
func (p *Planner) Phase() SweepPhase { return p.phase }

// Net returns the displacement accumulated since the jiggle started.
func (p *Planner) Net() Point { return p.net }

// ReturnTotal is the Manhattan distance recorded when returning began.
func (p *Planner) ReturnTotal() int { return p.returnTotal }

// Jiggles counts completed jiggle cycles.
func (p *Planner) Jiggles() uint32 { return p.jiggles }

// Duration returns the target duration of the current state. Returning
// has no fixed duration and reports zero.
func (p *Planner) Duration() timing.Millis {
	switch p.state {
	case Idle:
		return p.idle
	case Jiggling:
		return p.jiggle
	default:
		return 0
	}
}

// Remaining returns the time left in the current Idle or Jiggling state.
func (p *Planner) Remaining(now timing.Millis) timing.Millis {
	d := p.Duration()
	elapsed := timing.Since(now, p.changed)
	if elapsed >= d {
		return 0
	}
	return d - elapsed
}

// Progress returns the completed fraction of the current state in [0,1].
// While returning it is the share of the displacement already walked back.
func (p *Planner) Progress(now timing.Millis) float64 {
	if p.state == Returning {
		if p.returnTotal == 0 {
			return 1
		}
		left := float64(abs32(p.net.X) + abs32(p.net.Y))
		v := 1 - left/float64(p.returnTotal)
		if v < 0 {
			return 0
		}
		return v
	}
	d := p.Duration()
	if d == 0 {
		return 1
	}
	v := float64(timing.Since(now, p.changed)) / float64(d)
	if v > 1 {
		return 1
	}
	return v
}

func drawScrollInterval(rnd timing.Rand) timing.Millis {
	return timing.Millis(timing.Between(rnd, ScrollIntervalMin, ScrollIntervalMax))
}

// towardZero returns the correction for one axis, at most ReturnStep.
func towardZero(v int32) int {
	switch {
	case v > ReturnStep:
		return -ReturnStep
	case v < -ReturnStep:
		return ReturnStep
	default:
		return int(-v)
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
