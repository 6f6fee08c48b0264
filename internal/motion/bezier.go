package motion

import (
	"math"

	"github.com/stigoleg/ghost-operator/internal/timing"
)

// Sweep planning constants.
const (
	fracBits = 8
	fracHalf = 1 << (fracBits - 1)

	sweepDriftFactor = 3
	sweepSpeedMin    = 80  // px/s
	sweepSpeedMax    = 200 // px/s
	sweepMinDist     = 5
	sweepDurationMin = 150
	sweepDurationMax = 3000
	sweepMinSteps    = 2

	sweepPauseMin     = 200
	sweepPauseMax     = 1500
	sweepLongPause    = 3000
	sweepLongPausePct = 10
)

// SweepPhase is the sub-state of a Bezier jiggle.
type SweepPhase int

const (
	PhasePlanning SweepPhase = iota
	PhaseMoving
	PhasePausing
)

func (p SweepPhase) String() string {
	switch p {
	case PhasePlanning:
		return "Planning"
	case PhaseMoving:
		return "Moving"
	case PhasePausing:
		return "Pausing"
	default:
		return "Unknown"
	}
}

// fixedPoint is a coordinate with fracBits fractional bits.
type fixedPoint struct {
	X, Y int32
}

// bezierPlan is one quadratic sweep. P0 is always the origin of the sweep,
// so only the control and end points are stored.
type bezierPlan struct {
	ctrl  fixedPoint
	end   fixedPoint
	last  fixedPoint
	steps int
	step  int

	pauseStart timing.Millis
	pauseLen   timing.Millis
}

// randomSweepRadius draws from three bands: 40% in [20,60], 40% in
// [60,180], 20% in [150,350].
func randomSweepRadius(rnd timing.Rand) int {
	r := rnd.Intn(100)
	switch {
	case r < 40:
		return timing.Between(rnd, 20, 60)
	case r < 80:
		return timing.Between(rnd, 60, 180)
	default:
		return timing.Between(rnd, 150, 350)
	}
}

// approxDist is the alpha-max-beta-min estimate max + 3/8*min.
func approxDist(dx, dy int) int {
	ax, ay := abs(dx), abs(dy)
	if ax > ay {
		return ax + ay*3/8
	}
	return ay + ax*3/8
}

// velocityWarp maps linear time progress through a trapezoidal velocity
// profile (accelerate over 20%, cruise 60%, decelerate 20%) and returns
// the curve parameter.
func velocityWarp(progress float64) float64 {
	switch {
	case progress <= 0:
		return 0
	case progress >= 1:
		return 1
	case progress < 0.2:
		p := progress / 0.2
		return 0.125 * p * p
	case progress < 0.8:
		p := (progress - 0.2) / 0.6
		return 0.125 + 0.75*p
	default:
		p := (progress - 0.8) / 0.2
		return 0.875 + 0.125*(2*p-p*p)
	}
}

// fixedToPixels converts a fixed-point delta to whole pixels, rounding
// half away from zero.
func fixedToPixels(v int32) int {
	if v < 0 {
		return -int((-v + fracHalf) >> fracBits)
	}
	return int((v + fracHalf) >> fracBits)
}

// planSweep builds the next sweep starting at the current net displacement.
func planSweep(rnd timing.Rand, net Point) bezierPlan {
	radius := randomSweepRadius(rnd)
	drift := radius * sweepDriftFactor

	angle := float64(rnd.Intn(360)) * math.Pi / 180
	dist := float64(timing.Between(rnd, radius/2, radius))

	absX := clampInt(int(net.X)+int(math.Cos(angle)*dist), -drift, drift)
	absY := clampInt(int(net.Y)+int(math.Sin(angle)*dist), -drift, drift)
	dx := absX - int(net.X)
	dy := absY - int(net.Y)

	// Bend the curve with a control point rotated 90 degrees off the chord.
	jitter := radius / 4
	perpX := -dy/3 + timing.Between(rnd, -jitter, jitter)
	perpY := dx/3 + timing.Between(rnd, -jitter, jitter)

	plan := bezierPlan{
		ctrl: fixedPoint{X: int32(dx/2+perpX) << fracBits, Y: int32(dy/2+perpY) << fracBits},
		end:  fixedPoint{X: int32(dx) << fracBits, Y: int32(dy) << fracBits},
	}

	total := approxDist(dx, dy)
	if total < sweepMinDist {
		total = sweepMinDist
	}
	speed := timing.Between(rnd, sweepSpeedMin, sweepSpeedMax)
	duration := clampInt(total*1000/speed, sweepDurationMin, sweepDurationMax)

	plan.steps = duration / int(StepPeriod)
	if plan.steps < sweepMinSteps {
		plan.steps = sweepMinSteps
	}
	return plan
}

// advance evaluates the curve at the next step and returns the whole-pixel
// delta from the previously evaluated point.
func (b *bezierPlan) advance() (dx, dy int) {
	b.step++
	t := velocityWarp(float64(b.step) / float64(b.steps))
	omt := 1 - t

	// B(t) = (1-t)^2*P0 + 2(1-t)t*P1 + t^2*P2 with P0 at the origin.
	cur := fixedPoint{
		X: int32(2*omt*t*float64(b.ctrl.X) + t*t*float64(b.end.X)),
		Y: int32(2*omt*t*float64(b.ctrl.Y) + t*t*float64(b.end.Y)),
	}
	deltaX := cur.X - b.last.X
	deltaY := cur.Y - b.last.Y
	b.last = cur
	return fixedToPixels(deltaX), fixedToPixels(deltaY)
}

func (b *bezierPlan) done() bool {
	return b.step >= b.steps
}

// drawPause picks the rest after a sweep: usually 200-1500 ms, with a 10%
// chance of a longer 1500-3000 ms pause.
func drawPause(rnd timing.Rand) timing.Millis {
	if rnd.Intn(100) < sweepLongPausePct {
		return timing.Millis(timing.Between(rnd, sweepPauseMax, sweepLongPause))
	}
	return timing.Millis(timing.Between(rnd, sweepPauseMin, sweepPauseMax))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
