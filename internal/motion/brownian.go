package motion

import (
	"math"

	"github.com/stigoleg/ghost-operator/internal/timing"
)

const redirectPercent = 15

// compass holds the eight unit directions, origin excluded.
var compass = [...]Point{
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
}

func randomDirection(rnd timing.Rand) Point {
	return compass[rnd.Intn(len(compass))]
}

// brownianAmplitude eases the configured amplitude with sin(pi*progress),
// so the walk starts and ends at rest.
func brownianAmplitude(amplitude uint8, progress float64) int {
	if progress <= 0 || progress >= 1 {
		return 0
	}
	return int(math.Round(float64(amplitude) * math.Sin(math.Pi*progress)))
}

// stepBrownian performs one random-walk step.
func (p *Planner) stepBrownian(now timing.Millis, amplitude uint8, em Emitter) {
	if p.rnd.Intn(100) < redirectPercent {
		p.dir = randomDirection(p.rnd)
	}
	progress := float64(timing.Since(now, p.changed)) / float64(p.jiggle)
	amp := brownianAmplitude(amplitude, progress)
	if amp == 0 {
		return
	}
	p.emit(int(p.dir.X)*amp, int(p.dir.Y)*amp, em)
}
