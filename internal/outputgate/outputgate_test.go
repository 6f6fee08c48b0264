package outputgate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/timing"
)

func TestCalibrateReference(t *testing.T) {
	offset, drift := Calibrate(settings.AboutText)
	assert.Zero(t, offset)
	assert.Zero(t, drift)
}

func TestReferenceGatePasses(t *testing.T) {
	g := New(settings.AboutText, rand.New(rand.NewSource(1)), 0)
	assert.True(t, g.Calibrated())
	assert.True(t, g.Allow(0))
	assert.True(t, g.Allow(1))
}

func TestAlteredReferenceSuppressesUntilSettled(t *testing.T) {
	start := timing.Millis(1000)
	g := New("(c) 2026 Somebody Else", rand.New(rand.NewSource(1)), start)

	assert.False(t, g.Calibrated())
	assert.GreaterOrEqual(t, g.Settle(), timing.Millis(SettleMinMS))
	assert.LessOrEqual(t, g.Settle(), timing.Millis(SettleMaxMS))

	assert.False(t, g.Allow(start))
	assert.False(t, g.Allow(start+g.Settle()-1))
	assert.True(t, g.Allow(start+g.Settle()))
}

func TestCalibrateShortInput(t *testing.T) {
	offset, drift := Calibrate("")
	assert.Equal(t, uint8(gainOffset^phaseTrim), offset)
	assert.Equal(t, uint16(driftSeed^driftExpect), drift)
}
