package settings

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/ghost-operator/internal/schedule"
)

func TestDefaults(t *testing.T) {
	s := Defaults()

	assert.Equal(t, uint32(2000), s.KeyIntervalMin)
	assert.Equal(t, uint32(6500), s.KeyIntervalMax)
	assert.Equal(t, "F16", KeyAt(s.KeySlots[0]).Name)
	for i := 1; i < NumSlots; i++ {
		assert.Equal(t, KeyNone, s.KeySlots[i], "slot %d", i)
	}
	assert.Equal(t, schedule.ModeOff, s.ScheduleMode)
	assert.Equal(t, DefaultDeviceName, s.DeviceName)
}

func TestKeyIntervalBoundsStayOrdered(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	s := Defaults()

	for i := 0; i < 2000; i++ {
		v := uint32(rnd.Intn(40000))
		if rnd.Intn(2) == 0 {
			s.SetKeyIntervalMin(v)
		} else {
			s.SetKeyIntervalMax(v)
		}
		require.LessOrEqual(t, s.KeyIntervalMin, s.KeyIntervalMax)
		require.GreaterOrEqual(t, s.KeyIntervalMin, uint32(ValueMinMS))
		require.LessOrEqual(t, s.KeyIntervalMax, uint32(ValueMaxKeyMS))
	}
}

func TestSetPushesOtherBound(t *testing.T) {
	s := Defaults()

	s.Set(KeyMin, 9000)
	assert.Equal(t, uint32(9000), s.KeyIntervalMin)
	assert.Equal(t, uint32(9000), s.KeyIntervalMax)

	s.Set(KeyMax, 1000)
	assert.Equal(t, uint32(1000), s.KeyIntervalMin)
	assert.Equal(t, uint32(1000), s.KeyIntervalMax)
}

func TestSetClamps(t *testing.T) {
	tests := []struct {
		id    ID
		value uint32
		want  uint32
	}{
		{MouseJiggle, 100, ValueMinMS},
		{MouseIdle, 200000, ValueMaxMouseMS},
		{MouseAmplitude, 9, AmplitudeMax},
		{LazyPercent, 80, PercentMax},
		{Scroll, 7, 1},
		{ScheduleStart, 400, schedule.Slots - 1},
		{ScheduleModeID, 9, uint32(schedule.ModeFullAuto)},
	}
	for _, tt := range tests {
		s := Defaults()
		s.Set(tt.id, tt.value)
		assert.Equal(t, tt.want, s.Get(tt.id), "setting %d", tt.id)
	}
}

func TestLookup(t *testing.T) {
	pm, ok := Lookup("mouseJig")
	require.True(t, ok)
	assert.Equal(t, MouseJiggle, pm.ID)

	_, ok = Lookup("bogus")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	s := Settings{
		KeyIntervalMin:      50000,
		KeyIntervalMax:      100,
		MouseJiggleDuration: 0,
		MouseIdleDuration:   999999,
		MouseAmplitude:      0,
		MouseStyle:          7,
		LazyPercent:         99,
		BusyPercent:         20,
		ScheduleMode:        schedule.Mode(5),
		ScheduleStart:       300,
		ScheduleEnd:         12,
		DeviceName:          "bad\x01name",
	}
	s.KeySlots[0] = 99
	s.KeySlots[1] = 3

	s.Normalize()

	assert.Equal(t, uint32(ValueMaxKeyMS), s.KeyIntervalMin)
	assert.Equal(t, uint32(ValueMaxKeyMS), s.KeyIntervalMax)
	assert.Equal(t, uint32(ValueMinMS), s.MouseJiggleDuration)
	assert.Equal(t, uint32(ValueMaxMouseMS), s.MouseIdleDuration)
	assert.Equal(t, uint8(AmplitudeMin), s.MouseAmplitude)
	assert.Equal(t, StyleBezier, s.MouseStyle)
	assert.Equal(t, uint8(PercentDefault), s.LazyPercent)
	assert.Equal(t, uint8(20), s.BusyPercent)
	assert.Equal(t, schedule.ModeOff, s.ScheduleMode)
	assert.Equal(t, uint16(108), s.ScheduleStart)
	assert.Equal(t, uint16(12), s.ScheduleEnd)
	assert.Equal(t, DefaultDeviceName, s.DeviceName)
	assert.Equal(t, KeyNone, s.KeySlots[0])
	assert.Equal(t, 3, s.KeySlots[1])
}

func TestSetSlots(t *testing.T) {
	s := Defaults()
	s.SetSlots([]int{0, -1, 500})

	assert.Equal(t, 0, s.KeySlots[0])
	assert.Equal(t, KeyNone, s.KeySlots[1])
	assert.Equal(t, KeyNone, s.KeySlots[2])
}

func TestSetDeviceName(t *testing.T) {
	s := Defaults()

	s.SetDeviceName("Desk Buddy")
	assert.Equal(t, "Desk Buddy", s.DeviceName)

	s.SetDeviceName("A very long device name")
	assert.Equal(t, "A very long de", s.DeviceName)

	s.SetDeviceName("tab\there")
	assert.Equal(t, "A very long de", s.DeviceName, "non-printable names are ignored")
}

func TestKeyCatalog(t *testing.T) {
	assert.Equal(t, 29, NumKeys)
	assert.Equal(t, "NONE", KeyAt(KeyNone).Name)
	assert.False(t, Populated(KeyNone))
	assert.False(t, Populated(-1))
	assert.Equal(t, uint8(0x73), KeyAt(KeyIndex("F24")).Code)

	tests := []struct {
		name string
		mask uint8
	}{
		{"LCtrl", 0x01},
		{"LShift", 0x02},
		{"LAlt", 0x04},
		{"RCtrl", 0x10},
		{"RShift", 0x20},
		{"RAlt", 0x40},
		{"F13", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.mask, KeyAt(KeyIndex(tt.name)).ModifierMask(), tt.name)
	}
}
