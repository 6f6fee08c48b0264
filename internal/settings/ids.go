package settings

import "github.com/stigoleg/ghost-operator/internal/schedule"

// ID names one numeric setting for generic get/set access.
type ID int

const (
	KeyMin ID = iota
	KeyMax
	MouseJiggle
	MouseIdle
	MouseAmplitude
	MouseStyleID
	LazyPercent
	BusyPercent
	Scroll
	ScheduleModeID
	ScheduleStart
	ScheduleEnd
)

// Param describes a numeric setting's wire name and inclusive range.
type Param struct {
	ID   ID
	Name string
	Min  uint32
	Max  uint32
	Step uint32
}

// Params lists every numeric setting in menu order.
var Params = []Param{
	{KeyMin, "keyMin", ValueMinMS, ValueMaxKeyMS, 500},
	{KeyMax, "keyMax", ValueMinMS, ValueMaxKeyMS, 500},
	{MouseJiggle, "mouseJig", ValueMinMS, ValueMaxMouseMS, 500},
	{MouseIdle, "mouseIdle", ValueMinMS, ValueMaxMouseMS, 500},
	{MouseAmplitude, "mouseAmp", AmplitudeMin, AmplitudeMax, 1},
	{MouseStyleID, "mouseStyle", 0, 1, 1},
	{LazyPercent, "lazyPct", 0, PercentMax, 5},
	{BusyPercent, "busyPct", 0, PercentMax, 5},
	{Scroll, "scroll", 0, 1, 1},
	{ScheduleModeID, "schedMode", 0, uint32(schedule.ModeFullAuto), 1},
	{ScheduleStart, "schedStart", 0, schedule.Slots - 1, 1},
	{ScheduleEnd, "schedEnd", 0, schedule.Slots - 1, 1},
}

// Lookup finds a setting by wire name.
func Lookup(name string) (Param, bool) {
	for _, pm := range Params {
		if pm.Name == name {
			return pm, true
		}
	}
	return Param{}, false
}

func paramFor(id ID) Param {
	for _, pm := range Params {
		if pm.ID == id {
			return pm
		}
	}
	panic("settings: unknown setting id")
}

// Get returns the numeric value of a setting.
func (s *Settings) Get(id ID) uint32 {
	switch id {
	case KeyMin:
		return s.KeyIntervalMin
	case KeyMax:
		return s.KeyIntervalMax
	case MouseJiggle:
		return s.MouseJiggleDuration
	case MouseIdle:
		return s.MouseIdleDuration
	case MouseAmplitude:
		return uint32(s.MouseAmplitude)
	case MouseStyleID:
		return uint32(s.MouseStyle)
	case LazyPercent:
		return uint32(s.LazyPercent)
	case BusyPercent:
		return uint32(s.BusyPercent)
	case Scroll:
		if s.ScrollEnabled {
			return 1
		}
		return 0
	case ScheduleModeID:
		return uint32(s.ScheduleMode)
	case ScheduleStart:
		return uint32(s.ScheduleStart)
	case ScheduleEnd:
		return uint32(s.ScheduleEnd)
	default:
		panic("settings: unknown setting id")
	}
}

// Set clamps value into the setting's range and stores it. The key
// interval bounds keep KeyIntervalMin <= KeyIntervalMax.
func (s *Settings) Set(id ID, value uint32) {
	pm := paramFor(id)
	v := clampU32(value, pm.Min, pm.Max)

	switch id {
	case KeyMin:
		s.SetKeyIntervalMin(v)
	case KeyMax:
		s.SetKeyIntervalMax(v)
	case MouseJiggle:
		s.MouseJiggleDuration = v
	case MouseIdle:
		s.MouseIdleDuration = v
	case MouseAmplitude:
		s.MouseAmplitude = uint8(v)
	case MouseStyleID:
		s.MouseStyle = MouseStyle(v)
	case LazyPercent:
		s.LazyPercent = uint8(v)
	case BusyPercent:
		s.BusyPercent = uint8(v)
	case Scroll:
		s.ScrollEnabled = v != 0
	case ScheduleModeID:
		s.ScheduleMode = schedule.Mode(v)
	case ScheduleStart:
		s.ScheduleStart = uint16(v)
	case ScheduleEnd:
		s.ScheduleEnd = uint16(v)
	default:
		panic("settings: unknown setting id")
	}
}
