// Package settings defines the behavior settings snapshot read by the
// activity engine, its defaults and bounds, and the key catalog.
package settings

import (
	"github.com/stigoleg/ghost-operator/internal/schedule"
)

// Bounds shared by the setters and the load-time validation.
const (
	ValueMinMS      = 500
	ValueMaxKeyMS   = 30000
	ValueMaxMouseMS = 90000

	AmplitudeMin = 1
	AmplitudeMax = 5

	PercentMax     = 50
	PercentDefault = 15

	NumSlots   = 8
	NameMaxLen = 14

	DefaultDeviceName = "GhostOperator"
)

// AboutText is the fixed reference string shown on the About screen.
// The output gate calibrates against it at load time.
const AboutText = "(c) 2026 TARS Industrial Technical Solutions"

// MouseStyle selects the trajectory strategy used while jiggling.
type MouseStyle int

const (
	StyleBezier MouseStyle = iota
	StyleBrownian
)

func (s MouseStyle) String() string {
	switch s {
	case StyleBezier:
		return "Bezier"
	case StyleBrownian:
		return "Brownian"
	default:
		return "Unknown"
	}
}

// Settings is the behavior configuration snapshot. It is owned by the
// settings store and read-only to the engine.
type Settings struct {
	KeyIntervalMin      uint32        `mapstructure:"key_interval_min" yaml:"key_interval_min"`
	KeyIntervalMax      uint32        `mapstructure:"key_interval_max" yaml:"key_interval_max"`
	MouseJiggleDuration uint32        `mapstructure:"mouse_jiggle_duration" yaml:"mouse_jiggle_duration"`
	MouseIdleDuration   uint32        `mapstructure:"mouse_idle_duration" yaml:"mouse_idle_duration"`
	MouseAmplitude      uint8         `mapstructure:"mouse_amplitude" yaml:"mouse_amplitude"`
	MouseStyle          MouseStyle    `mapstructure:"mouse_style" yaml:"mouse_style"`
	LazyPercent         uint8         `mapstructure:"lazy_percent" yaml:"lazy_percent"`
	BusyPercent         uint8         `mapstructure:"busy_percent" yaml:"busy_percent"`
	ScrollEnabled       bool          `mapstructure:"scroll_enabled" yaml:"scroll_enabled"`
	KeySlots            [NumSlots]int `mapstructure:"key_slots" yaml:"key_slots,flow"`
	ScheduleMode        schedule.Mode `mapstructure:"schedule_mode" yaml:"schedule_mode"`
	ScheduleStart       uint16        `mapstructure:"schedule_start" yaml:"schedule_start"`
	ScheduleEnd         uint16        `mapstructure:"schedule_end" yaml:"schedule_end"`
	DeviceName          string        `mapstructure:"device_name" yaml:"device_name"`
}

// Defaults returns the factory settings.
func Defaults() Settings {
	s := Settings{
		KeyIntervalMin:      2000,
		KeyIntervalMax:      6500,
		MouseJiggleDuration: 15000,
		MouseIdleDuration:   30000,
		MouseAmplitude:      1,
		MouseStyle:          StyleBezier,
		LazyPercent:         PercentDefault,
		BusyPercent:         PercentDefault,
		ScheduleMode:        schedule.ModeOff,
		ScheduleStart:       108, // 9:00
		ScheduleEnd:         204, // 17:00
		DeviceName:          DefaultDeviceName,
	}
	s.KeySlots[0] = KeyIndex("F16")
	for i := 1; i < NumSlots; i++ {
		s.KeySlots[i] = KeyNone
	}
	return s
}

// Window returns the configured daily schedule window.
func (s *Settings) Window() schedule.Window {
	return schedule.Window{Mode: s.ScheduleMode, Start: s.ScheduleStart, End: s.ScheduleEnd}
}

// Normalize repairs out-of-range values the way a load from storage does:
// durations are clamped, unknown enum values and broken percentages fall
// back to their defaults. Afterwards KeyIntervalMin <= KeyIntervalMax.
func (s *Settings) Normalize() {
	s.KeyIntervalMin = clampU32(s.KeyIntervalMin, ValueMinMS, ValueMaxKeyMS)
	s.KeyIntervalMax = clampU32(s.KeyIntervalMax, ValueMinMS, ValueMaxKeyMS)
	if s.KeyIntervalMax < s.KeyIntervalMin {
		s.KeyIntervalMax = s.KeyIntervalMin
	}
	s.MouseJiggleDuration = clampU32(s.MouseJiggleDuration, ValueMinMS, ValueMaxMouseMS)
	s.MouseIdleDuration = clampU32(s.MouseIdleDuration, ValueMinMS, ValueMaxMouseMS)

	for i, k := range s.KeySlots {
		if k < 0 || k >= NumKeys {
			s.KeySlots[i] = KeyNone
		}
	}
	if s.LazyPercent > PercentMax {
		s.LazyPercent = PercentDefault
	}
	if s.BusyPercent > PercentMax {
		s.BusyPercent = PercentDefault
	}
	if s.MouseAmplitude < AmplitudeMin || s.MouseAmplitude > AmplitudeMax {
		s.MouseAmplitude = AmplitudeMin
	}
	if s.MouseStyle != StyleBezier && s.MouseStyle != StyleBrownian {
		s.MouseStyle = StyleBezier
	}
	if !s.ScheduleMode.Valid() {
		s.ScheduleMode = schedule.ModeOff
	}
	if s.ScheduleStart >= schedule.Slots {
		s.ScheduleStart = 108
	}
	if s.ScheduleEnd >= schedule.Slots {
		s.ScheduleEnd = 204
	}
	if !validName(s.DeviceName) {
		s.DeviceName = DefaultDeviceName
	}
}

// SetKeyIntervalMin sets the lower bound, pushing the upper bound up if needed.
func (s *Settings) SetKeyIntervalMin(v uint32) {
	s.KeyIntervalMin = clampU32(v, ValueMinMS, ValueMaxKeyMS)
	if s.KeyIntervalMin > s.KeyIntervalMax {
		s.KeyIntervalMax = s.KeyIntervalMin
	}
}

// SetKeyIntervalMax sets the upper bound, pulling the lower bound down if needed.
func (s *Settings) SetKeyIntervalMax(v uint32) {
	s.KeyIntervalMax = clampU32(v, ValueMinMS, ValueMaxKeyMS)
	if s.KeyIntervalMax < s.KeyIntervalMin {
		s.KeyIntervalMin = s.KeyIntervalMax
	}
}

// SetSlots assigns key catalog indices to the slots in order. Unknown
// indices select the NONE key; missing trailing slots are left untouched.
func (s *Settings) SetSlots(indices []int) {
	for i := 0; i < NumSlots && i < len(indices); i++ {
		k := indices[i]
		if k < 0 || k >= NumKeys {
			k = KeyNone
		}
		s.KeySlots[i] = k
	}
}

// SetDeviceName truncates to NameMaxLen and ignores names with
// non-printable characters.
func (s *Settings) SetDeviceName(name string) {
	if len(name) > NameMaxLen {
		name = name[:NameMaxLen]
	}
	if validName(name) {
		s.DeviceName = name
	}
}

func validName(name string) bool {
	if name == "" || len(name) > NameMaxLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] > 0x7e {
			return false
		}
	}
	return true
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
