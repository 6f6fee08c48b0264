// Package schedule decides whether the device should be active at the
// current time of day and turns window transitions into sleep/wake intents.
package schedule

import "fmt"

const (
	// Slots is the number of 5-minute slots in a day.
	Slots = 288
	// SlotSeconds is the length of one slot.
	SlotSeconds = 300
	// DaySeconds is the length of a day.
	DaySeconds = 86400
)

// Mode is the schedule operating mode.
type Mode int

const (
	// ModeOff disables the schedule; the device is always active.
	ModeOff Mode = iota
	// ModeAutoSleep powers the device off when the window closes.
	ModeAutoSleep
	// ModeFullAuto light-sleeps outside the window and wakes when it opens.
	ModeFullAuto
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "Off"
	case ModeAutoSleep:
		return "Auto-sleep"
	case ModeFullAuto:
		return "Full auto"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= ModeOff && m <= ModeFullAuto
}

// Window is a daily active window expressed in 5-minute slots.
type Window struct {
	Mode  Mode
	Start uint16
	End   uint16
}

// IsActive reports whether daySeconds falls inside the window. It fails
// open: schedule off, an unsynced clock and start == end are all active.
// A window with Start > End crosses midnight.
func IsActive(w Window, daySeconds uint32, synced bool) bool {
	if w.Mode == ModeOff || !synced {
		return true
	}

	start := uint32(w.Start) * SlotSeconds
	end := uint32(w.End) * SlotSeconds

	switch {
	case start == end:
		return true
	case start < end:
		return daySeconds >= start && daySeconds < end
	default:
		return daySeconds >= start || daySeconds < end
	}
}

// FormatSlot renders a slot index as "H:MM".
func FormatSlot(slot uint16) string {
	total := int(slot) * 5
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatDaySeconds renders seconds since midnight as "H:MM".
func FormatDaySeconds(secs uint32) string {
	return fmt.Sprintf("%d:%02d", secs/3600, (secs%3600)/60)
}
