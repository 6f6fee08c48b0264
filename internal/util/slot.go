package util

import (
	"fmt"

	"github.com/stigoleg/ghost-operator/internal/schedule"
)

// SlotFromClock converts a clock string accepted by ParseClock to a
// 5-minute schedule slot, rounding down.
func SlotFromClock(clock string) (uint16, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return 0, err
	}
	return uint16((h*3600 + m*60) / schedule.SlotSeconds), nil
}

// ClockFromSlot formats a schedule slot as 24-hour "HH:MM".
func ClockFromSlot(slot uint16) string {
	if int(slot) >= schedule.Slots {
		slot = schedule.Slots - 1
	}
	mins := int(slot) * schedule.SlotSeconds / 60
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
