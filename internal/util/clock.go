package util

import (
	"fmt"
	"strings"
	"time"
)

var clockLayouts = []string{"15:04", "3:04PM", "3:04 PM", "03:04PM", "03:04 PM"}

// ParseClock parses a time of day in 24-hour ("17:30") or 12-hour
// ("5:30PM") form.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("invalid time %q: use HH:MM or HH:MM[AM|PM]", s)
}

// DaySeconds returns the seconds since local midnight of t.
func DaySeconds(t time.Time) uint32 {
	return uint32(t.Hour()*3600 + t.Minute()*60 + t.Second())
}
