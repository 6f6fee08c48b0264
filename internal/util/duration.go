// Package util holds the parsers shared by the command line and the
// dashboard prompt.
package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration accepts a bare number of minutes ("90") or a Go duration
// string ("1h30m"). Negative durations are rejected.
func ParseDuration(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if minutes, err := strconv.Atoi(input); err == nil {
		if minutes < 0 {
			return 0, fmt.Errorf("invalid duration %q: must not be negative", input)
		}
		return time.Duration(minutes) * time.Minute, nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use minutes (\"90\") or a duration (\"1h30m\")", input)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", input)
	}
	return d, nil
}
