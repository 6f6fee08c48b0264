package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"30", 30 * time.Minute, false},
		{"0", 0, false},
		{" 120 ", 2 * time.Hour, false},
		{"2h", 2 * time.Hour, false},
		{"1h30m", 90 * time.Minute, false},
		{"45s", 45 * time.Second, false},
		{"-5", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input      string
		hour, min  int
		wantErr    bool
	}{
		{"22:30", 22, 30, false},
		{"09:45", 9, 45, false},
		{"00:00", 0, 0, false},
		{"10:30PM", 22, 30, false},
		{"9:45 am", 9, 45, false},
		{"12:00AM", 0, 0, false},
		{"12:00PM", 12, 0, false},
		{"24:00", 0, 0, true},
		{"9:60", 0, 0, true},
		{"13:00PM", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h, m, err := ParseClock(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, h)
			assert.Equal(t, tt.min, m)
		})
	}
}

func TestDaySeconds(t *testing.T) {
	assert.Equal(t, uint32(0), DaySeconds(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, uint32(61505), DaySeconds(time.Date(2026, 1, 1, 17, 5, 5, 0, time.UTC)))
}
