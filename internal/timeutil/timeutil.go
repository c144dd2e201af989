// Package timeutil provides duration and instant formatting for time tracking.
package timeutil

import (
	"fmt"
	"time"
)

const stampFormat = "2006-01-02 15:04:05"

// RoundToSecond normalizes an instant to the nearest whole second.
// Elapsed-time displays and stored log boundaries both go through this so
// independently computed values agree to the second.
func RoundToSecond(t time.Time) time.Time {
	return t.Round(time.Second)
}

// FormatDuration renders a non-negative duration as "M:SS", "H:MM:SS", or
// "D day(s) HH:MM:SS" depending on magnitude. Negative durations clamp to zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSeconds := int64(d.Round(time.Second).Seconds())
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case days == 1:
		return fmt.Sprintf("1 day %02d:%02d:%02d", hours, minutes, seconds)
	case days > 1:
		return fmt.Sprintf("%d days %02d:%02d:%02d", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	default:
		return fmt.Sprintf("%d:%02d", minutes, seconds)
	}
}

// FormatStamp renders an instant as a local date-time string for log display.
func FormatStamp(t time.Time) string {
	return t.Local().Format(stampFormat)
}

// ParseStamp parses a local date-time string produced by FormatStamp.
// Also accepts the T-separated variant ("2006-01-02T15:04:05").
func ParseStamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(stampFormat, s, time.Local)
	if err == nil {
		return t, nil
	}
	t, err = time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected YYYY-MM-DD HH:MM:SS", s)
	}
	return t, nil
}
