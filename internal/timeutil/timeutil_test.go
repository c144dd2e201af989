package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundToSecond(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	assert.Equal(t, base, RoundToSecond(base.Add(200*time.Millisecond)))
	assert.Equal(t, base.Add(time.Second), RoundToSecond(base.Add(700*time.Millisecond)))
	assert.Equal(t, base, RoundToSecond(base))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0:00"},
		{"negative clamps", -5 * time.Second, "0:00"},
		{"seconds only", 42 * time.Second, "0:42"},
		{"minutes", 5*time.Minute + 3*time.Second, "5:03"},
		{"hours", time.Hour + 2*time.Minute + 9*time.Second, "1:02:09"},
		{"one day", 24*time.Hour + 3661*time.Second, "1 day 01:01:01"},
		{"many days", 49*time.Hour + 30*time.Minute, "2 days 01:30:00"},
		{"sub-second rounds", 4999 * time.Millisecond, "0:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestStampRoundTrip(t *testing.T) {
	orig := time.Date(2026, 8, 29, 14, 30, 5, 0, time.Local)

	s := FormatStamp(orig)
	parsed, err := ParseStamp(s)
	assert.NoError(t, err)
	assert.True(t, orig.Equal(parsed))
}

func TestParseStampVariants(t *testing.T) {
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)

	got, err := ParseStamp("2026-01-02 03:04:05")
	assert.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = ParseStamp("2026-01-02T03:04:05")
	assert.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = ParseStamp("yesterday")
	assert.Error(t, err)
}
