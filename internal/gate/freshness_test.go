package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFreshness(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := NewFreshness(72 * time.Hour)

	ts := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	tests := []struct {
		name      string
		published *time.Time
		want      bool
	}{
		{"one hour old", ts(-1 * time.Hour), true},
		{"exactly at window", ts(-72 * time.Hour), true},
		{"100 hours old", ts(-100 * time.Hour), false},
		{"missing timestamp", nil, false},
		{"zero timestamp", &time.Time{}, false},
		{"slightly in future within skew", ts(3 * time.Minute), true},
		{"future beyond skew", ts(10 * time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Fresh(tt.published, now))
		})
	}
}

func TestNewFreshness_DefaultsWindow(t *testing.T) {
	f := NewFreshness(0)
	assert.Equal(t, DefaultFreshnessWindow, f.Window)
}
