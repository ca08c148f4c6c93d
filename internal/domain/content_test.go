package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"new to fetched", StatusNew, StatusFetched, true},
		{"fetched to scored", StatusFetched, StatusScored, true},
		{"scored to featured", StatusScored, StatusFeatured, true},
		{"new to scored skips a step", StatusNew, StatusScored, true},
		{"scored back to fetched", StatusScored, StatusFetched, false},
		{"featured back to new", StatusFeatured, StatusNew, false},
		{"same status is not an advance", StatusFetched, StatusFetched, false},
		{"anything to discarded", StatusFeatured, StatusDiscarded, true},
		{"discarded is terminal", StatusDiscarded, StatusFetched, false},
		{"discarded stays discarded", StatusDiscarded, StatusDiscarded, false},
		{"unknown status never advances", Status("bogus"), StatusScored, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to))
		})
	}
}
