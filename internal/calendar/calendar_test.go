package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsmith/itinerary-api/internal/calendar"
)

func TestParse(t *testing.T) {
	got, err := calendar.Parse("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = calendar.Parse("2025-06-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC), got)

	_, err = calendar.Parse("")
	assert.Error(t, err)

	_, err = calendar.Parse("2025-13-40")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-06-01", "2025-06-01", true},
		{" 2025-06-01 ", "2025-06-01", true},
		{"2025-06-01T23:00:00Z", "2025-06-01", true},
		{"June 1, 2025", "2025-06-01", true},
		{"2025-02-30", "", false},
		{"not a date", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := calendar.Normalize(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
