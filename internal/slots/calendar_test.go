package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ubietysphere/sphere-web/internal/sphere"
)

func TestBuildCalendarOrdersAndProtects(t *testing.T) {
	grouped := map[string][]sphere.Slot{
		"2025-06-11": {
			{ID: "s3", StartTime: "10:00", Status: sphere.SlotAvailable},
		},
		"2025-06-10": {
			{ID: "s2", StartTime: "10:00", Status: sphere.SlotBooked},
			{ID: "s1", StartTime: "09:00", Status: sphere.SlotAvailable},
		},
	}

	days := BuildCalendar(grouped)
	require.Len(t, days, 2)

	assert.Equal(t, "2025-06-10", days[0].Date)
	assert.False(t, days[0].Deletable, "day with a booked slot must not offer bulk delete")
	assert.Equal(t, "s1", days[0].Slots[0].ID, "slots sorted by start time")

	assert.Equal(t, "2025-06-11", days[1].Date)
	assert.True(t, days[1].Deletable)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-06-09", "2025-06-09"}, // already Monday
		{"2025-06-10", "2025-06-09"},
		{"2025-06-15", "2025-06-09"}, // Sunday belongs to the preceding Monday
	}
	for _, tt := range tests {
		got, err := WeekStart(tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "week start of %s", tt.date)
	}

	_, err := WeekStart("June 9")
	assert.Error(t, err)
}

func TestIsWeekStart(t *testing.T) {
	assert.True(t, IsWeekStart("2025-06-09"))
	assert.False(t, IsWeekStart("2025-06-10"))
	assert.False(t, IsWeekStart("not-a-date"))
}
