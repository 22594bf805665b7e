package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTwoSlots(t *testing.T) {
	got, err := Generate("09:00", "10:00", 30)
	require.NoError(t, err)
	assert.Equal(t, []Boundary{
		{StartTime: "09:00", EndTime: "09:30", Duration: 30},
		{StartTime: "09:30", EndTime: "10:00", Duration: 30},
	}, got)
}

func TestGenerateDiscardsRemainder(t *testing.T) {
	got, err := Generate("09:00", "10:15", 30)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// 10:00-10:15 doesn't fit a full slot
	assert.Equal(t, "10:00", got[len(got)-1].EndTime)
}

func TestGenerateNeverExceedsEnd(t *testing.T) {
	tests := []struct {
		start, end string
		duration   int
	}{
		{"09:00", "09:29", 30},
		{"08:00", "17:00", 45},
		{"23:00", "23:59", 20},
	}
	for _, tt := range tests {
		got, err := Generate(tt.start, tt.end, tt.duration)
		require.NoError(t, err)
		for _, b := range got {
			assert.LessOrEqual(t, b.EndTime, tt.end)
		}
	}
}

func TestGenerateContiguousAndNonOverlapping(t *testing.T) {
	got, err := Generate("08:00", "12:00", 20)
	require.NoError(t, err)
	require.Len(t, got, 12)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i-1].EndTime, got[i].StartTime)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	first, err := Generate("09:00", "11:30", 40)
	require.NoError(t, err)
	second, err := Generate("09:00", "11:30", 40)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate("10:00", "09:00", 30)
	assert.Error(t, err)

	_, err = Generate("09:00", "10:00", 0)
	assert.Error(t, err)

	_, err = Generate("9am", "10:00", 30)
	assert.Error(t, err)
}

func TestGenerateWindowTooSmall(t *testing.T) {
	got, err := Generate("09:00", "09:20", 30)
	require.NoError(t, err)
	assert.Empty(t, got)
}
