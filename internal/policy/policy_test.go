package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancellationRefundTiers(t *testing.T) {
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		now        time.Time
		wantPct    int
		wantAmount float64
	}{
		{"50 hours out full refund", start.Add(-50 * time.Hour), 100, 100},
		{"exactly 48 hours full refund", start.Add(-48 * time.Hour), 100, 100},
		{"just under 48 hours half refund", start.Add(-48*time.Hour + time.Minute), 50, 50},
		{"30 hours out half refund", start.Add(-30 * time.Hour), 50, 50},
		{"exactly 24 hours half refund", start.Add(-24 * time.Hour), 50, 50},
		{"23 hours out no refund", start.Add(-23 * time.Hour), 0, 0},
		{"one hour out no refund", start.Add(-time.Hour), 0, 0},
		{"already started no refund", start.Add(time.Hour), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := CancellationRefund(tt.now, start, 100)
			assert.Equal(t, tt.wantPct, est.Percentage)
			assert.InDelta(t, tt.wantAmount, est.Amount, 0.001)
		})
	}
}

func TestCancellationRefundScenario(t *testing.T) {
	// $100 appointment at 2025-06-10T09:00.
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	// Cancelled 50 hours prior: full refund.
	est := CancellationRefund(time.Date(2025, 6, 8, 7, 0, 0, 0, time.UTC), start, 100)
	assert.Equal(t, 100, est.Percentage)
	assert.InDelta(t, 100.0, est.Amount, 0.001)

	// Cancelled 23 hours prior: nothing back.
	est = CancellationRefund(time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC), start, 100)
	assert.Equal(t, 0, est.Percentage)
	assert.InDelta(t, 0.0, est.Amount, 0.001)
}

func TestRescheduleTiers(t *testing.T) {
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		now         time.Time
		wantAllowed bool
		wantPenalty int
	}{
		{"three hours out blocked", start.Add(-3 * time.Hour), false, 0},
		{"just under four hours blocked", start.Add(-4*time.Hour + time.Second), false, 0},
		{"exactly four hours penalty", start.Add(-4 * time.Hour), true, 50},
		{"twelve hours out penalty", start.Add(-12 * time.Hour), true, 50},
		{"exactly 24 hours free", start.Add(-24 * time.Hour), true, 0},
		{"two days out free", start.Add(-48 * time.Hour), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Reschedule(tt.now, start)
			assert.Equal(t, tt.wantAllowed, p.Allowed)
			assert.Equal(t, tt.wantPenalty, p.PenaltyPercentage)
		})
	}
}

func TestMeetingJoinable(t *testing.T) {
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	link := "https://meet.google.com/abc-defg-hij"

	tests := []struct {
		name      string
		now       time.Time
		confirmed bool
		link      string
		want      bool
	}{
		{"before window", start.Add(-16 * time.Minute), true, link, false},
		{"window opens 15 minutes early", start.Add(-15 * time.Minute), true, link, true},
		{"mid appointment", start.Add(10 * time.Minute), true, link, true},
		{"at end", end, true, link, true},
		{"after end", end.Add(time.Minute), true, link, false},
		{"not confirmed", start, false, link, false},
		{"no link", start, true, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := MeetingJoinable(tt.now, start, end, tt.confirmed, tt.link)
			assert.Equal(t, tt.want, w.Enabled)
			if !tt.want {
				assert.NotEmpty(t, w.Reason)
			}
		})
	}
}

func TestMeetingJoinableOpensAt(t *testing.T) {
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	w := MeetingJoinable(start.Add(-time.Hour), start, start.Add(30*time.Minute), true, "link")
	assert.Equal(t, start.Add(-15*time.Minute), w.OpensAt)
}

func TestStartInstant(t *testing.T) {
	got, err := StartInstant("2025-06-10", "09:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), got)

	_, err = StartInstant("June 10", "9am", time.UTC)
	require.Error(t, err)
}
