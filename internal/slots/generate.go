// Package slots generates candidate slot boundaries for the doctor calendar
// and shapes the backend's slot responses for display. Generated slots are a
// preview only; persistence happens in the Sphere API.
package slots

import (
	"fmt"
	"time"
)

// Boundary is one candidate slot in a generated block.
type Boundary struct {
	StartTime string `json:"startTime"` // 15:04
	EndTime   string `json:"endTime"`
	Duration  int    `json:"duration"` // minutes
}

// Generate produces the sequence of exact-duration slots between startTime and
// endTime ("15:04"), advancing strictly by duration: no overlaps, no gaps, and
// any remainder shorter than a full slot is discarded. The output is fully
// determined by its inputs.
func Generate(startTime, endTime string, duration int) ([]Boundary, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("slots: duration must be positive, got %d", duration)
	}
	start, err := parseMinutes(startTime)
	if err != nil {
		return nil, err
	}
	end, err := parseMinutes(endTime)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, fmt.Errorf("slots: end time %s is not after start time %s", endTime, startTime)
	}

	var out []Boundary
	for cur := start; cur+duration <= end; cur += duration {
		out = append(out, Boundary{
			StartTime: formatMinutes(cur),
			EndTime:   formatMinutes(cur + duration),
			Duration:  duration,
		})
	}
	return out, nil
}

func parseMinutes(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("slots: parse time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
