package slots

import (
	"sort"
	"time"

	"github.com/ubietysphere/sphere-web/internal/sphere"
)

const dateLayout = "2006-01-02"

// Day is one calendar day in the doctor's slot view. Deletable is withheld
// when any slot that day is already booked, so the bulk-delete affordance is
// never offered for a day a patient depends on.
type Day struct {
	Date      string        `json:"date"`
	Slots     []sphere.Slot `json:"slots"`
	Deletable bool          `json:"deletable"`
}

// BuildCalendar orders the backend's date-grouped slots chronologically and
// computes the per-day bulk-delete protection.
func BuildCalendar(grouped map[string][]sphere.Slot) []Day {
	days := make([]Day, 0, len(grouped))
	for date, daySlots := range grouped {
		days = append(days, Day{
			Date:      date,
			Slots:     sortedByStart(daySlots),
			Deletable: dayDeletable(daySlots),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func sortedByStart(in []sphere.Slot) []sphere.Slot {
	out := make([]sphere.Slot, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func dayDeletable(daySlots []sphere.Slot) bool {
	for _, s := range daySlots {
		if s.Status == sphere.SlotBooked {
			return false
		}
	}
	return true
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", err
	}
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset).Format(dateLayout), nil
}

// IsWeekStart reports whether date falls on a Monday.
func IsWeekStart(date string) bool {
	t, err := time.Parse(dateLayout, date)
	return err == nil && t.Weekday() == time.Monday
}
