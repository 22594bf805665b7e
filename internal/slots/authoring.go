package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// SlotAPI is the slice of the Sphere client the authoring service needs.
type SlotAPI interface {
	SlotCalendar(ctx context.Context, token, startDate, endDate string, size int) (map[string][]sphere.Slot, error)
	CreateSlots(ctx context.Context, token string, req sphere.CreateSlotsRequest) error
	DeleteSlot(ctx context.Context, token, slotID string) error
	DeleteSlotsByDate(ctx context.Context, token, date string) error
	DuplicateDay(ctx context.Context, token, sourceDate, targetDate string) error
	DuplicateWeek(ctx context.Context, token, sourceWeekStart, targetWeekStart string) error
}

// ServiceCatalog maps a service slug to its allowed slot durations in minutes.
type ServiceCatalog map[string][]int

// DefaultCatalog covers the services currently offered on the platform.
func DefaultCatalog() ServiceCatalog {
	return ServiceCatalog{
		"general-consultation": {15, 30},
		"therapy-session":      {30, 60},
		"pediatric-checkup":    {20, 40},
		"nutrition-coaching":   {30, 45, 60},
	}
}

// Allows reports whether the service permits the duration.
func (c ServiceCatalog) Allows(serviceSlug string, duration int) bool {
	for _, d := range c[serviceSlug] {
		if d == duration {
			return true
		}
	}
	return false
}

// Authoring drives the doctor's slot calendar: generate, persist, delete, and
// duplicate slot blocks. All mutations are fire-and-refetch against the
// backend; nothing is stored here.
type Authoring struct {
	api     SlotAPI
	catalog ServiceCatalog
	logger  *logging.Logger
	nowFn   func() time.Time
}

// NewAuthoring constructs the slot authoring service.
func NewAuthoring(api SlotAPI, catalog ServiceCatalog, logger *logging.Logger) *Authoring {
	if api == nil {
		panic("slots: slot api required")
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Authoring{api: api, catalog: catalog, logger: logger, nowFn: time.Now}
}

// WithClock overrides the wall clock, for tests.
func (a *Authoring) WithClock(now func() time.Time) *Authoring {
	a.nowFn = now
	return a
}

// Calendar fetches the doctor's slots for [startDate, endDate] and shapes them
// for the calendar view. An omitted start defaults to the Monday of the
// current week, an omitted end to six days after the start.
func (a *Authoring) Calendar(ctx context.Context, token, startDate, endDate string, size int) ([]Day, error) {
	if startDate == "" {
		monday, err := WeekStart(a.nowFn().Format(dateLayout))
		if err != nil {
			return nil, err
		}
		startDate = monday
	}
	if err := validateDate(startDate); err != nil {
		return nil, err
	}
	if endDate == "" {
		start, _ := time.Parse(dateLayout, startDate)
		endDate = start.AddDate(0, 0, 6).Format(dateLayout)
	}
	if err := validateDate(endDate); err != nil {
		return nil, err
	}
	grouped, err := a.api.SlotCalendar(ctx, token, startDate, endDate, size)
	if err != nil {
		return nil, err
	}
	return BuildCalendar(grouped), nil
}

// Create validates the block against the service catalog, generates the
// boundaries, and persists them for every target date. The generated preview
// is returned so the caller can render what was submitted.
func (a *Authoring) Create(ctx context.Context, token, serviceSlug, startTime, endTime string, duration int, dates []string) ([]Boundary, error) {
	if !a.catalog.Allows(serviceSlug, duration) {
		return nil, fmt.Errorf("slots: service %q does not allow %d-minute slots", serviceSlug, duration)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("slots: at least one target date is required")
	}
	for _, d := range dates {
		if err := validateDate(d); err != nil {
			return nil, err
		}
	}
	preview, err := Generate(startTime, endTime, duration)
	if err != nil {
		return nil, err
	}
	if len(preview) == 0 {
		return nil, fmt.Errorf("slots: window %s-%s does not fit a single %d-minute slot", startTime, endTime, duration)
	}

	if err := a.api.CreateSlots(ctx, token, sphere.CreateSlotsRequest{
		ServiceSlug: serviceSlug,
		StartTime:   startTime,
		EndTime:     endTime,
		Duration:    duration,
		Dates:       dates,
	}); err != nil {
		return nil, err
	}
	a.logger.Info("slot block created",
		"service", serviceSlug,
		"slots_per_day", len(preview),
		"dates", len(dates),
	)
	return preview, nil
}

// Delete removes a single slot.
func (a *Authoring) Delete(ctx context.Context, token, slotID string) error {
	if slotID == "" {
		return fmt.Errorf("slots: slot id required")
	}
	return a.api.DeleteSlot(ctx, token, slotID)
}

// DeleteDay removes all of a day's slots. The calendar view hides this action
// for days with booked slots; the backend still has the final say.
func (a *Authoring) DeleteDay(ctx context.Context, token, date string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	return a.api.DeleteSlotsByDate(ctx, token, date)
}

// DuplicateDay copies one day's slots to another day.
func (a *Authoring) DuplicateDay(ctx context.Context, token, sourceDate, targetDate string) error {
	if err := validateDate(sourceDate); err != nil {
		return err
	}
	if err := validateDate(targetDate); err != nil {
		return err
	}
	if sourceDate == targetDate {
		return fmt.Errorf("slots: source and target day are the same")
	}
	return a.api.DuplicateDay(ctx, token, sourceDate, targetDate)
}

// DuplicateWeek copies an entire Monday-start week to another Monday-start week.
func (a *Authoring) DuplicateWeek(ctx context.Context, token, sourceWeekStart, targetWeekStart string) error {
	if !IsWeekStart(sourceWeekStart) {
		return fmt.Errorf("slots: source week must start on a Monday, got %s", sourceWeekStart)
	}
	if !IsWeekStart(targetWeekStart) {
		return fmt.Errorf("slots: target week must start on a Monday, got %s", targetWeekStart)
	}
	if sourceWeekStart == targetWeekStart {
		return fmt.Errorf("slots: source and target week are the same")
	}
	return a.api.DuplicateWeek(ctx, token, sourceWeekStart, targetWeekStart)
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("slots: invalid date %q: %w", date, err)
	}
	return nil
}
