package sphere

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// AvailableSlots returns a doctor's open slots for a service, grouped by date
// ("2006-01-02" keys). Token is optional: the public booking page calls this
// before login.
func (c *Client) AvailableSlots(ctx context.Context, token, doctorID, serviceSlug string) (map[string][]Slot, error) {
	q := url.Values{}
	q.Set("doctorId", doctorID)
	q.Set("serviceSlug", serviceSlug)

	out := map[string][]Slot{}
	if err := c.do(ctx, http.MethodGet, "/doctor/slots/available", token, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SlotCalendar returns the authenticated doctor's own slot calendar for a date
// range, grouped by date. Includes booked slots.
func (c *Client) SlotCalendar(ctx context.Context, token, startDate, endDate string, size int) (map[string][]Slot, error) {
	q := url.Values{}
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)
	q.Set("size", strconv.Itoa(size))

	out := map[string][]Slot{}
	if err := c.do(ctx, http.MethodGet, "/doctor/slots", token, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSlots persists a slot block for each target date.
func (c *Client) CreateSlots(ctx context.Context, token string, req CreateSlotsRequest) error {
	return c.do(ctx, http.MethodPost, "/doctor/slots", token, nil, req, nil)
}

// DeleteSlot removes one slot.
func (c *Client) DeleteSlot(ctx context.Context, token, slotID string) error {
	return c.do(ctx, http.MethodDelete, "/doctor/slots/"+slotID, token, nil, nil, nil)
}

// DeleteSlotsByDate removes all of a day's slots.
func (c *Client) DeleteSlotsByDate(ctx context.Context, token, date string) error {
	return c.do(ctx, http.MethodDelete, "/doctor/slots/by-date/"+date, token, nil, nil, nil)
}

// DuplicateDay copies one day's slots to another day.
func (c *Client) DuplicateDay(ctx context.Context, token, sourceDate, targetDate string) error {
	body := map[string]string{
		"sourceDate": sourceDate,
		"targetDate": targetDate,
	}
	return c.do(ctx, http.MethodPost, "/doctor/slots/duplicate-day", token, nil, body, nil)
}

// DuplicateWeek copies a Monday-start week's slots to another Monday-start week.
func (c *Client) DuplicateWeek(ctx context.Context, token, sourceWeekStart, targetWeekStart string) error {
	body := map[string]string{
		"sourceWeekStart": sourceWeekStart,
		"targetWeekStart": targetWeekStart,
	}
	return c.do(ctx, http.MethodPost, "/doctor/slots/duplicate-week", token, nil, body, nil)
}
