package sphere

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// ListAppointments fetches one page of the caller's appointments for a status
// tab (CONFIRMED, COMPLETED, or CANCELLED).
func (c *Client) ListAppointments(ctx context.Context, token string, status AppointmentStatus, page, size int) (*AppointmentPage, error) {
	q := url.Values{}
	q.Set("status", string(status))
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out AppointmentPage
	if err := c.do(ctx, http.MethodGet, "/appointments", token, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAppointment books the given slot. The backend marks the slot Booked
// and returns the new appointment, unpaid.
func (c *Client) CreateAppointment(ctx context.Context, token string, req CreateAppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments", token, nil, req, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("sphere: create appointment response missing id")
	}
	return &out, nil
}

// CreatePaymentIntent asks the backend to open a Stripe payment intent for an
// unpaid appointment.
func (c *Client) CreatePaymentIntent(ctx context.Context, token, appointmentID string) (*PaymentIntent, error) {
	var out PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/appointments/"+appointmentID+"/payment", token, nil, nil, &out); err != nil {
		return nil, err
	}
	if out.ClientSecret == "" {
		return nil, fmt.Errorf("sphere: payment intent response missing client secret")
	}
	return &out, nil
}

// CancelAppointment cancels the appointment. The backend computes and executes
// the refund at request time; whatever it returns supersedes any local
// estimate. An idempotency key guards against duplicate refunds on retry.
func (c *Client) CancelAppointment(ctx context.Context, token, appointmentID, reason string) (*CancelResult, error) {
	body := map[string]string{
		"cancellationReason": reason,
		"idempotencyKey":     "cancel-" + appointmentID + "-" + uuid.NewString()[:8],
	}
	var out CancelResult
	if err := c.do(ctx, http.MethodPut, "/appointments/"+appointmentID+"/cancel", token, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RescheduleAppointment moves the appointment to a new slot. The response may
// flag a required penalty payment.
func (c *Client) RescheduleAppointment(ctx context.Context, token string, req RescheduleRequest) (*RescheduleResult, error) {
	var out RescheduleResult
	if err := c.do(ctx, http.MethodPut, "/appointments/"+req.AppointmentID+"/reschedule", token, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReplaceReports submits the full desired set of attached report ids. The
// endpoint replaces, it does not merge.
func (c *Client) ReplaceReports(ctx context.Context, token, appointmentID string, reportIDs []string) error {
	if reportIDs == nil {
		reportIDs = []string{}
	}
	body := map[string][]string{"reportIds": reportIDs}
	return c.do(ctx, http.MethodPatch, "/appointments/"+appointmentID+"/reports", token, nil, body, nil)
}

// SaveDoctorNotes updates the doctor's notes. The current patient notes ride
// along so the partial update cannot clobber them.
func (c *Client) SaveDoctorNotes(ctx context.Context, token, appointmentID, doctorNotes, patientNotes string) error {
	body := map[string]string{
		"doctorNotes":  doctorNotes,
		"patientNotes": patientNotes,
	}
	return c.do(ctx, http.MethodPatch, "/appointments/"+appointmentID+"/doctor-notes", token, nil, body, nil)
}

// FilterAdminPayments lists appointments by payment criteria for the admin
// payments dashboard.
func (c *Client) FilterAdminPayments(ctx context.Context, token string, f AdminPaymentFilter) (*AppointmentPage, error) {
	q := url.Values{}
	if f.PaymentStatus != "" {
		q.Set("paymentStatus", string(f.PaymentStatus))
	}
	if f.DoctorID != "" {
		q.Set("doctorId", f.DoctorID)
	}
	if f.ServiceSlug != "" {
		q.Set("serviceSlug", f.ServiceSlug)
	}
	if f.Month > 0 {
		q.Set("month", strconv.Itoa(f.Month))
	}
	if f.Year > 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("size", strconv.Itoa(f.Size))

	var out AppointmentPage
	if err := c.do(ctx, http.MethodGet, "/appointments/admin/filter", token, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
