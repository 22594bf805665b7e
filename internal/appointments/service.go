// Package appointments is the appointment room: the tabbed listing plus the
// per-appointment actions (cancel, reschedule, documents, doctor notes, join).
// Every mutation is a discrete backend request followed by a wholesale list
// refetch; nothing is patched optimistically.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ubietysphere/sphere-web/internal/policy"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// ErrRescheduleBlocked means the appointment starts too soon to reschedule;
// the user must cancel instead. The backend remains the final authority if a
// stale client bypasses this check.
var ErrRescheduleBlocked = errors.New("appointments: too close to start to reschedule, cancel instead")

// ErrUnknownTab means the requested listing tab is not one of
// upcoming/completed/cancelled.
var ErrUnknownTab = errors.New("appointments: unknown tab")

// RoomAPI is the slice of the Sphere client the room needs.
type RoomAPI interface {
	ListAppointments(ctx context.Context, token string, status sphere.AppointmentStatus, page, size int) (*sphere.AppointmentPage, error)
	CancelAppointment(ctx context.Context, token, appointmentID, reason string) (*sphere.CancelResult, error)
	RescheduleAppointment(ctx context.Context, token string, req sphere.RescheduleRequest) (*sphere.RescheduleResult, error)
	ReplaceReports(ctx context.Context, token, appointmentID string, reportIDs []string) error
	SaveDoctorNotes(ctx context.Context, token, appointmentID, doctorNotes, patientNotes string) error
	AvailableSlots(ctx context.Context, token, doctorID, serviceSlug string) (map[string][]sphere.Slot, error)
	FilterAdminPayments(ctx context.Context, token string, f sphere.AdminPaymentFilter) (*sphere.AppointmentPage, error)
}

// Service orchestrates the appointment room.
type Service struct {
	api    RoomAPI
	logger *logging.Logger
	tracer trace.Tracer
	nowFn  func() time.Time
}

// NewService constructs the appointment room service.
func NewService(api RoomAPI, logger *logging.Logger) *Service {
	if api == nil {
		panic("appointments: api required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		api:    api,
		logger: logger,
		tracer: otel.Tracer("sphereweb.internal.appointments"),
		nowFn:  time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.nowFn = now
	return s
}

// TabStatus maps a room tab to the backend's status filter.
func TabStatus(tab string) (sphere.AppointmentStatus, error) {
	switch tab {
	case "upcoming":
		return sphere.AppointmentConfirmed, nil
	case "completed":
		return sphere.AppointmentCompleted, nil
	case "cancelled":
		return sphere.AppointmentCancelled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, tab)
}

// Entry is one appointment decorated with the advisory previews the room
// renders next to it.
type Entry struct {
	sphere.Appointment
	RefundEstimate *policy.EstimatedRefund   `json:"refundEstimate,omitempty"`
	Reschedule     *policy.ReschedulePreview `json:"reschedule,omitempty"`
	Join           *policy.JoinWindow        `json:"join,omitempty"`
}

// Listing is one page of the room.
type Listing struct {
	Tab        string  `json:"tab"`
	Entries    []Entry `json:"entries"`
	Page       int     `json:"page"`
	Size       int     `json:"size"`
	TotalPages int     `json:"totalPages"`
}

// List fetches one page of a tab and decorates upcoming appointments with the
// cancel/reschedule/join previews.
func (s *Service) List(ctx context.Context, token, tab string, page, size int) (*Listing, error) {
	status, err := TabStatus(tab)
	if err != nil {
		return nil, err
	}
	res, err := s.api.ListAppointments(ctx, token, status, page, size)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	entries := make([]Entry, 0, len(res.Appointments))
	for _, appt := range res.Appointments {
		e := Entry{Appointment: appt}
		if status == sphere.AppointmentConfirmed {
			s.decorate(&e, now)
		}
		entries = append(entries, e)
	}
	return &Listing{
		Tab:        tab,
		Entries:    entries,
		Page:       res.Page,
		Size:       res.Size,
		TotalPages: res.TotalPages,
	}, nil
}

// decorate computes the advisory previews for an upcoming appointment. A
// record with an unparseable schedule is shown undecorated rather than
// dropped.
func (s *Service) decorate(e *Entry, now time.Time) {
	start, err := policy.StartInstant(e.AppointmentDate, e.StartTime, time.UTC)
	if err != nil {
		s.logger.Warn("unparseable appointment schedule",
			"appointment_id", e.ID,
			"date", e.AppointmentDate,
			"start", e.StartTime,
		)
		return
	}
	refund := policy.CancellationRefund(now, start, e.Amount)
	resched := policy.Reschedule(now, start)
	e.RefundEstimate = &refund
	e.Reschedule = &resched

	end := start.Add(time.Duration(e.Duration) * time.Minute)
	join := policy.MeetingJoinable(now, start, end, e.Status == sphere.AppointmentConfirmed, e.GoogleMeetLink)
	e.Join = &join
}

// CancelOutcome is what the room shows after a cancellation: the backend's
// actual refund when it issued one, nil otherwise.
type CancelOutcome struct {
	Refund *sphere.ActualRefund `json:"refund,omitempty"`
}

// Cancel cancels the appointment. The local estimate shown in the dialog is
// discarded here: only the backend's response is reported.
func (s *Service) Cancel(ctx context.Context, token, appointmentID, reason string) (*CancelOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("sphere.appointment_id", appointmentID))

	res, err := s.api.CancelAppointment(ctx, token, appointmentID, reason)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	outcome := &CancelOutcome{Refund: res.Refund()}
	if outcome.Refund != nil {
		s.logger.Info("appointment cancelled with refund",
			"appointment_id", appointmentID,
			"refund_percentage", outcome.Refund.RefundPercentage,
		)
	}
	return outcome, nil
}

// RescheduleOutcome reports the backend's answer to a reschedule. A required
// penalty payment has no capture flow here; the room only notifies.
type RescheduleOutcome struct {
	PenaltyRequired bool    `json:"penaltyRequired"`
	PenaltyAmount   float64 `json:"penaltyAmount,omitempty"`
}

// Reschedule moves the appointment to a new slot, first enforcing the
// time-window gate locally.
func (s *Service) Reschedule(ctx context.Context, token, appointmentID, appointmentDate, startTime, newSlotID, reason string) (*RescheduleOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "appointments.reschedule")
	defer span.End()
	span.SetAttributes(attribute.String("sphere.appointment_id", appointmentID))

	start, err := policy.StartInstant(appointmentDate, startTime, time.UTC)
	if err != nil {
		return nil, err
	}
	if !policy.Reschedule(s.nowFn(), start).Allowed {
		return nil, ErrRescheduleBlocked
	}

	res, err := s.api.RescheduleAppointment(ctx, token, sphere.RescheduleRequest{
		AppointmentID: appointmentID,
		NewSlotID:     newSlotID,
		Reason:        reason,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	outcome := &RescheduleOutcome{}
	if res.PenaltyPayment != nil && res.PenaltyPayment.Required {
		outcome.PenaltyRequired = true
		outcome.PenaltyAmount = res.PenaltyPayment.Amount
	}
	return outcome, nil
}

// RescheduleSlots fetches the same-service open slots for the reschedule
// picker.
func (s *Service) RescheduleSlots(ctx context.Context, token, doctorID, serviceSlug string) (map[string][]sphere.Slot, error) {
	return s.api.AvailableSlots(ctx, token, doctorID, serviceSlug)
}

// AttachReports submits the full desired set of attached report ids.
func (s *Service) AttachReports(ctx context.Context, token, appointmentID string, reportIDs []string) error {
	return s.api.ReplaceReports(ctx, token, appointmentID, reportIDs)
}

// SaveDoctorNotes saves the doctor's notes, carrying the patient notes along
// unchanged.
func (s *Service) SaveDoctorNotes(ctx context.Context, token, appointmentID, doctorNotes, patientNotes string) error {
	return s.api.SaveDoctorNotes(ctx, token, appointmentID, doctorNotes, patientNotes)
}

// AdminPayments runs the admin payments filter.
func (s *Service) AdminPayments(ctx context.Context, token string, f sphere.AdminPaymentFilter) (*sphere.AppointmentPage, error) {
	return s.api.FilterAdminPayments(ctx, token, f)
}
