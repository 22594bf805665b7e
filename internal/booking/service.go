package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ubietysphere/sphere-web/internal/observability/metrics"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// ErrInvalidTransition means the requested step doesn't follow from the flow's
// current state.
var ErrInvalidTransition = errors.New("booking: invalid state transition")

// ValidationError reports missing or malformed user input, rendered inline on
// the form rather than as a toast.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: %s: %s", e.Field, e.Msg)
}

// BookingAPI is the slice of the Sphere client the flow needs.
type BookingAPI interface {
	AvailableSlots(ctx context.Context, token, doctorID, serviceSlug string) (map[string][]sphere.Slot, error)
	CreateAppointment(ctx context.Context, token string, req sphere.CreateAppointmentRequest) (*sphere.Appointment, error)
	CreatePaymentIntent(ctx context.Context, token, appointmentID string) (*sphere.PaymentIntent, error)
	CancelAppointment(ctx context.Context, token, appointmentID, reason string) (*sphere.CancelResult, error)
}

// Service runs the booking flow state machine.
type Service struct {
	api     BookingAPI
	flows   *FlowStore
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

// NewService constructs the booking flow service.
func NewService(api BookingAPI, flows *FlowStore, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if api == nil {
		panic("booking: api required")
	}
	if flows == nil {
		panic("booking: flow store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		api:     api,
		flows:   flows,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("sphereweb.internal.booking"),
	}
}

// Current returns the session's flow, creating a fresh select-step flow if
// none exists.
func (s *Service) Current(ctx context.Context, sessionID string) (*Flow, error) {
	return s.flows.Load(ctx, sessionID)
}

// Selection is the slot and contact details chosen on the select step.
type Selection struct {
	DoctorID     string
	ServiceSlug  string
	SlotID       string
	SlotDate     string
	SlotStart    string
	SlotEnd      string
	ContactName  string
	ContactEmail string
	PatientNotes string
}

// Select records the chosen slot and contact fields. Only valid on the select
// step; everything is revalidated at BeginPayment.
func (s *Service) Select(ctx context.Context, sessionID string, sel Selection) (*Flow, error) {
	f, err := s.flows.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if f.State != StateSelect {
		return nil, fmt.Errorf("%w: select while %s", ErrInvalidTransition, f.State)
	}
	f.DoctorID = sel.DoctorID
	f.ServiceSlug = sel.ServiceSlug
	f.SlotID = sel.SlotID
	f.SlotDate = sel.SlotDate
	f.SlotStart = sel.SlotStart
	f.SlotEnd = sel.SlotEnd
	f.ContactName = sel.ContactName
	f.ContactEmail = sel.ContactEmail
	f.PatientNotes = sel.PatientNotes
	if err := s.flows.Save(ctx, sessionID, f); err != nil {
		return nil, err
	}
	return f, nil
}

// BeginPayment moves select → payment: create the appointment against the
// chosen slot, then open a payment intent for it. If the intent fails, the
// just-created appointment is auto-cancelled so no unpaid orphan dangles, and
// the flow stays at select.
func (s *Service) BeginPayment(ctx context.Context, sessionID, token string) (*Flow, error) {
	ctx, span := s.tracer.Start(ctx, "booking.begin_payment")
	defer span.End()

	f, err := s.flows.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if f.State != StateSelect {
		return nil, fmt.Errorf("%w: begin payment while %s", ErrInvalidTransition, f.State)
	}
	if err := validateSelection(f); err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, &ValidationError{Field: "session", Msg: "sign in to book an appointment"}
	}

	// A flow that came back from the payment step still owns its unpaid
	// appointment; reuse it instead of booking the slot twice.
	if f.AppointmentID == "" {
		appt, err := s.api.CreateAppointment(ctx, token, sphere.CreateAppointmentRequest{
			DoctorSlotID: f.SlotID,
			PatientNotes: f.PatientNotes,
		})
		if err != nil {
			span.RecordError(err)
			s.metrics.ObserveFlowFailure("create_appointment")
			return nil, fmt.Errorf("booking: create appointment: %w", err)
		}
		f.AppointmentID = appt.ID
		if err := s.flows.Save(ctx, sessionID, f); err != nil {
			return nil, err
		}
	}
	span.SetAttributes(attribute.String("sphere.appointment_id", f.AppointmentID))

	intent, err := s.api.CreatePaymentIntent(ctx, token, f.AppointmentID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveFlowFailure("payment_intent")
		s.compensate(ctx, token, f, sessionID)
		return nil, fmt.Errorf("booking: create payment intent: %w", err)
	}

	f.ClientSecret = intent.ClientSecret
	f.Price = intent.Price
	f.Currency = intent.Currency
	f.State = StatePayment
	if err := s.flows.Save(ctx, sessionID, f); err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition(string(StateSelect), string(StatePayment))
	s.logger.Info("booking entered payment",
		"appointment_id", f.AppointmentID,
		"service", f.ServiceSlug,
	)
	return f, nil
}

// compensate cancels the appointment orphaned by a failed payment intent.
// Best effort: on error the orphan is left for the backend's own expiry,
// which is no worse than not compensating at all.
func (s *Service) compensate(ctx context.Context, token string, f *Flow, sessionID string) {
	if _, err := s.api.CancelAppointment(ctx, token, f.AppointmentID, "payment setup failed"); err != nil {
		s.logger.Error("failed to cancel orphaned appointment",
			"appointment_id", f.AppointmentID,
			"error", err,
		)
		return
	}
	s.metrics.ObserveCompensation()
	f.AppointmentID = ""
	if err := s.flows.Save(ctx, sessionID, f); err != nil {
		s.logger.Error("failed to save flow after compensation", "error", err)
	}
}

// ConfirmPayment moves payment → success. Only the payment widget's explicit
// success callback reaches here; a failed or abandoned payment leaves the
// flow at the payment step.
func (s *Service) ConfirmPayment(ctx context.Context, sessionID, paymentIntentID string) (*Flow, error) {
	f, err := s.flows.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if f.State != StatePayment {
		return nil, fmt.Errorf("%w: confirm while %s", ErrInvalidTransition, f.State)
	}
	if strings.TrimSpace(paymentIntentID) == "" {
		return nil, &ValidationError{Field: "paymentIntentId", Msg: "missing payment confirmation"}
	}
	f.State = StateSuccess
	if err := s.flows.Save(ctx, sessionID, f); err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition(string(StatePayment), string(StateSuccess))
	s.logger.Info("booking confirmed", "appointment_id", f.AppointmentID)
	return f, nil
}

// FailPayment records a widget payment failure. The state stays at payment;
// there is no automatic retry.
func (s *Service) FailPayment(ctx context.Context, sessionID, reason string) (*Flow, error) {
	f, err := s.flows.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if f.State != StatePayment {
		return nil, fmt.Errorf("%w: fail payment while %s", ErrInvalidTransition, f.State)
	}
	s.metrics.ObserveFlowFailure("payment")
	s.logger.Warn("payment failed", "appointment_id", f.AppointmentID, "reason", reason)
	return f, nil
}

// Back returns payment → select. The unpaid appointment is kept on the flow
// for reuse; the stale client secret is dropped and re-requested on the next
// BeginPayment.
func (s *Service) Back(ctx context.Context, sessionID string) (*Flow, error) {
	f, err := s.flows.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if f.State != StatePayment {
		return nil, fmt.Errorf("%w: back while %s", ErrInvalidTransition, f.State)
	}
	f.State = StateSelect
	f.ClientSecret = ""
	if err := s.flows.Save(ctx, sessionID, f); err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition(string(StatePayment), string(StateSelect))
	return f, nil
}

// Reset clears the flow entirely, e.g. after the success page or on logout.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	return s.flows.Clear(ctx, sessionID)
}

// Slots proxies the doctor's open slots for the select step.
func (s *Service) Slots(ctx context.Context, token, doctorID, serviceSlug string) (map[string][]sphere.Slot, error) {
	if doctorID == "" || serviceSlug == "" {
		return nil, &ValidationError{Field: "doctorId", Msg: "doctor and service are required"}
	}
	return s.api.AvailableSlots(ctx, token, doctorID, serviceSlug)
}

func validateSelection(f *Flow) error {
	switch {
	case f.SlotID == "":
		return &ValidationError{Field: "slotId", Msg: "select a time slot"}
	case strings.TrimSpace(f.ContactName) == "":
		return &ValidationError{Field: "contactName", Msg: "name is required"}
	case strings.TrimSpace(f.ContactEmail) == "":
		return &ValidationError{Field: "contactEmail", Msg: "email is required"}
	}
	return nil
}
