package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// Service sends patient-facing booking emails. All methods are no-ops when
// no sender is configured, so callers never need to branch on email being
// enabled.
type Service struct {
	sender EmailSender
	logger *logging.Logger
}

// NewService creates a notification service. sender may be nil.
func NewService(sender EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{sender: sender, logger: logger}
}

// BookingConfirmation is the data needed for the post-payment email.
type BookingConfirmation struct {
	PatientEmail string
	PatientName  string
	DoctorName   string
	ServiceName  string
	Date         string
	StartTime    string
	EndTime      string
	Amount       float64
	Currency     string
}

// SendBookingConfirmation emails the patient after a successful payment.
func (s *Service) SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	if s.sender == nil {
		s.logger.Debug("email disabled, skipping booking confirmation", "to", c.PatientEmail)
		return nil
	}
	if c.PatientEmail == "" {
		return fmt.Errorf("notify: booking confirmation requires a patient email")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", firstName(c.PatientName))
	fmt.Fprintf(&b, "Your appointment is confirmed.\n\n")
	fmt.Fprintf(&b, "Doctor: %s\n", c.DoctorName)
	if c.ServiceName != "" {
		fmt.Fprintf(&b, "Service: %s\n", c.ServiceName)
	}
	fmt.Fprintf(&b, "Date: %s\n", c.Date)
	fmt.Fprintf(&b, "Time: %s - %s\n", c.StartTime, c.EndTime)
	fmt.Fprintf(&b, "Paid: %s\n\n", formatAmount(c.Amount, c.Currency))
	fmt.Fprintf(&b, "The meeting link appears on your appointments page 15 minutes before the start time.\n")

	msg := EmailMessage{
		To:      c.PatientEmail,
		ToName:  c.PatientName,
		Subject: fmt.Sprintf("Appointment confirmed for %s", c.Date),
		Body:    b.String(),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}

// Cancellation is the data needed for the cancellation email. Refund carries
// the backend's actual figures, not a local estimate, and may be nil when the
// appointment was unpaid.
type Cancellation struct {
	PatientEmail string
	PatientName  string
	DoctorName   string
	Date         string
	StartTime    string
	Refund       *sphere.ActualRefund
}

// SendCancellation emails the patient after an appointment is cancelled.
func (s *Service) SendCancellation(ctx context.Context, c Cancellation) error {
	if s.sender == nil {
		s.logger.Debug("email disabled, skipping cancellation notice", "to", c.PatientEmail)
		return nil
	}
	if c.PatientEmail == "" {
		return fmt.Errorf("notify: cancellation notice requires a patient email")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", firstName(c.PatientName))
	fmt.Fprintf(&b, "Your appointment with %s on %s at %s has been cancelled.\n\n", c.DoctorName, c.Date, c.StartTime)
	switch {
	case c.Refund == nil:
		fmt.Fprintf(&b, "No payment was taken for this appointment, so there is nothing to refund.\n")
	case c.Refund.RefundAmount > 0:
		fmt.Fprintf(&b, "A refund of %s (%d%% of the amount paid) is on its way back to your original payment method.\n",
			formatAmount(c.Refund.RefundAmount, ""), c.Refund.RefundPercentage)
	default:
		fmt.Fprintf(&b, "Per the cancellation policy no refund applies to this cancellation.\n")
	}

	msg := EmailMessage{
		To:      c.PatientEmail,
		ToName:  c.PatientName,
		Subject: fmt.Sprintf("Appointment cancelled for %s", c.Date),
		Body:    b.String(),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: cancellation notice: %w", err)
	}
	return nil
}

func firstName(full string) string {
	full = strings.TrimSpace(full)
	if full == "" {
		return "there"
	}
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}

func formatAmount(amount float64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
}
