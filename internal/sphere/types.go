package sphere

// AppointmentStatus mirrors the backend's appointment lifecycle states.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// PaymentStatus mirrors the backend's payment states.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Slot statuses as the backend reports them.
const (
	SlotAvailable = "Available"
	SlotBooked    = "Booked"
)

// Party identifies a doctor or patient on an appointment.
type Party struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Appointment is the backend's appointment record. The gateway holds only a
// transient copy per fetch; status and paymentStatus are authoritative only as
// returned here and are never computed locally.
type Appointment struct {
	ID                 string            `json:"id"`
	Doctor             Party             `json:"doctor"`
	Patient            Party             `json:"patient"`
	PatientName        string            `json:"patientName,omitempty"`
	ServiceSlug        string            `json:"serviceSlug"`
	ServiceTitle       string            `json:"serviceTitle"`
	AppointmentDate    string            `json:"appointmentDate"` // 2006-01-02
	StartTime          string            `json:"startTime"`       // 15:04
	EndTime            string            `json:"endTime"`
	Duration           int               `json:"duration"` // minutes
	Status             AppointmentStatus `json:"status"`
	PaymentStatus      PaymentStatus     `json:"paymentStatus"`
	Amount             float64           `json:"amount"`
	Currency           string            `json:"currency"`
	PatientNotes       string            `json:"patientNotes,omitempty"`
	DoctorNotes        string            `json:"doctorNotes,omitempty"`
	CancellationReason string            `json:"cancellationReason,omitempty"`
	Reports            []Report          `json:"reports,omitempty"`
	GoogleMeetLink     string            `json:"googleMeetLink,omitempty"`
}

// Report is a document in the patient's library, attached to appointments by
// reference only.
type Report struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	FileName   string   `json:"fileName"`
	SharedWith []string `json:"sharedWith,omitempty"`
}

// Slot is a bookable time slot on a doctor's calendar.
type Slot struct {
	ID           string `json:"id"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Duration     int    `json:"duration"`
	ServiceSlug  string `json:"serviceSlug"`
	ServiceTitle string `json:"serviceTitle,omitempty"`
	Status       string `json:"status"`
}

// AppointmentPage is a server-paginated appointment listing.
type AppointmentPage struct {
	Appointments []Appointment `json:"appointments"`
	Page         int           `json:"page"`
	Size         int           `json:"size"`
	TotalPages   int           `json:"totalPages"`
}

// PaymentIntent is the backend-issued Stripe intent for an appointment.
type PaymentIntent struct {
	ClientSecret string  `json:"clientSecret"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
}

// ActualRefund is the refund the backend actually executed on cancellation.
// Distinct from policy.EstimatedRefund on purpose: the preview is advisory,
// this is authoritative.
type ActualRefund struct {
	RefundAmount     float64 `json:"refundAmount"`
	RefundPercentage int     `json:"refundPercentage"`
	StripeRefundID   string  `json:"stripeRefundId,omitempty"`
}

// CancelResult is the cancel endpoint's response. Refund fields are present
// only when the backend issued one.
type CancelResult struct {
	Status           AppointmentStatus `json:"status,omitempty"`
	RefundAmount     *float64          `json:"refundAmount,omitempty"`
	RefundPercentage *int              `json:"refundPercentage,omitempty"`
	StripeRefundID   string            `json:"stripeRefundId,omitempty"`
}

// Refund returns the authoritative refund, or nil when the response carried
// no refund fields.
func (r *CancelResult) Refund() *ActualRefund {
	if r == nil || r.RefundAmount == nil {
		return nil
	}
	ref := &ActualRefund{
		RefundAmount:   *r.RefundAmount,
		StripeRefundID: r.StripeRefundID,
	}
	if r.RefundPercentage != nil {
		ref.RefundPercentage = *r.RefundPercentage
	}
	return ref
}

// PenaltyPayment signals that the backend requires a penalty charge before
// completing a reschedule.
type PenaltyPayment struct {
	Required bool    `json:"required"`
	Amount   float64 `json:"amount,omitempty"`
}

// RescheduleResult is the reschedule endpoint's response.
type RescheduleResult struct {
	Appointment    *Appointment    `json:"appointment,omitempty"`
	PenaltyPayment *PenaltyPayment `json:"penaltyPayment,omitempty"`
}

// LoginResult is the credentials endpoint's response.
type LoginResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// CreateAppointmentRequest books a slot.
type CreateAppointmentRequest struct {
	DoctorSlotID string `json:"doctorSlotId"`
	PatientNotes string `json:"patientNotes,omitempty"`
}

// RescheduleRequest moves an appointment to a new slot.
type RescheduleRequest struct {
	AppointmentID string `json:"appointmentId"`
	NewSlotID     string `json:"newSlotId"`
	Reason        string `json:"reason,omitempty"`
}

// CreateSlotsRequest persists a generated slot block against one or more dates.
type CreateSlotsRequest struct {
	ServiceSlug string   `json:"serviceSlug"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Duration    int      `json:"duration"`
	Dates       []string `json:"dates"`
}

// AdminPaymentFilter narrows the admin payments listing.
type AdminPaymentFilter struct {
	PaymentStatus PaymentStatus
	DoctorID      string
	ServiceSlug   string
	Month         int
	Year          int
	Page          int
	Size          int
}
