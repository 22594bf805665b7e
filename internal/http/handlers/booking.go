package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ubietysphere/sphere-web/internal/booking"
	"github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/internal/notify"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// BookingHandler exposes the three-step booking flow over HTTP. Each endpoint
// operates on the flow keyed by the caller's session.
type BookingHandler struct {
	svc       *booking.Service
	notifier  *notify.Service
	stripeKey string
	logger    *logging.Logger
}

// NewBookingHandler creates the booking flow handler. notifier may be nil.
func NewBookingHandler(svc *booking.Service, notifier *notify.Service, stripePublishableKey string, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{svc: svc, notifier: notifier, stripeKey: stripePublishableKey, logger: logger}
}

type flowResponse struct {
	*booking.Flow
	StripePublishableKey string `json:"stripePublishableKey,omitempty"`
}

func (h *BookingHandler) flowJSON(w http.ResponseWriter, f *booking.Flow) {
	resp := flowResponse{Flow: f}
	if f.State == booking.StatePayment {
		resp.StripePublishableKey = h.stripeKey
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) fail(w http.ResponseWriter, err error) {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Msg, "field": verr.Field})
	case errors.Is(err, booking.ErrInvalidTransition):
		jsonError(w, err.Error(), http.StatusConflict)
	case sphere.IsUnauthorized(err):
		jsonError(w, "session expired, sign in again", http.StatusUnauthorized)
	default:
		h.logger.Error("booking flow error", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// GetFlow returns the caller's current flow, creating a fresh one if absent.
// GET /api/booking
func (h *BookingHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionIDFromContext(r.Context())
	f, err := h.svc.Current(r.Context(), sessionID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.flowJSON(w, f)
}

// Slots lists a doctor's open slots grouped by date.
// GET /api/booking/slots?doctorId=...&service=...
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	doctorID := r.URL.Query().Get("doctorId")
	if doctorID == "" {
		jsonError(w, "doctorId is required", http.StatusBadRequest)
		return
	}
	grouped, err := h.svc.Slots(r.Context(), p.AccessToken, doctorID, r.URL.Query().Get("service"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": grouped})
}

type selectRequest struct {
	DoctorID     string `json:"doctorId"`
	ServiceSlug  string `json:"serviceSlug"`
	SlotID       string `json:"slotId"`
	SlotDate     string `json:"slotDate"`
	SlotStart    string `json:"slotStart"`
	SlotEnd      string `json:"slotEnd"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	PatientNotes string `json:"patientNotes"`
}

// Select records the chosen slot and contact details.
// POST /api/booking/select
func (h *BookingHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sessionID, _ := middleware.SessionIDFromContext(r.Context())
	f, err := h.svc.Select(r.Context(), sessionID, booking.Selection{
		DoctorID:     req.DoctorID,
		ServiceSlug:  req.ServiceSlug,
		SlotID:       req.SlotID,
		SlotDate:     req.SlotDate,
		SlotStart:    req.SlotStart,
		SlotEnd:      req.SlotEnd,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		PatientNotes: req.PatientNotes,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.flowJSON(w, f)
}

// BeginPayment creates the appointment and opens a payment intent.
// POST /api/booking/payment
func (h *BookingHandler) BeginPayment(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	sessionID, _ := middleware.SessionIDFromContext(r.Context())
	f, err := h.svc.BeginPayment(r.Context(), sessionID, p.AccessToken)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.flowJSON(w, f)
}

type confirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// ConfirmPayment moves the flow to success after Stripe reports the intent
// succeeded, then emails the confirmation.
// POST /api/booking/confirm
func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sessionID, _ := middleware.SessionIDFromContext(r.Context())
	f, err := h.svc.ConfirmPayment(r.Context(), sessionID, req.PaymentIntentID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.sendConfirmationEmail(r.Context(), f)
	h.flowJSON(w, f)
}

func (h *BookingHandler) sendConfirmationEmail(ctx context.Context, f *booking.Flow) {
	if h.notifier == nil || f.ContactEmail == "" {
		return
	}
	err := h.notifier.SendBookingConfirmation(ctx, notify.BookingConfirmation{
		PatientEmail: f.ContactEmail,
		PatientName:  f.ContactName,
		DoctorName:   f.DoctorID,
		ServiceName:  f.ServiceSlug,
		Date:         f.SlotDate,
		StartTime:    f.SlotStart,
		EndTime:      f.SlotEnd,
		Amount:       f.Price,
		Currency:     f.Currency,
	})
	if err != nil {
		h.logger.Error("confirmation email failed", "appointment_id", f.AppointmentID, "error", err)
	}
}

type failRequest struct {
	Reason string `json:"reason"`
}

// FailPayment records a declined payment. The flow stays on the payment step
// so the user can retry.
// POST /api/booking/fail
func (h *BookingHandler) FailPayment(w http.ResponseWriter, r *http.Request) {
	var req failRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sessionID, _ := middleware.SessionIDFromContext(r.Context())
	f, err := h.svc.FailPayment(r.Context(), sessionID, req.Reason)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.flowJSON(w, f)
}

// Back returns from payment to select, keeping the unpaid appointment for
// reuse if the user resumes.
// POST /api/booking/back
func (h *BookingHandler) Back(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionIDFromContext(r.Context())
	f, err := h.svc.Back(r.Context(), sessionID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.flowJSON(w, f)
}

// Reset abandons the flow entirely.
// DELETE /api/booking
func (h *BookingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionIDFromContext(r.Context())
	if err := h.svc.Reset(r.Context(), sessionID); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
