package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ubietysphere/sphere-web/internal/appointments"
	"github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/internal/notify"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// AppointmentsHandler exposes the appointment room: tabbed listings with
// policy decorations, cancel, reschedule, report attachment and doctor notes.
type AppointmentsHandler struct {
	svc      *appointments.Service
	notifier *notify.Service
	logger   *logging.Logger
}

// NewAppointmentsHandler creates the appointment room handler. notifier may
// be nil.
func NewAppointmentsHandler(svc *appointments.Service, notifier *notify.Service, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{svc: svc, notifier: notifier, logger: logger}
}

func (h *AppointmentsHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointments.ErrUnknownTab):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, appointments.ErrRescheduleBlocked):
		jsonError(w, "appointments starting within 4 hours cannot be rescheduled", http.StatusConflict)
	case sphere.IsNotFound(err):
		jsonError(w, "appointment not found", http.StatusNotFound)
	case sphere.IsUnauthorized(err):
		jsonError(w, "session expired, sign in again", http.StatusUnauthorized)
	default:
		h.logger.Error("appointment room error", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// List returns one tab of the caller's appointments.
// GET /api/appointments?tab=upcoming&page=0&size=10
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	q := r.URL.Query()

	tab := q.Get("tab")
	if tab == "" {
		tab = "upcoming"
	}
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	listing, err := h.svc.List(r.Context(), p.AccessToken, tab, page, size)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

type cancelRequest struct {
	Reason          string `json:"reason"`
	AppointmentDate string `json:"appointmentDate"`
	StartTime       string `json:"startTime"`
	DoctorName      string `json:"doctorName"`
}

// Cancel cancels an appointment and reports the backend's actual refund.
// POST /api/appointments/{appointmentID}/cancel
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, _ := middleware.PrincipalFromContext(r.Context())
	outcome, err := h.svc.Cancel(r.Context(), p.AccessToken, appointmentID, req.Reason)
	if err != nil {
		h.fail(w, err)
		return
	}

	if h.notifier != nil && p.Email != "" {
		err := h.notifier.SendCancellation(r.Context(), notify.Cancellation{
			PatientEmail: p.Email,
			PatientName:  p.Name,
			DoctorName:   req.DoctorName,
			Date:         req.AppointmentDate,
			StartTime:    req.StartTime,
			Refund:       outcome.Refund,
		})
		if err != nil {
			h.logger.Error("cancellation email failed", "appointment_id", appointmentID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, outcome)
}

type rescheduleRequest struct {
	AppointmentDate string `json:"appointmentDate"`
	StartTime       string `json:"startTime"`
	NewSlotID       string `json:"newSlotId"`
	Reason          string `json:"reason"`
}

// Reschedule moves an appointment to a new slot.
// POST /api/appointments/{appointmentID}/reschedule
func (h *AppointmentsHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewSlotID == "" {
		jsonError(w, "newSlotId is required", http.StatusBadRequest)
		return
	}

	p, _ := middleware.PrincipalFromContext(r.Context())
	outcome, err := h.svc.Reschedule(r.Context(), p.AccessToken, appointmentID,
		req.AppointmentDate, req.StartTime, req.NewSlotID, req.Reason)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// RescheduleSlots lists same-service open slots for the reschedule picker.
// GET /api/appointments/reschedule-slots?doctorId=...&service=...
func (h *AppointmentsHandler) RescheduleSlots(w http.ResponseWriter, r *http.Request) {
	doctorID := r.URL.Query().Get("doctorId")
	if doctorID == "" {
		jsonError(w, "doctorId is required", http.StatusBadRequest)
		return
	}
	p, _ := middleware.PrincipalFromContext(r.Context())
	grouped, err := h.svc.RescheduleSlots(r.Context(), p.AccessToken, doctorID, r.URL.Query().Get("service"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": grouped})
}

type attachReportsRequest struct {
	ReportIDs []string `json:"reportIds"`
}

// AttachReports replaces the set of reports attached to an appointment.
// PUT /api/appointments/{appointmentID}/reports
func (h *AppointmentsHandler) AttachReports(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	var req attachReportsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := h.svc.AttachReports(r.Context(), p.AccessToken, appointmentID, req.ReportIDs); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

type doctorNotesRequest struct {
	DoctorNotes  string `json:"doctorNotes"`
	PatientNotes string `json:"patientNotes"`
}

// SaveNotes saves the doctor's notes for an appointment.
// PUT /api/appointments/{appointmentID}/notes
func (h *AppointmentsHandler) SaveNotes(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	var req doctorNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := h.svc.SaveDoctorNotes(r.Context(), p.AccessToken, appointmentID, req.DoctorNotes, req.PatientNotes); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
