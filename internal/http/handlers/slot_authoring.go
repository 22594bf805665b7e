package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/internal/slots"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// SlotAuthoringHandler exposes the doctor's availability calendar: listing,
// batch creation, deletion and day/week duplication.
type SlotAuthoringHandler struct {
	authoring *slots.Authoring
	logger    *logging.Logger
}

// NewSlotAuthoringHandler creates the slot authoring handler.
func NewSlotAuthoringHandler(authoring *slots.Authoring, logger *logging.Logger) *SlotAuthoringHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SlotAuthoringHandler{authoring: authoring, logger: logger}
}

func (h *SlotAuthoringHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case strings.HasPrefix(err.Error(), "slots: "):
		jsonError(w, strings.TrimPrefix(err.Error(), "slots: "), http.StatusBadRequest)
	case sphere.IsNotFound(err):
		jsonError(w, "slot not found", http.StatusNotFound)
	case sphere.IsUnauthorized(err):
		jsonError(w, "session expired, sign in again", http.StatusUnauthorized)
	default:
		h.logger.Error("slot authoring error", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// Calendar returns the doctor's slot days in a date range. Without query
// params the current Monday-start week is returned.
// GET /api/doctor/slots?start=2025-06-02&end=2025-06-08&size=200
func (h *SlotAuthoringHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size, _ := strconv.Atoi(q.Get("size"))

	p, _ := middleware.PrincipalFromContext(r.Context())
	days, err := h.authoring.Calendar(r.Context(), p.AccessToken, q.Get("start"), q.Get("end"), size)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

type createSlotsRequest struct {
	ServiceSlug string   `json:"serviceSlug"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Duration    int      `json:"duration"`
	Dates       []string `json:"dates"`
}

// Create generates slots for a time window across one or more dates.
// POST /api/doctor/slots
func (h *SlotAuthoringHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, _ := middleware.PrincipalFromContext(r.Context())
	preview, err := h.authoring.Create(r.Context(), p.AccessToken,
		req.ServiceSlug, req.StartTime, req.EndTime, req.Duration, req.Dates)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": preview})
}

// Delete removes a single open slot.
// DELETE /api/doctor/slots/{slotID}
func (h *SlotAuthoringHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := h.authoring.Delete(r.Context(), p.AccessToken, chi.URLParam(r, "slotID")); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DeleteDay removes all open slots on a date.
// DELETE /api/doctor/slots/day/{date}
func (h *SlotAuthoringHandler) DeleteDay(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := h.authoring.DeleteDay(r.Context(), p.AccessToken, chi.URLParam(r, "date")); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type duplicateDayRequest struct {
	SourceDate string `json:"sourceDate"`
	TargetDate string `json:"targetDate"`
}

// DuplicateDay copies a day's slot layout onto another date.
// POST /api/doctor/slots/duplicate-day
func (h *SlotAuthoringHandler) DuplicateDay(w http.ResponseWriter, r *http.Request) {
	var req duplicateDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := h.authoring.DuplicateDay(r.Context(), p.AccessToken, req.SourceDate, req.TargetDate); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "duplicated"})
}

type duplicateWeekRequest struct {
	SourceWeekStart string `json:"sourceWeekStart"`
	TargetWeekStart string `json:"targetWeekStart"`
}

// DuplicateWeek copies a whole week's slot layout onto another week. Both
// dates must be Mondays.
// POST /api/doctor/slots/duplicate-week
func (h *SlotAuthoringHandler) DuplicateWeek(w http.ResponseWriter, r *http.Request) {
	var req duplicateWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := h.authoring.DuplicateWeek(r.Context(), p.AccessToken, req.SourceWeekStart, req.TargetWeekStart); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "duplicated"})
}
