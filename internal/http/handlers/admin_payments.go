package handlers

import (
	"net/http"
	"strconv"

	"github.com/ubietysphere/sphere-web/internal/appointments"
	"github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// AdminPaymentsHandler exposes the admin payment browser.
type AdminPaymentsHandler struct {
	svc    *appointments.Service
	logger *logging.Logger
}

// NewAdminPaymentsHandler creates the admin payments handler.
func NewAdminPaymentsHandler(svc *appointments.Service, logger *logging.Logger) *AdminPaymentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminPaymentsHandler{svc: svc, logger: logger}
}

// Filter lists appointments matching payment criteria.
// GET /api/admin/payments?status=PAID&doctorId=...&service=...&month=6&year=2025&page=0&size=20
func (h *AdminPaymentsHandler) Filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, _ := strconv.Atoi(q.Get("month"))
	year, _ := strconv.Atoi(q.Get("year"))
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	p, _ := middleware.PrincipalFromContext(r.Context())
	result, err := h.svc.AdminPayments(r.Context(), p.AccessToken, sphere.AdminPaymentFilter{
		PaymentStatus: sphere.PaymentStatus(q.Get("status")),
		DoctorID:      q.Get("doctorId"),
		ServiceSlug:   q.Get("service"),
		Month:         month,
		Year:          year,
		Page:          page,
		Size:          size,
	})
	if err != nil {
		if sphere.IsUnauthorized(err) {
			jsonError(w, "session expired, sign in again", http.StatusUnauthorized)
			return
		}
		h.logger.Error("admin payment filter failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
