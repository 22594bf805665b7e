package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ubietysphere/sphere-web/internal/appointments"
	"github.com/ubietysphere/sphere-web/internal/booking"
	"github.com/ubietysphere/sphere-web/internal/documents"
	"github.com/ubietysphere/sphere-web/internal/http/handlers"
	httpmiddleware "github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/internal/notify"
	"github.com/ubietysphere/sphere-web/internal/session"
	"github.com/ubietysphere/sphere-web/internal/slots"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

func backendToken(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": role,
		"exp":  time.Now().Add(2 * time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

// fakeBackend stands in for the Sphere API.
func fakeBackend(t *testing.T, role string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"bad credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(sphere.LoginResult{
			ID: "u1", Name: "Jo March", Email: body["email"], Role: role,
			Token: backendToken(t, role),
		})
	})
	mux.HandleFunc("GET /doctor/slots/available", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]sphere.Slot{
			"2025-07-01": {{ID: "s1", StartTime: "09:00", EndTime: "09:30", Duration: 30, Status: sphere.SlotAvailable}},
		})
	})
	mux.HandleFunc("POST /appointments", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sphere.Appointment{ID: "a1", AppointmentDate: "2025-07-01", StartTime: "09:00"})
	})
	mux.HandleFunc("POST /appointments/a1/payment", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sphere.PaymentIntent{ClientSecret: "cs_123", Price: 90, Currency: "usd"})
	})
	mux.HandleFunc("GET /doctor/slots", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]sphere.Slot{
			"2025-07-01": {{ID: "s1", StartTime: "09:00", EndTime: "09:30", Status: sphere.SlotAvailable}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// mailSender captures outgoing email instead of hitting SendGrid.
type mailSender struct {
	sent []notify.EmailMessage
}

func (m *mailSender) Send(_ context.Context, msg notify.EmailMessage) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newTestRouter(t *testing.T, role string) http.Handler {
	h, _ := newTestRouterWithMail(t, role)
	return h
}

func newTestRouterWithMail(t *testing.T, role string) (http.Handler, *mailSender) {
	t.Helper()
	backend := fakeBackend(t, role)
	logger := logging.New("error")

	client, err := sphere.New(backend.URL, 5*time.Second, logger)
	require.NoError(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sessions := session.NewStore(rdb, "sphere_session", time.Hour, false, logger)
	flows := booking.NewFlowStore(rdb, time.Hour, logger)
	bookingSvc := booking.NewService(client, flows, nil, logger)
	apptSvc := appointments.NewService(client, logger)
	library := documents.NewLibrary(client, logger)
	authoring := slots.NewAuthoring(client, slots.DefaultCatalog(), logger)
	sender := &mailSender{}
	notifier := notify.NewService(sender, logger)

	return New(&Config{
		Logger:        logger,
		Auth:          handlers.NewAuthHandler(client, sessions, nil, logger),
		Pages:         handlers.NewPagesHandler(),
		Booking:       handlers.NewBookingHandler(bookingSvc, notifier, "pk_test_123", logger),
		Appointments:  handlers.NewAppointmentsHandler(apptSvc, notifier, logger),
		Documents:     handlers.NewDocumentsHandler(library, logger),
		SlotAuthoring: handlers.NewSlotAuthoringHandler(authoring, logger),
		AdminPayments: handlers.NewAdminPaymentsHandler(apptSvc, logger),
		SessionAuth:   httpmiddleware.NewSessionAuth(sessions, nil, logger),
	}), sender
}

func signIn(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"jo@example.com","password":"correct"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == "sphere_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestHealthIsPublic(t *testing.T) {
	h := newTestRouter(t, "Patient")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newTestRouter(t, "Patient")
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"jo@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnauthenticatedAPIGets401(t *testing.T) {
	h := newTestRouter(t, "Patient")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appointments/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnauthenticatedPageRedirects(t *testing.T) {
	h := newTestRouter(t, "Patient")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?expired=1", rec.Header().Get("Location"))
}

func TestBookingFlowThroughRouter(t *testing.T) {
	h, mail := newTestRouterWithMail(t, "Patient")
	cookie := signIn(t, h)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/api/booking/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"select"`)

	rec = do(http.MethodPost, "/api/booking/select", `{
		"doctorId":"d1","serviceSlug":"general-consultation","slotId":"s1",
		"slotDate":"2025-07-01","slotStart":"09:00","slotEnd":"09:30",
		"contactName":"Jo March","contactEmail":"jo@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(http.MethodPost, "/api/booking/payment", "{}")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"state":"payment"`)
	assert.Contains(t, rec.Body.String(), "cs_123")
	assert.Contains(t, rec.Body.String(), "pk_test_123")

	rec = do(http.MethodPost, "/api/booking/confirm", `{"paymentIntentId":"pi_1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"state":"success"`)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "jo@example.com", mail.sent[0].To)
	assert.Contains(t, mail.sent[0].Body, "Time: 09:00 - 09:30")
}

func TestDoctorRoutesForbiddenForPatients(t *testing.T) {
	h := newTestRouter(t, "Patient")
	cookie := signIn(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/doctor/slots/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDoctorCanReadCalendar(t *testing.T) {
	h := newTestRouter(t, "Doctor")
	cookie := signIn(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/doctor/slots/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "2025-07-01")
}

func TestAdminPaymentsForbiddenForPatients(t *testing.T) {
	h := newTestRouter(t, "Patient")
	cookie := signIn(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/payments", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
