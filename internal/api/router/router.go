package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ubietysphere/sphere-web/internal/http/handlers"
	httpmiddleware "github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	Auth          *handlers.AuthHandler
	Pages         *handlers.PagesHandler
	Booking       *handlers.BookingHandler
	Appointments  *handlers.AppointmentsHandler
	Documents     *handlers.DocumentsHandler
	SlotAuthoring *handlers.SlotAuthoringHandler
	AdminPayments *handlers.AdminPaymentsHandler

	SessionAuth *httpmiddleware.SessionAuth

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests per second allowed on the login endpoint, per IP.
	LoginRateLimit float64
	LoginBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	loginRate := cfg.LoginRateLimit
	if loginRate <= 0 {
		loginRate = 1
	}
	loginBurst := cfg.LoginBurst
	if loginBurst <= 0 {
		loginBurst = 5
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Pages != nil {
			public.Get("/login", cfg.Pages.Login)
		}
		if cfg.Auth != nil {
			public.With(httpmiddleware.RateLimit(loginRate, loginBurst)).Post("/api/login", cfg.Auth.Login)
			public.Post("/api/logout", cfg.Auth.Logout)
		}
	})

	// Signed-in endpoints
	r.Group(func(private chi.Router) {
		private.Use(cfg.SessionAuth.Require)
		private.Use(cfg.SessionAuth.ForceLogoutOn401)

		if cfg.Pages != nil {
			private.Get("/book", cfg.Pages.Booking)
			private.Get("/appointments", cfg.Pages.Appointments)
		}
		if cfg.Auth != nil {
			private.Get("/api/me", cfg.Auth.Me)
		}

		if cfg.Booking != nil {
			private.Route("/api/booking", func(b chi.Router) {
				b.Get("/", cfg.Booking.GetFlow)
				b.Delete("/", cfg.Booking.Reset)
				b.Get("/slots", cfg.Booking.Slots)
				b.Post("/select", cfg.Booking.Select)
				b.Post("/payment", cfg.Booking.BeginPayment)
				b.Post("/confirm", cfg.Booking.ConfirmPayment)
				b.Post("/fail", cfg.Booking.FailPayment)
				b.Post("/back", cfg.Booking.Back)
			})
		}

		if cfg.Appointments != nil {
			private.Route("/api/appointments", func(a chi.Router) {
				a.Get("/", cfg.Appointments.List)
				a.Get("/reschedule-slots", cfg.Appointments.RescheduleSlots)
				a.Route("/{appointmentID}", func(one chi.Router) {
					one.Post("/cancel", cfg.Appointments.Cancel)
					one.Post("/reschedule", cfg.Appointments.Reschedule)
					one.Put("/reports", cfg.Appointments.AttachReports)
					one.With(httpmiddleware.RequireDoctor).Put("/notes", cfg.Appointments.SaveNotes)
				})
			})
		}

		if cfg.Documents != nil {
			private.Get("/documents/preview", cfg.Documents.Preview)
			private.Route("/api/documents", func(d chi.Router) {
				d.Get("/", cfg.Documents.List)
				d.Post("/", cfg.Documents.Upload)
				d.Route("/{reportID}", func(one chi.Router) {
					one.Post("/share", cfg.Documents.Share)
					one.Delete("/", cfg.Documents.Delete)
				})
			})
		}

		// Doctor-only slot authoring
		if cfg.SlotAuthoring != nil {
			private.Route("/doctor", func(doc chi.Router) {
				doc.Use(httpmiddleware.RequireDoctor)
				if cfg.Pages != nil {
					doc.Get("/slots", cfg.Pages.DoctorSlots)
				}
			})
			private.Route("/api/doctor/slots", func(s chi.Router) {
				s.Use(httpmiddleware.RequireDoctor)
				s.Get("/", cfg.SlotAuthoring.Calendar)
				s.Post("/", cfg.SlotAuthoring.Create)
				s.Delete("/{slotID}", cfg.SlotAuthoring.Delete)
				s.Delete("/day/{date}", cfg.SlotAuthoring.DeleteDay)
				s.Post("/duplicate-day", cfg.SlotAuthoring.DuplicateDay)
				s.Post("/duplicate-week", cfg.SlotAuthoring.DuplicateWeek)
			})
		}

		// Admin-only payment browser
		if cfg.AdminPayments != nil {
			private.With(httpmiddleware.RequireAdmin).Get("/api/admin/payments", cfg.AdminPayments.Filter)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
