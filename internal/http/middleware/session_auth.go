package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ubietysphere/sphere-web/internal/observability/metrics"
	"github.com/ubietysphere/sphere-web/internal/session"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	sessionIDKey contextKey = "sessionID"
)

// SessionAuth resolves the session cookie to a Principal and stores it on the
// request context. Requests without a live session get a 401 JSON body on API
// routes and a redirect to the login page everywhere else. Expired sessions
// are deleted from the store so the cookie cannot be replayed, and each forced
// sign-out is counted exactly once.
type SessionAuth struct {
	store   *session.Store
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
	nowFn   func() time.Time
}

// NewSessionAuth creates the session middleware. metrics may be nil.
func NewSessionAuth(store *session.Store, m *metrics.BookingMetrics, logger *logging.Logger) *SessionAuth {
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionAuth{store: store, metrics: m, logger: logger, nowFn: time.Now}
}

// Require is the middleware constructor for authenticated routes.
func (a *SessionAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := a.store.ReadCookie(r)
		if id == "" {
			// Anonymous visitor, nothing to sign out.
			a.reject(w, r, "")
			return
		}

		p, err := a.store.Get(r.Context(), id)
		if err != nil {
			if err != session.ErrNoSession {
				a.logger.Error("session lookup failed", "error", err)
			}
			a.reject(w, r, "missing")
			return
		}

		if p.Expired(a.nowFn()) {
			if err := a.store.Delete(r.Context(), id); err != nil {
				a.logger.Error("expired session cleanup failed", "error", err)
			}
			a.reject(w, r, "expired")
			return
		}

		ctx := WithPrincipal(r.Context(), p)
		ctx = context.WithValue(ctx, sessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reject denies the request. An empty reason means the caller never presented
// a cookie, so no sign-out is recorded.
func (a *SessionAuth) reject(w http.ResponseWriter, r *http.Request, reason string) {
	a.store.ClearCookie(w)
	if reason != "" {
		a.metrics.ObserveSignOut(reason)
	}

	if isAPIRequest(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"session expired, sign in again"}`))
		return
	}
	http.Redirect(w, r, "/login?expired=1", http.StatusSeeOther)
}

// ForceLogoutOn401 watches the response: when a downstream handler answers
// 401 (the backend rejected the stored token), the session is deleted and the
// cookie cleared in the same response, exactly once. Runs inside Require.
func (a *SessionAuth) ForceLogoutOn401(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lw := &logoutWriter{ResponseWriter: w, auth: a}
		next.ServeHTTP(lw, r)
		if lw.unauthorized {
			if id, ok := SessionIDFromContext(r.Context()); ok {
				if err := a.store.Delete(r.Context(), id); err != nil {
					a.logger.Error("force logout failed", "error", err)
				}
			}
			a.metrics.ObserveSignOut("backend_rejected")
		}
	})
}

type logoutWriter struct {
	http.ResponseWriter
	auth         *SessionAuth
	unauthorized bool
	wroteHeader  bool
}

func (w *logoutWriter) WriteHeader(code int) {
	if !w.wroteHeader && code == http.StatusUnauthorized {
		w.auth.store.ClearCookie(w.ResponseWriter)
		w.unauthorized = true
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// WithPrincipal stores the principal on the context.
func WithPrincipal(ctx context.Context, p *session.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*session.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*session.Principal)
	return p, ok
}

// SessionIDFromContext returns the current session id, if any.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

// RequireDoctor allows only doctor sessions through. Must run after Require.
func RequireDoctor(next http.Handler) http.Handler {
	return requireRole(next, func(p *session.Principal) bool { return p.IsDoctor() })
}

// RequireAdmin allows only admin sessions through. Must run after Require.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole(next, func(p *session.Principal) bool { return p.IsAdmin() })
}

func requireRole(next http.Handler, allowed func(*session.Principal) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok || !allowed(p) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"forbidden"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
