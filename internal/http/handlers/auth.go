package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/internal/observability/metrics"
	"github.com/ubietysphere/sphere-web/internal/session"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// LoginAPI is the slice of the backend client the auth handler needs.
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (*sphere.LoginResult, error)
}

// AuthHandler signs users in against the backend and manages the session
// cookie.
type AuthHandler struct {
	api      LoginAPI
	sessions *session.Store
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(api LoginAPI, sessions *session.Store, m *metrics.BookingMetrics, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{api: api, sessions: sessions, metrics: m, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Login authenticates against the backend and issues a session cookie. The
// backend token never reaches the browser.
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		jsonError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	res, err := h.api.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if sphere.IsUnauthorized(err) {
			jsonError(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		h.logger.Error("login failed", "email", req.Email, "error", err)
		jsonError(w, "login unavailable", http.StatusBadGateway)
		return
	}

	p := session.Principal{
		UserID:      res.ID,
		Name:        res.Name,
		Email:       res.Email,
		Role:        session.Role(res.Role),
		AccessToken: res.Token,
	}
	if exp, err := session.TokenExpiry(res.Token); err == nil {
		p.TokenExpiry = exp
	} else {
		h.logger.Warn("token has no readable expiry", "error", err)
	}

	id, expires, err := h.sessions.Create(r.Context(), p)
	if err != nil {
		h.logger.Error("session create failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.sessions.SetCookie(w, id, expires)

	writeJSON(w, http.StatusOK, loginResponse{
		UserID: res.ID,
		Name:   res.Name,
		Email:  res.Email,
		Role:   res.Role,
	})
}

// Logout removes the server-side session and expires the cookie.
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := h.sessions.ReadCookie(r); id != "" {
		if err := h.sessions.Delete(r.Context(), id); err != nil {
			h.logger.Error("session delete failed", "error", err)
		}
		h.metrics.ObserveSignOut("logout")
	}
	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// Me returns the signed-in principal.
// GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		jsonError(w, "not signed in", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		UserID: p.UserID,
		Name:   p.Name,
		Email:  p.Email,
		Role:   string(p.Role),
	})
}
