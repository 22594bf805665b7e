package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// ErrNoSession is returned when the session id is unknown or has expired.
var ErrNoSession = errors.New("session: not found")

const keyPrefix = "session:"

// Store keeps principals in Redis keyed by an opaque cookie session id.
type Store struct {
	rdb        *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	logger     *logging.Logger
}

// NewStore constructs a session store. ttl bounds how long a session may live
// regardless of the token's own expiry.
func NewStore(rdb *redis.Client, cookieName string, ttl time.Duration, secure bool, logger *logging.Logger) *Store {
	if rdb == nil {
		panic("session: redis client required")
	}
	if cookieName == "" {
		cookieName = "sphere_session"
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{rdb: rdb, cookieName: cookieName, ttl: ttl, secure: secure, logger: logger}
}

// Create stores the principal and returns its new session id and expiry. The
// session lives until the earlier of the configured TTL and the token's exp.
func (s *Store) Create(ctx context.Context, p Principal) (string, time.Time, error) {
	now := time.Now()
	ttl := s.ttl
	if !p.TokenExpiry.IsZero() {
		if untilExp := p.TokenExpiry.Sub(now); untilExp < ttl {
			ttl = untilExp
		}
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("session: token already expired")
	}

	id := uuid.NewString()
	payload, err := json.Marshal(p)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: marshal principal: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+id, payload, ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("session: store principal: %w", err)
	}
	return id, now.Add(ttl), nil
}

// Get loads the principal for a session id.
func (s *Store) Get(ctx context.Context, id string) (*Principal, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	raw, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session: load principal: %w", err)
	}
	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("session: unmarshal principal: %w", err)
	}
	return &p, nil
}

// Delete is the single force-logout capability: it removes the server-side
// session. Callers pair it with ClearCookie.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// CookieName returns the configured session cookie name.
func (s *Store) CookieName() string { return s.cookieName }

// SetCookie writes the session cookie on the response.
func (s *Store) SetCookie(w http.ResponseWriter, id string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *Store) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadCookie returns the session id from the request, if any.
func (s *Store) ReadCookie(r *http.Request) string {
	c, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
