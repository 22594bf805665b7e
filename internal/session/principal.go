// Package session holds the signed-in user's principal between requests. The
// access token inside is opaque to the gateway: only its expiry claim is read,
// verification belongs to the backend that issued it.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the platform role carried in the backend's login response.
type Role string

const (
	RoleDoctor  Role = "Doctor"
	RolePatient Role = "Patient"
	RoleParent  Role = "Parent"
	RoleAdmin   Role = "admin"
)

// Principal is the narrow, read-only view of the signed-in user that handlers
// receive. Nothing outside this package mutates it.
type Principal struct {
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	AccessToken string    `json:"accessToken"`
	TokenExpiry time.Time `json:"tokenExpiry"`
}

// Expired reports whether the backend token has passed its exp claim.
func (p Principal) Expired(now time.Time) bool {
	return !p.TokenExpiry.IsZero() && now.After(p.TokenExpiry)
}

// IsDoctor reports whether the role may edit doctor notes and slots.
func (p Principal) IsDoctor() bool { return p.Role == RoleDoctor }

// IsAdmin reports whether the principal may use the admin payment filters.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// TokenExpiry extracts the exp claim from the backend's bearer JWT without
// verifying the signature. The gateway is not the token's audience arbiter;
// it only needs to know when to force a re-login.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("session: parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
