package handlers

import (
	"net/http"

	"github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/internal/session"
)

// testPrincipal injects a signed-in principal, standing in for the session
// middleware.
func testPrincipal(p session.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithPrincipal(r.Context(), &p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
