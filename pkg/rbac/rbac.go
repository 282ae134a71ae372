// Package rbac gates routes by the role carried in the JWT.
package rbac

import (
	"net/http"

	"github.com/Shreehariballakkuraya/ScanPOS/pkg/middleware"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/response"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// HasRole allows the request only when the authenticated role is one of
// roles. Mount after middleware.Auth; unauthenticated requests get 401.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}
			if !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidRole reports whether role is one the system knows.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCashier
}
