package middleware

import (
	"fmt"
	"net/http"

	"github.com/daybook/daybook/internal/auth"
)

// RequireAdmin returns middleware that restricts a route to administrators.
// Must be applied after Auth middleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if identity == nil {
				writeRoleError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !identity.IsAdmin() {
				writeRoleError(w, http.StatusForbidden, "FORBIDDEN", "Administrator role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRoleError writes a role-related error response.
func writeRoleError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(fmt.Sprintf(`{"error":{"code":"%s","message":"%s"}}`, code, message)))
}
