package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/models"
)

// RoleMiddleware returns a middleware that allows the request through only
// when the authenticated user's role is in the given set. The allowed set
// is fixed at route-registration time; the check itself is a pure
// predicate with no side effects. Requires AuthMiddleware upstream.
func RoleMiddleware(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				writeUnauthorized(w)
				return
			}

			if !allowed[user.Role] {
				logger.Log.Errorw("role check failed", "email", user.Email, "role", user.Role)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"error": "FORBIDDEN"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
