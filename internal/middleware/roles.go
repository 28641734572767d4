package middleware

import (
	"net/http"
	"strings"

	"dashboard-api/internal/metrics"
	"dashboard-api/pkg/apierror"
)

// RoleGate admits users whose role is one of Roles. It is declared as a value
// at route registration, e.g. middleware.RoleGate{Roles: []string{"admin"}, Metrics: m}.Handler.
// RequireAuth must run first. A nil Metrics records nothing.
type RoleGate struct {
	Roles   []string
	Metrics *metrics.Metrics
}

func (g RoleGate) Allows(role string) bool {
	role = strings.TrimSpace(role)
	for _, allowed := range g.Roles {
		if strings.EqualFold(strings.TrimSpace(allowed), role) {
			return true
		}
	}
	return false
}

func (g RoleGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			reject(w, g.Metrics, "role", apierror.Unauthenticated())
			return
		}

		if !g.Allows(user.Role) {
			reject(w, g.Metrics, "role", apierror.Forbidden("User role is not authorized to access this route"))
			return
		}

		g.Metrics.GateDecision("role", "allowed")
		next.ServeHTTP(w, r)
	})
}
