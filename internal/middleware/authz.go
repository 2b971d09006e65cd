package middleware

import (
	"net/http"

	"github.com/lumerapay/payadmin/internal/auth"
	"github.com/lumerapay/payadmin/internal/authz"
)

// Gate wraps the evaluator with route-level enforcement. Every gate
// distinguishes "no valid principal" (401) from "valid principal without
// the required permission" (403).
type Gate struct {
	Evaluator *authz.Evaluator
}

// NewGate creates a route gate over the evaluator.
func NewGate(evaluator *authz.Evaluator) *Gate {
	return &Gate{Evaluator: evaluator}
}

// RequirePermission rejects requests whose principal lacks the permission.
func (g *Gate) RequirePermission(permission string) func(http.Handler) http.Handler {
	if permission == "" {
		panic("RequirePermission: empty permission")
	}
	return g.require(func(p auth.Principal) bool {
		return g.Evaluator.HasPermission(p.Roles, permission, p.UserType)
	})
}

// RequireAny rejects requests whose principal holds none of the permissions.
func (g *Gate) RequireAny(permissions ...string) func(http.Handler) http.Handler {
	if len(permissions) == 0 {
		panic("RequireAny: empty permission list")
	}
	return g.require(func(p auth.Principal) bool {
		return g.Evaluator.HasAny(p.Roles, permissions, p.UserType)
	})
}

// RequireAll rejects requests whose principal is missing any of the
// permissions. An empty list is a configuration error and panics at route
// construction rather than silently allowing everything.
func (g *Gate) RequireAll(permissions ...string) func(http.Handler) http.Handler {
	if len(permissions) == 0 {
		panic("RequireAll: empty permission list")
	}
	return g.require(func(p auth.Principal) bool {
		return g.Evaluator.HasAll(p.Roles, permissions, p.UserType)
	})
}

// RequireCondition gates a route on a boolean expression over principal
// attributes, e.g. `user_type == "PLATFORM"`.
func (g *Gate) RequireCondition(expr string) func(http.Handler) http.Handler {
	if expr == "" {
		panic("RequireCondition: empty expression")
	}
	return g.require(func(p auth.Principal) bool {
		return authz.EvaluateCondition(expr, p.Attributes())
	})
}

func (g *Gate) require(allowed func(auth.Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.GetPrincipal(r.Context())
			if !ok {
				Unauthenticated(w)
				return
			}
			if !allowed(principal) {
				Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Unauthenticated writes the terminal "authentication required" outcome.
func Unauthenticated(w http.ResponseWriter) {
	http.Error(w, "unauthenticated", http.StatusUnauthorized)
}

// Forbidden writes the terminal "access denied" outcome.
func Forbidden(w http.ResponseWriter) {
	http.Error(w, "forbidden", http.StatusForbidden)
}
