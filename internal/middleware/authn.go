package middleware

import (
	"log"
	"net/http"

	"github.com/lumerapay/payadmin/internal/auth"
	"github.com/lumerapay/payadmin/internal/repository"
	"github.com/lumerapay/payadmin/internal/session"
)

// AuthnDependencies bundles the collaborators needed to authenticate a
// request from its session cookie.
type AuthnDependencies struct {
	Store     *auth.CookieStore
	Validator *session.Validator
	// RevokedTokens is optional; when nil, sign-out only clears the cookie
	// and tokens stay valid until expiry.
	RevokedTokens repository.RevokedTokenRepository
}

// NewSessionAuth creates middleware that validates the session cookie once
// per request and stores the resulting Principal on the context.
//
// Requests without a usable session pass through unauthenticated; the
// Require* gates downstream turn that into a 401. Token verification
// failures are expected outcomes (expired, replayed, forged) and are not
// logged as errors. A revoked token is rejected here with a 401 because the
// caller presented a structurally valid credential that was explicitly
// invalidated.
func NewSessionAuth(deps AuthnDependencies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			rawToken, _ := deps.Store.Read(r)

			// Validated exactly once; every downstream consumer shares
			// this view of "who is calling" for the rest of the request.
			validation := deps.Validator.Validate(rawToken)
			if !validation.Authenticated() {
				next.ServeHTTP(w, r)
				return
			}
			principal := *validation.Principal

			if deps.RevokedTokens != nil && principal.TokenID != "" {
				revoked, err := deps.RevokedTokens.IsRevoked(ctx, principal.TokenID)
				if err != nil {
					log.Printf("error checking token revocation for %s %s: %v", r.Method, r.URL.Path, err)
					http.Error(w, "authentication error", http.StatusInternalServerError)
					return
				}
				if revoked {
					http.Error(w, "session revoked", http.StatusUnauthorized)
					return
				}
			}

			ctx = auth.SetPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
