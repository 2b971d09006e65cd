package auth

import (
	"slices"
	"time"
)

// Principal captures the validated caller identity for one request.
// It is derived from a verified session token and owned by the request scope
// that validated it; it is never persisted beyond the signed token itself.
type Principal struct {
	// Subject is the stable upstream identifier for the account.
	Subject string
	// Username is the login name shown in audit output.
	Username string
	// Name is the optional display name.
	Name string
	// Email is optional.
	Email string
	// Roles is the effective role set after user-type filtering.
	// Non-empty by invariant once validation succeeds.
	Roles []string
	// UserType is the tenant category constraining which roles are legal.
	// Empty for accounts that are not tenant-scoped.
	UserType string
	// IssuedAt and ExpiresAt mirror the token's lifetime.
	IssuedAt  time.Time
	ExpiresAt time.Time
	// UpstreamToken is the opaque bearer credential for calls to the
	// payments backend on this caller's behalf.
	UpstreamToken string
	// TokenID is the session token's jti, used for revocation on sign-out.
	TokenID string
}

// HasRole reports whether the effective role set contains role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// Attributes returns the principal's fields as a flat map for boolean
// expression evaluation (condition-gated routes).
func (p Principal) Attributes() map[string]any {
	return map[string]any{
		"subject":   p.Subject,
		"username":  p.Username,
		"email":     p.Email,
		"user_type": p.UserType,
		"roles":     p.Roles,
	}
}
