// Package session turns a raw transport token into a fully validated
// Principal, or a definitive rejection. Validation composes the token codec
// and the permission catalog and is evaluated once per request; the result
// is cached on the request context by the authentication middleware.
package session

import (
	"time"

	"github.com/lumerapay/payadmin/internal/auth"
	"github.com/lumerapay/payadmin/internal/catalog"
)

// State is the terminal outcome of validating one request's session.
type State int

const (
	// StateNoToken means the transport slot was empty. Unauthenticated.
	StateNoToken State = iota
	// StateTokenInvalid means signature verification failed or the token
	// is malformed or expired. Unauthenticated.
	StateTokenInvalid
	// StateRoleMismatch means the token verified and is unexpired, but no
	// role in the payload is legal for the account's user type. This is a
	// deliberate, stricter-than-token-validity gate: a structurally valid
	// token for roles the account no longer holds must not grant access.
	StateRoleMismatch
	// StateValid means the token verified, is unexpired, and at least one
	// role survived the user-type filter. Yields a usable Principal.
	StateValid
)

func (s State) String() string {
	switch s {
	case StateNoToken:
		return "no_token"
	case StateTokenInvalid:
		return "token_invalid"
	case StateRoleMismatch:
		return "role_mismatch"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Validation is the outcome of validating a raw token. Principal is non-nil
// only when State is StateValid.
type Validation struct {
	State     State
	Principal *auth.Principal
}

// Authenticated reports whether the validation produced a usable principal.
func (v Validation) Authenticated() bool {
	return v.State == StateValid && v.Principal != nil
}

// Validator composes the token codec and the permission catalog.
type Validator struct {
	codec   *auth.Codec
	catalog *catalog.Catalog
}

// NewValidator creates a validator over the given codec and catalog.
func NewValidator(codec *auth.Codec, cat *catalog.Catalog) *Validator {
	return &Validator{codec: codec, catalog: cat}
}

// Validate runs the session state machine over a raw token:
//
//	NoToken → TokenInvalid → RoleMismatch → Valid
//
// Roles outside the user type's allow-list are dropped; the session proceeds
// with the reduced set unless it becomes empty, in which case the whole
// session is rejected (fail-closed, not fail-open to "no permissions").
func (v *Validator) Validate(rawToken string) Validation {
	if rawToken == "" {
		return Validation{State: StateNoToken}
	}

	claims, err := v.codec.Verify(rawToken)
	if err != nil {
		return Validation{State: StateTokenInvalid}
	}

	roles := v.catalog.FilterRoles(claims.UserType, claims.Roles)
	if len(roles) == 0 {
		return Validation{State: StateRoleMismatch}
	}

	principal := &auth.Principal{
		Subject:       claims.Subject,
		Username:      claims.Username,
		Name:          claims.Name,
		Email:         claims.Email,
		Roles:         roles,
		UserType:      claims.UserType,
		UpstreamToken: claims.UpstreamToken,
		TokenID:       claims.ID,
	}
	if claims.IssuedAt != nil {
		principal.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}

	return Validation{State: StateValid, Principal: principal}
}

// Remaining returns how much lifetime the principal's session has left at
// the given instant. Used when revoking on sign-out so denylist entries can
// expire with the token.
func Remaining(p *auth.Principal, now time.Time) time.Duration {
	if p == nil || p.ExpiresAt.IsZero() {
		return 0
	}
	return p.ExpiresAt.Sub(now)
}
