package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed payload carried inside a session token.
// It holds everything needed to reconstruct a Principal without touching
// any external store: identity fields, the raw (unfiltered) role set, the
// tenant category, and the bearer credential used for upstream calls.
type SessionClaims struct {
	Username      string   `json:"username"`
	Name          string   `json:"name,omitempty"`
	Email         string   `json:"email,omitempty"`
	Roles         []string `json:"roles"`
	UserType      string   `json:"user_type,omitempty"`
	UpstreamToken string   `json:"upstream_token,omitempty"`

	jwt.RegisteredClaims
}
