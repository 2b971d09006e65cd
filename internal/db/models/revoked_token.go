package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RevokedToken is a denylist entry for a session token revoked before its
// natural expiry (sign-out, or administrative revocation). Entries become
// garbage once the token itself would have expired and are pruned by
// DeleteExpired.
type RevokedToken struct {
	bun.BaseModel `bun:"table:revoked_tokens,alias:rt"`

	// TokenID is the session token's jti claim.
	TokenID string `bun:"token_id,pk"`
	// Subject records whose token was revoked, for audit queries.
	Subject   string    `bun:"subject"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	RevokedAt time.Time `bun:"revoked_at,notnull"`
}
