package repository

import (
	"context"
	"time"

	"github.com/lumerapay/payadmin/internal/db/models"
)

// RevokedTokenRepository is the denylist of session tokens revoked before
// their natural expiry. Lookups are fail-closed in callers: a lookup error
// is surfaced, never treated as "not revoked".
type RevokedTokenRepository interface {
	// Create adds a token ID to the denylist.
	Create(ctx context.Context, revoked *models.RevokedToken) error
	// IsRevoked reports whether the token ID is on the denylist.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// DeleteExpired prunes entries whose token expired more than gracePeriod ago.
	DeleteExpired(ctx context.Context, gracePeriod time.Duration) error
}
