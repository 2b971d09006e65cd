package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/lumerapay/payadmin/internal/db/models"
)

// BunRevokedTokenRepository implements RevokedTokenRepository using Bun ORM.
type BunRevokedTokenRepository struct {
	db *bun.DB
}

// NewBunRevokedTokenRepository creates a new Bun-based revoked token repository.
func NewBunRevokedTokenRepository(db *bun.DB) RevokedTokenRepository {
	return &BunRevokedTokenRepository{db: db}
}

// Create adds a token ID to the revocation denylist.
func (r *BunRevokedTokenRepository) Create(ctx context.Context, revoked *models.RevokedToken) error {
	if revoked.RevokedAt.IsZero() {
		revoked.RevokedAt = time.Now()
	}
	_, err := r.db.NewInsert().
		Model(revoked).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create revoked token: %w", err)
	}
	return nil
}

// IsRevoked checks if a token ID exists in the revocation table.
func (r *BunRevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.RevokedToken)(nil)).
		Where("token_id = ?", tokenID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return exists, nil
}

// DeleteExpired removes entries whose token expired before now minus the
// grace period. Run periodically to keep the denylist small.
func (r *BunRevokedTokenRepository) DeleteExpired(ctx context.Context, gracePeriod time.Duration) error {
	cutoff := time.Now().Add(-gracePeriod)

	_, err := r.db.NewDelete().
		Model((*models.RevokedToken)(nil)).
		Where("expires_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete expired revoked tokens: %w", err)
	}
	return nil
}
