package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumerapay/payadmin/internal/db/bunx"
	"github.com/lumerapay/payadmin/internal/db/models"
)

func testRepo(t *testing.T) RevokedTokenRepository {
	t.Helper()

	db, err := bunx.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { bunx.Close(db) })

	require.NoError(t, bunx.InitSchema(context.Background(), db))
	return NewBunRevokedTokenRepository(db)
}

// TestRevokedTokens_CreateAndLookup verifies the denylist round trip.
func TestRevokedTokens_CreateAndLookup(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Create(ctx, &models.RevokedToken{
		TokenID:   "jti-1",
		Subject:   "user-42",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

// TestRevokedTokens_CreateIdempotent verifies re-revoking the same token is
// not an error.
func TestRevokedTokens_CreateIdempotent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	entry := &models.RevokedToken{
		TokenID:   "jti-1",
		Subject:   "user-42",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, entry))
	require.NoError(t, repo.Create(ctx, entry))

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

// TestRevokedTokens_DeleteExpired verifies pruning removes only entries
// whose token expiry is past the grace period.
func TestRevokedTokens_DeleteExpired(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.RevokedToken{
		TokenID:   "stale",
		ExpiresAt: time.Now().Add(-2 * time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &models.RevokedToken{
		TokenID:   "live",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, repo.DeleteExpired(ctx, time.Hour))

	revoked, err := repo.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked, "pruned entries no longer count as revoked")

	revoked, err = repo.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}
