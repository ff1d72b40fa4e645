//go:build integration

package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnet/pkg/testutil/containers"
)

func Test_Redis_RevokeAndCheck(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	list := NewRedis(rc.Client)

	require.NoError(t, list.RevokeToken(ctx, "jti-1", time.Minute))

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "jti-unknown")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func Test_Redis_EntryExpires(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	list := NewRedis(rc.Client)

	require.NoError(t, list.RevokeToken(ctx, "jti-short", 100*time.Millisecond))
	time.Sleep(300 * time.Millisecond)

	revoked, err := list.IsRevoked(ctx, "jti-short")
	require.NoError(t, err)
	assert.False(t, revoked, "entry lapses with the token's remaining lifetime")
}

func Test_Postgres_RevokeAndCheck(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	ctx := context.Background()

	now := time.Now()
	list := NewPostgres(pc.DB, WithPostgresClock(func() time.Time { return now }))

	require.NoError(t, list.RevokeToken(ctx, "jti-1", time.Minute))

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Re-revoking the same JTI is an upsert, not an error.
	require.NoError(t, list.RevokeToken(ctx, "jti-1", 2*time.Minute))

	list = NewPostgres(pc.DB, WithPostgresClock(func() time.Time { return now.Add(3 * time.Minute) }))
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	deleted, err := list.DeleteExpired(ctx, now.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
