package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, rdb.Ping(ctx).Err())

	return rdb, func() {
		_ = rdb.Close()
		_ = container.Terminate(ctx)
	}
}

func TestRedisRevoker(t *testing.T) {
	rdb, cleanup := setupRedis(t)
	defer cleanup()

	r := NewRedisRevoker(rdb)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "tok-1", time.Now().Add(time.Minute)))

	revoked, err = r.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := rdb.TTL(ctx, "session:revoked:tok-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	t.Run("already expired token is not stored", func(t *testing.T) {
		require.NoError(t, r.Revoke(ctx, "tok-2", time.Now().Add(-time.Second)))

		n, err := rdb.Exists(ctx, "session:revoked:tok-2").Result()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("closed client reports an error", func(t *testing.T) {
		closed := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		_ = closed.Close()

		_, err := NewRedisRevoker(closed).IsRevoked(ctx, "tok-1")
		assert.Error(t, err)
	})
}

func TestNopRevoker(t *testing.T) {
	var r Revoker = NopRevoker{}

	require.NoError(t, r.Revoke(context.Background(), "tok", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
}
