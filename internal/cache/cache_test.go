package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/contentforge/contentforge/internal/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis spins up a Redis container and returns a connected RedisCache + cleanup.
func setupRedis(t *testing.T) *cache.RedisCache {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	redisURL := "redis://" + host + ":" + port.Port()
	rc, err := cache.NewRedisCache(redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })

	return rc
}

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	assert.NoError(t, rc.Ping(context.Background()))
}

func TestSetGet_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	key := cache.TranscriptKey("text", "abc123")
	require.NoError(t, rc.Set(ctx, key, []byte("a cached transcript"), time.Minute))

	val, found, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("a cached transcript"), val)
}

func TestGet_Missing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)

	_, found, err := rc.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJobStatus_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()
	userID := uuid.New()
	jobID := uuid.New()

	require.NoError(t, rc.SetJobStatus(ctx, userID, jobID, "processing", time.Minute))

	status, found, err := rc.GetJobStatus(ctx, userID, jobID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "processing", status)

	// A different user's lookup of the same job id misses.
	_, found, err = rc.GetJobStatus(ctx, uuid.New(), jobID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIncrWithExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	key := cache.RateLimitKey("cf_test_")
	n, err := rc.IncrWithExpiry(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = rc.IncrWithExpiry(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteByPrefix(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	for _, prefix := range []string{"cf_aaaa__", "cf_bbbb__"} {
		_, err := rc.IncrWithExpiry(ctx, cache.RateLimitKey(prefix), time.Hour)
		require.NoError(t, err)
	}
	require.NoError(t, rc.Set(ctx, cache.TranscriptKey("text", "keepme"), []byte("x"), time.Hour))

	deleted, err := rc.DeleteByPrefix(ctx, cache.RateLimitPrefix)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, found, err := rc.Get(ctx, cache.TranscriptKey("text", "keepme"))
	require.NoError(t, err)
	assert.True(t, found, "unrelated keys must survive prefix deletion")
}
