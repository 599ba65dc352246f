package pagecache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func TestInvalidateIndex_RemovesEntry(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(indexPageKey, "<html>cached landing page</html>"))
	require.True(t, mr.Exists(indexPageKey))

	err := cache.InvalidateIndex(context.Background())
	require.NoError(t, err)

	assert.False(t, mr.Exists(indexPageKey))
}

func TestInvalidateIndex_MissingEntryIsNoop(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	err := cache.InvalidateIndex(context.Background())
	assert.NoError(t, err)
}

func TestInvalidateIndex_LeavesOtherKeys(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(indexPageKey, "stale"))
	mr.HSet("cart:1", "5", "2")

	require.NoError(t, cache.InvalidateIndex(context.Background()))

	assert.True(t, mr.Exists("cart:1"))
}
