package redisclient_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/redisclient"
	"github.com/pablogoliveira/personia-hub/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableClient points at a port nothing listens on so every command fails fast
func unreachableClient() *redisclient.Client {
	return redisclient.NewClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
}

func TestNewClient(t *testing.T) {
	client := unreachableClient()
	require.NotNil(t, client)
	assert.NotNil(t, client.PoolStats())
	assert.NoError(t, client.Close())
}

func TestNewFromCmdable_NoPoolStats(t *testing.T) {
	var cmdable redis.Cmdable = redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}).Pipeline()
	client := redisclient.NewFromCmdable(cmdable)
	assert.Nil(t, client.PoolStats())
}

func TestClient_ErrorsArePropagated(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	ctx := context.Background()

	assert.Error(t, client.Ping(ctx).Err())
	assert.Error(t, client.Get(ctx, "test:missing").Err())
	assert.Error(t, client.Set(ctx, "test:key", "v", time.Minute).Err())
	assert.Error(t, client.Del(ctx, "test:key").Err())
	assert.Error(t, client.Exists(ctx, "test:key").Err())
}

func TestClient_Integration(t *testing.T) {
	client := testutil.StartRedis(t)
	ctx := context.Background()

	t.Run("get missing key returns redis.Nil", func(t *testing.T) {
		err := client.Get(ctx, "test:missing").Err()
		assert.True(t, errors.Is(err, redis.Nil))
	})

	t.Run("set get ttl del", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "test:cep:20040020", `{"cidade":"Rio de Janeiro"}`, time.Hour).Err())

		val, err := client.Get(ctx, "test:cep:20040020").Result()
		require.NoError(t, err)
		assert.Equal(t, `{"cidade":"Rio de Janeiro"}`, val)

		ttl, err := client.TTL(ctx, "test:cep:20040020").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)

		n, err := client.Exists(ctx, "test:cep:20040020").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		keys, err := client.Keys(ctx, "test:cep:*").Result()
		require.NoError(t, err)
		assert.Len(t, keys, 1)

		deleted, err := client.Del(ctx, "test:cep:20040020").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}
