package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_stream/internal/platform/config"
)

func TestNewRedisClient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("disabled when addr is empty", func(t *testing.T) {
		t.Parallel()
		rdb, err := NewRedisClient(ctx, config.RedisConfig{})
		assert.NoError(t, err)
		assert.Nil(t, rdb)
	})

	t.Run("connects to live server", func(t *testing.T) {
		t.Parallel()
		mr, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(mr.Close)

		rdb, err := NewRedisClient(ctx, config.RedisConfig{Addr: mr.Addr()})
		require.NoError(t, err)
		require.NotNil(t, rdb)
		assert.NoError(t, rdb.Close())
	})

	t.Run("fails when unreachable", func(t *testing.T) {
		t.Parallel()
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()

		rdb, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
		assert.Error(t, err)
		assert.Nil(t, rdb)
	})
}
