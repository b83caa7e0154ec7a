package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := NewRedisWithClient(db, "test:")

	t.Run("set", func(t *testing.T) {
		mock.ExpectSet("test:event:1", []byte("payload"), time.Minute).SetVal("OK")
		require.NoError(t, c.Set(ctx, "event:1", []byte("payload"), time.Minute))
	})

	t.Run("get_hit", func(t *testing.T) {
		mock.ExpectGet("test:event:1").SetVal("payload")
		value, err := c.Get(ctx, "event:1")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), value)
	})

	t.Run("get_miss", func(t *testing.T) {
		mock.ExpectGet("test:event:2").RedisNil()
		_, err := c.Get(ctx, "event:2")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("get_error", func(t *testing.T) {
		mock.ExpectGet("test:event:3").SetErr(errors.New("connection reset"))
		_, err := c.Get(ctx, "event:3")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMiss)
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectDel("test:a", "test:b").SetVal(2)
		require.NoError(t, c.Delete(ctx, "a", "b"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
