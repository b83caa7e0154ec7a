package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }

	t.Run("miss", func(t *testing.T) {
		_, err := m.Get(ctx, "unknown")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("hit_before_expiry", func(t *testing.T) {
		buf := []byte("value")
		require.NoError(t, m.Set(ctx, "key", buf, time.Minute))
		buf[0] = 'X'

		value, err := m.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), value, "stored value must not alias the caller's buffer")
	})

	t.Run("expired", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "short", []byte("v"), time.Second))
		now = now.Add(time.Second)
		_, err := m.Get(ctx, "short")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Hour))
		require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Hour))
		require.NoError(t, m.Delete(ctx, "a", "b"))
		_, err := m.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrMiss)
		_, err = m.Get(ctx, "b")
		assert.ErrorIs(t, err, ErrMiss)
	})
}

func TestNew(t *testing.T) {
	c, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	c, err = New(context.Background(), Config{Driver: DriverNone})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = New(context.Background(), Config{Driver: "memcached"})
	assert.Error(t, err)
}
