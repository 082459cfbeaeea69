package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalCache_SetGetDelete(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "booking:slots:2024-05-01:all", "[]", time.Minute))
	require.NoError(t, c.Set(ctx, "booking:slots:2024-05-01:c1", []byte(`[{"_id":"b1"}]`), time.Minute))

	val, err := c.Get(ctx, "booking:slots:2024-05-01:c1")
	require.NoError(t, err)
	assert.Equal(t, `[{"_id":"b1"}]`, val)

	require.NoError(t, c.Delete(ctx, "booking:slots:2024-05-01:all", "booking:slots:2024-05-01:c1"))

	_, err = c.Get(ctx, "booking:slots:2024-05-01:all")
	assert.True(t, errors.Is(err, ErrMiss))
	_, err = c.Get(ctx, "booking:slots:2024-05-01:c1")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestLocalCache_StructValuesAreJSON(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"slots": 3}, 0))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"slots":3}`, val)
}

func TestLocalCache_Expiry(t *testing.T) {
	c := NewLocalCache(time.Hour, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "v", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)

	c.cleanup()
	c.mu.RLock()
	_, stillThere := c.data["short"]
	c.mu.RUnlock()
	assert.False(t, stillThere, "cleanup should drop expired entries")
}

func TestLocalCache_CloseTwice(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
