package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type cachedCar struct {
	ID   string `json:"id"`
	Make string `json:"make"`
}

func TestInMemoryCache_SetGetDelete(t *testing.T) {
	c := NewInMemoryCache(time.Minute, time.Minute)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "car:id:1", cachedCar{ID: "1", Make: "Toyota"}, 0))

	var got cachedCar
	hit, err := c.Get(ctx, "car:id:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Toyota", got.Make)

	require.NoError(t, c.Delete(ctx, "car:id:1"))
	hit, err = c.Get(ctx, "car:id:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInMemoryCache_Expiration(t *testing.T) {
	c := NewInMemoryCache(time.Minute, time.Hour)
	defer c.Stop()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Second))

	var v string
	hit, _ := c.Get(ctx, "k", &v)
	assert.True(t, hit)

	now = now.Add(11 * time.Second)
	hit, _ = c.Get(ctx, "k", &v)
	assert.False(t, hit, "expired entries are misses")

	assert.Equal(t, 1, c.Len())
	c.sweep()
	assert.Equal(t, 0, c.Len())
}

func TestInMemoryCache_StopIsIdempotent(t *testing.T) {
	c := NewInMemoryCache(time.Minute, time.Millisecond)
	c.Stop()
	c.Stop()
}
