package entable

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	k := CacheKey{Table: "users", Entity: "app.User", Operation: "select", Predicates: "`id` = ?[1]", OrderBy: "`id` ASC", Limit: 10, Offset: 20}
	assert.Equal(t, "users:app.User:select:`id` = ?[1]:`id` ASC:10:20", k.String())
	other := k
	other.Entity = "app.Admin"
	assert.NotEqual(t, k.String(), other.String())
	assert.Equal(t, "users:", TablePrefix("users"))
	assert.Contains(t, k.String(), TablePrefix("users"))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	v, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "users:a", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "users:b", []byte("b"), time.Minute))
	require.NoError(t, c.Set(ctx, "posts:a", []byte("p"), 0))
	assert.Equal(t, 3, c.Len())

	v, err = c.Get(ctx, "users:b")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), v)

	t.Run("Expiry", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		v, err := c.Get(ctx, "users:b")
		require.NoError(t, err)
		assert.Nil(t, v)
		v, err = c.Get(ctx, "users:a")
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), v)
	})

	t.Run("DeletePrefix", func(t *testing.T) {
		require.NoError(t, c.DeletePrefix(ctx, TablePrefix("users")))
		v, _ := c.Get(ctx, "users:a")
		assert.Nil(t, v)
		v, _ = c.Get(ctx, "posts:a")
		assert.Equal(t, []byte("p"), v)
	})

	t.Run("ExpiredThenSet", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "posts:b", []byte("old"), time.Second))
		now = now.Add(time.Minute)
		clock := c.now
		defer func() { c.now = clock }()
		var raced bool
		c.now = func() time.Time {
			if !raced {
				// Another writer stores a fresh value between the expired
				// read and the eviction.
				raced = true
				require.NoError(t, c.Set(ctx, "posts:b", []byte("new"), time.Hour))
			}
			return now
		}
		v, err := c.Get(ctx, "posts:b")
		require.NoError(t, err)
		assert.Nil(t, v)
		c.now = clock
		v, err = c.Get(ctx, "posts:b")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), v)
	})

	t.Run("DeleteAndClear", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "x", []byte("x"), 0))
		require.NoError(t, c.Delete(ctx, "x"))
		v, _ := c.Get(ctx, "x")
		assert.Nil(t, v)
		require.NoError(t, c.Clear(ctx))
		assert.Equal(t, 0, c.Len())
	})
}
