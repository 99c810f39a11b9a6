package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

func withMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
}

func TestGetSetJSONRoundtrip(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	var missing cachedPost
	found, err := GetJSON(ctx, PostKey(1), &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, PostKey(1), cachedPost{ID: 1, Content: "cached"}, PostTTL))

	var got cachedPost
	found, err = GetJSON(ctx, PostKey(1), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cached", got.Content)
}

func TestAsideFetchesOnceAndCaches(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			fetches++
			*dest = cachedPost{ID: 2, Content: "from store"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey(2), &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)

	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey(2), &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should hit the cache")
	assert.Equal(t, first, second)
}

func TestInvalidatePost(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(3), cachedPost{ID: 3}, time.Minute))
	InvalidatePost(ctx, 3)

	var got cachedPost
	found, err := GetJSON(ctx, PostKey(3), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheDisabledWithoutClient(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var got cachedPost
	found, err := GetJSON(ctx, PostKey(4), &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, PostKey(4), cachedPost{ID: 4}, time.Minute))

	// Aside degrades to a plain fetch.
	fetched := false
	require.NoError(t, Aside(ctx, PostKey(4), &got, time.Minute, func() error {
		fetched = true
		got = cachedPost{ID: 4, Content: "direct"}
		return nil
	}))
	assert.True(t, fetched)
	assert.Equal(t, "direct", got.Content)
}
