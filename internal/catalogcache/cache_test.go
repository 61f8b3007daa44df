package catalogcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerwizzy/shopify-inventory-sync/internal/shopify"
)

func countingFetch(calls *int, index map[string]shopify.CatalogVariant) FetchFunc {
	return func(context.Context) (map[string]shopify.CatalogVariant, error) {
		*calls++
		return index, nil
	}
}

func TestCache_ServesFreshSnapshot(t *testing.T) {
	calls := 0
	index := map[string]shopify.CatalogVariant{"ABC": {SKU: "ABC", VariantID: 1}}
	cache := New(time.Minute, countingFetch(&calls, index))

	ctx := context.Background()
	first, fetchedAt, err := cache.Index(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.False(t, fetchedAt.IsZero())
	assert.Equal(t, 1, calls)

	second, _, err := cache.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "fresh snapshot must not refetch")
	assert.Equal(t, first, second)
}

func TestCache_RefetchesAfterTTL(t *testing.T) {
	calls := 0
	cache := New(20*time.Millisecond, countingFetch(&calls, map[string]shopify.CatalogVariant{}))

	ctx := context.Background()
	_, _, err := cache.Index(ctx)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, _, err = cache.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCache_Invalidate(t *testing.T) {
	calls := 0
	cache := New(time.Hour, countingFetch(&calls, map[string]shopify.CatalogVariant{}))

	ctx := context.Background()
	_, _, _ = cache.Index(ctx)
	cache.Invalidate()
	_, _, _ = cache.Index(ctx)

	assert.Equal(t, 2, calls)
}

func TestCache_FetchErrorNotCached(t *testing.T) {
	calls := 0
	fetchErr := errors.New("gateway down")
	cache := New(time.Hour, func(context.Context) (map[string]shopify.CatalogVariant, error) {
		calls++
		if calls == 1 {
			return nil, fetchErr
		}
		return map[string]shopify.CatalogVariant{"X": {SKU: "X"}}, nil
	})

	ctx := context.Background()
	_, _, err := cache.Index(ctx)
	assert.ErrorIs(t, err, fetchErr)

	index, _, err := cache.Index(ctx)
	require.NoError(t, err)
	assert.Len(t, index, 1)
	assert.Equal(t, 2, calls)
}

func TestCache_RefreshNow(t *testing.T) {
	calls := 0
	cache := New(time.Hour, countingFetch(&calls, map[string]shopify.CatalogVariant{}))

	ctx := context.Background()
	_, _, _ = cache.Index(ctx)
	require.NoError(t, cache.RefreshNow(ctx))
	assert.Equal(t, 2, calls, "RefreshNow ignores freshness")

	_, _, _ = cache.Index(ctx)
	assert.Equal(t, 2, calls, "snapshot is fresh again after the refresh")
}

func TestCache_Stats(t *testing.T) {
	calls := 0
	cache := New(time.Minute, countingFetch(&calls, map[string]shopify.CatalogVariant{
		"A": {SKU: "A"}, "B": {SKU: "B"},
	}))

	stats := cache.Stats()
	assert.Zero(t, stats.Entries)
	assert.Nil(t, stats.FetchedAt)

	ctx := context.Background()
	_, _, _ = cache.Index(ctx) // miss
	_, _, _ = cache.Index(ctx) // hit
	_, _, _ = cache.Index(ctx) // hit

	stats = cache.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	require.NotNil(t, stats.FetchedAt)
}
