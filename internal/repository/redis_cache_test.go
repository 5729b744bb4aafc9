package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansoorceksport/periodize/internal/domain"
)

func setupCache(t *testing.T) (*RedisCacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCacheRepository(client), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	totals := domain.DayTotals{
		Date:     time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Workouts: 2,
		Volume:   1140,
		Sets:     9,
	}
	require.NoError(t, cache.Set(ctx, "aggregate:day:u1:2024-06-03", totals, time.Hour))

	var got domain.DayTotals
	require.NoError(t, cache.Get(ctx, "aggregate:day:u1:2024-06-03", &got))
	assert.Equal(t, totals, got)
}

func TestCacheMiss(t *testing.T) {
	cache, _ := setupCache(t)

	var got domain.DayTotals
	err := cache.Get(context.Background(), "aggregate:day:u1:2024-06-03", &got)
	require.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCacheDelete(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", domain.DayTotals{Workouts: 1}, time.Hour))
	require.NoError(t, cache.Set(ctx, "k2", domain.DayTotals{Workouts: 2}, time.Hour))
	require.NoError(t, cache.Delete(ctx, "k1", "k2"))

	var got domain.DayTotals
	require.ErrorIs(t, cache.Get(ctx, "k1", &got), domain.ErrCacheMiss)

	// Deleting nothing is a no-op, not an error.
	require.NoError(t, cache.Delete(ctx))
}

func TestCacheTTLExpiry(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", domain.DayTotals{Workouts: 1}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var got domain.DayTotals
	require.ErrorIs(t, cache.Get(ctx, "k1", &got), domain.ErrCacheMiss)
}
