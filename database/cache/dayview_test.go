package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medislot/models"
)

func newTestCache(t *testing.T) (*RedisDayViewCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDayViewCache(client, time.Minute), mr
}

func TestDayViewCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, ok, err := c.Get(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	assert.False(t, ok)

	slots := []models.Slot{
		{ID: "a", ProviderID: "p1", Date: "2026-10-16", Time: "09:00", Status: models.SlotStatusActive},
		{ID: "b", ProviderID: "p1", Date: "2026-10-16", Time: "09:30", Status: models.SlotStatusBooked, IsBooked: true},
	}
	require.NoError(t, c.Set(ctx, "p1", "2026-10-16", 0, slots))
	assert.True(t, mr.Exists("dayview:p1:2026-10-16"))
	assert.Equal(t, time.Minute, mr.TTL("dayview:p1:2026-10-16"))

	got, ok, err := c.Get(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].ID)
	assert.True(t, got[1].IsBooked)
}

func TestDayViewCacheEmptyListIsAHit(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, "p1", "2026-10-16", 0, []models.Slot{}))
	got, ok, err := c.Get(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDayViewCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "p1", "2026-10-16", 0, nil))
	require.NoError(t, c.Set(ctx, "p1", "2026-10-17", 0, nil))
	require.NoError(t, c.Set(ctx, "p2", "2026-10-16", 0, nil))

	require.NoError(t, c.Invalidate(ctx, "p1", "2026-10-16", "2026-10-17"))
	assert.False(t, mr.Exists("dayview:p1:2026-10-16"))
	assert.False(t, mr.Exists("dayview:p1:2026-10-17"))
	assert.True(t, mr.Exists("dayview:p2:2026-10-16"))

	require.NoError(t, c.Invalidate(ctx, "p1"))
}

func TestDayViewCacheDropsSnapshotReadBeforeInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	free := []models.Slot{{ID: "a", ProviderID: "p1", Date: "2026-10-16", Time: "09:00", Status: models.SlotStatusActive}}

	gen, err := c.Generation(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	// A booking commits while the reader still holds the old snapshot.
	require.NoError(t, c.Invalidate(ctx, "p1", "2026-10-16"))
	require.NoError(t, c.Set(ctx, "p1", "2026-10-16", gen, free))
	assert.False(t, mr.Exists("dayview:p1:2026-10-16"))

	_, ok, err := c.Get(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	assert.False(t, ok)

	fresh, err := c.Generation(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh)
	assert.Greater(t, mr.TTL("dayviewgen:p1:2026-10-16"), time.Duration(0))

	require.NoError(t, c.Set(ctx, "p1", "2026-10-16", fresh, free))
	_, ok, err = c.Get(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDayViewCacheGenerationsArePerDay(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Invalidate(ctx, "p1", "2026-10-17"))
	require.NoError(t, c.Invalidate(ctx, "p2", "2026-10-16"))

	gen, err := c.Generation(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "p1", "2026-10-16", gen, nil))
	_, ok, err := c.Get(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRedisClientFailsWhenUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
