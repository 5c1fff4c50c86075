package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/miniblog/internal/model"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, ttl), mr
}

func TestRedisLoadsOnceWithinTTL(t *testing.T) {
	rc, _ := newTestRedis(t, time.Minute)
	ctx := context.Background()
	want := []*model.Post{{ID: "p1", UserID: "u1", Text: "hello"}}
	var calls atomic.Int64

	got, err := rc.GetPosts(ctx, "u1", countingLoader(want, &calls))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = rc.GetPosts(ctx, "u1", countingLoader(want, &calls))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(1), calls.Load())
}

func TestRedisTTLExpiry(t *testing.T) {
	rc, mr := newTestRedis(t, time.Minute)
	ctx := context.Background()
	var calls atomic.Int64
	old := []*model.Post{{ID: "p1", UserID: "u1", Text: "old"}}
	fresh := []*model.Post{{ID: "p2", UserID: "u1", Text: "fresh"}}

	_, err := rc.GetPosts(ctx, "u1", countingLoader(old, &calls))
	require.NoError(t, err)

	mr.FastForward(time.Minute + time.Second)

	got, err := rc.GetPosts(ctx, "u1", countingLoader(fresh, &calls))
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, int64(2), calls.Load())
}

func TestRedisInvalidate(t *testing.T) {
	rc, _ := newTestRedis(t, time.Minute)
	ctx := context.Background()
	var calls atomic.Int64
	old := []*model.Post{{ID: "p1", UserID: "u1", Text: "old"}}
	fresh := []*model.Post{}

	_, err := rc.GetPosts(ctx, "u1", countingLoader(old, &calls))
	require.NoError(t, err)

	rc.Invalidate(ctx, "u1")

	got, err := rc.GetPosts(ctx, "u1", countingLoader(fresh, &calls))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int64(2), calls.Load())
}

func TestRedisDownFallsBackToLoader(t *testing.T) {
	rc, mr := newTestRedis(t, time.Minute)
	ctx := context.Background()
	mr.Close()

	want := []*model.Post{{ID: "p1", UserID: "u1", Text: "hello"}}
	var calls atomic.Int64
	got, err := rc.GetPosts(ctx, "u1", countingLoader(want, &calls))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(1), calls.Load())
}
