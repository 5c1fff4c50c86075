package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/miniblog/internal/model"
)

func countingLoader(posts []*model.Post, calls *atomic.Int64) Loader {
	return func(context.Context) ([]*model.Post, error) {
		calls.Add(1)
		return posts, nil
	}
}

func TestMemoryLoadsOnceWithinTTL(t *testing.T) {
	m := NewMemory(10, time.Minute)
	ctx := context.Background()
	want := []*model.Post{{ID: "p1", UserID: "u1", Text: "hello"}}
	var calls atomic.Int64

	got, err := m.GetPosts(ctx, "u1", countingLoader(want, &calls))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = m.GetPosts(ctx, "u1", countingLoader(want, &calls))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(1), calls.Load())
}

func TestMemoryTTLExpiry(t *testing.T) {
	m := NewMemory(10, time.Minute)
	base := time.Now()
	m.now = func() time.Time { return base }

	ctx := context.Background()
	var calls atomic.Int64
	old := []*model.Post{{ID: "p1", UserID: "u1", Text: "old"}}
	fresh := []*model.Post{{ID: "p2", UserID: "u1", Text: "fresh"}}

	_, err := m.GetPosts(ctx, "u1", countingLoader(old, &calls))
	require.NoError(t, err)

	// TTL 内命中，不回源
	m.now = func() time.Time { return base.Add(time.Minute - time.Second) }
	got, err := m.GetPosts(ctx, "u1", countingLoader(fresh, &calls))
	require.NoError(t, err)
	assert.Equal(t, old, got)
	assert.Equal(t, int64(1), calls.Load())

	// 超过 TTL 视为不存在，重新回源并返回新值
	m.now = func() time.Time { return base.Add(time.Minute) }
	got, err = m.GetPosts(ctx, "u1", countingLoader(fresh, &calls))
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, int64(2), calls.Load())
}

func TestMemoryInvalidate(t *testing.T) {
	m := NewMemory(10, time.Minute)
	ctx := context.Background()
	var calls atomic.Int64
	old := []*model.Post{{ID: "p1", UserID: "u1", Text: "old"}}
	fresh := []*model.Post{{ID: "p1", UserID: "u1", Text: "old"}, {ID: "p2", UserID: "u1", Text: "new"}}

	_, err := m.GetPosts(ctx, "u1", countingLoader(old, &calls))
	require.NoError(t, err)

	m.Invalidate(ctx, "u1")

	got, err := m.GetPosts(ctx, "u1", countingLoader(fresh, &calls))
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, int64(2), calls.Load())
}

func TestMemoryCapacityEviction(t *testing.T) {
	// 单分片便于精确测淘汰
	m := newMemory(3, time.Minute, 1)
	ctx := context.Background()
	var calls atomic.Int64

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("u%d", i)
		_, err := m.GetPosts(ctx, key, countingLoader(nil, &calls))
		require.NoError(t, err)
	}
	require.Equal(t, int64(3), calls.Load())

	// 访问 u0、u2 使 u1 成为最久未使用
	_, _ = m.GetPosts(ctx, "u0", countingLoader(nil, &calls))
	_, _ = m.GetPosts(ctx, "u2", countingLoader(nil, &calls))
	require.Equal(t, int64(3), calls.Load())

	// 第 4 个 key 淘汰且仅淘汰 u1
	_, err := m.GetPosts(ctx, "u3", countingLoader(nil, &calls))
	require.NoError(t, err)
	assert.Equal(t, int64(4), calls.Load())

	_, _ = m.GetPosts(ctx, "u0", countingLoader(nil, &calls))
	_, _ = m.GetPosts(ctx, "u2", countingLoader(nil, &calls))
	_, _ = m.GetPosts(ctx, "u3", countingLoader(nil, &calls))
	assert.Equal(t, int64(4), calls.Load(), "retained entries should still hit")

	_, _ = m.GetPosts(ctx, "u1", countingLoader(nil, &calls))
	assert.Equal(t, int64(5), calls.Load(), "evicted entry should miss")
}

func TestMemoryLoaderErrorNotCached(t *testing.T) {
	m := NewMemory(10, time.Minute)
	ctx := context.Background()
	boom := errors.New("store down")
	var calls atomic.Int64

	_, err := m.GetPosts(ctx, "u1", func(context.Context) ([]*model.Post, error) {
		calls.Add(1)
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// 失败不落缓存，下一次重新回源
	want := []*model.Post{{ID: "p1", UserID: "u1"}}
	got, err := m.GetPosts(ctx, "u1", countingLoader(want, &calls))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(2), calls.Load())
}

func TestMemorySingleFlight(t *testing.T) {
	m := NewMemory(10, time.Minute)
	ctx := context.Background()

	var calls atomic.Int64
	release := make(chan struct{})
	want := []*model.Post{{ID: "p1", UserID: "u1", Text: "hello"}}
	loader := func(context.Context) ([]*model.Post, error) {
		calls.Add(1)
		<-release
		return want, nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([][]*model.Post, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.GetPosts(ctx, "u1", loader)
		}(i)
	}

	// 等并发请求全部挂在同一次回源上
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "concurrent misses must share one load")
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}

func TestMemoryIndependentKeys(t *testing.T) {
	m := NewMemory(100, time.Minute)
	ctx := context.Background()

	// u1 的回源阻塞时，其他 key 的读取不受影响
	block := make(chan struct{})
	go func() {
		_, _ = m.GetPosts(ctx, "u1", func(context.Context) ([]*model.Post, error) {
			<-block
			return nil, nil
		})
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		var calls atomic.Int64
		for i := 0; i < 50; i++ {
			_, err := m.GetPosts(ctx, fmt.Sprintf("other-%d", i), countingLoader(nil, &calls))
			assert.NoError(t, err)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reads for unrelated keys blocked")
	}
	close(block)
}

func TestMemorySingleFlightContextCancel(t *testing.T) {
	m := NewMemory(10, time.Minute)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = m.GetPosts(context.Background(), "u1", func(context.Context) ([]*model.Post, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.GetPosts(ctx, "u1", func(context.Context) ([]*model.Post, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}
