package cache

import (
	"container/list"
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/d60-Lab/miniblog/internal/model"
)

const defaultShardCount = 16

// Memory 进程内帖子列表缓存。按 key 分片，分片之间互不阻塞；
// 每个条目带写入时间戳，超过 TTL 视为不存在；容量满时按 LRU 淘汰。
// 同一 key 的并发未命中合并为一次回源（single-flight）。
type Memory struct {
	shards []*shard
	ttl    time.Duration

	now func() time.Time
}

type shard struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // 队首为最近使用
	inflight map[string]*flight
}

type entry struct {
	userID   string
	posts    []*model.Post
	storedAt time.Time
}

type flight struct {
	done  chan struct{}
	posts []*model.Post
	err   error
}

func NewMemory(capacity int, ttl time.Duration) *Memory {
	return newMemory(capacity, ttl, defaultShardCount)
}

func newMemory(capacity int, ttl time.Duration, shardCount int) *Memory {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	if shardCount > capacity {
		shardCount = 1
	}
	perShard := (capacity + shardCount - 1) / shardCount
	m := &Memory{shards: make([]*shard, shardCount), ttl: ttl, now: time.Now}
	for i := range m.shards {
		m.shards[i] = &shard{
			capacity: perShard,
			entries:  make(map[string]*list.Element),
			order:    list.New(),
			inflight: make(map[string]*flight),
		}
	}
	return m
}

func (m *Memory) shardFor(userID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

func (m *Memory) GetPosts(ctx context.Context, userID string, load Loader) ([]*model.Post, error) {
	sh := m.shardFor(userID)

	sh.mu.Lock()
	if el, ok := sh.entries[userID]; ok {
		e := el.Value.(*entry)
		if m.now().Sub(e.storedAt) < m.ttl {
			sh.order.MoveToFront(el)
			posts := e.posts
			sh.mu.Unlock()
			return posts, nil
		}
		// 过期条目视为不存在
		sh.order.Remove(el)
		delete(sh.entries, userID)
	}
	if f, ok := sh.inflight[userID]; ok {
		// 已有同 key 回源在途，等待其结果
		sh.mu.Unlock()
		select {
		case <-f.done:
			return f.posts, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	sh.inflight[userID] = f
	sh.mu.Unlock()

	// 回源不持锁，避免锁跨越阻塞调用
	posts, err := load(ctx)

	sh.mu.Lock()
	delete(sh.inflight, userID)
	if err == nil {
		sh.store(userID, posts, m.now())
	}
	sh.mu.Unlock()

	f.posts, f.err = posts, err
	close(f.done)
	return posts, err
}

func (m *Memory) Invalidate(_ context.Context, userID string) {
	sh := m.shardFor(userID)
	sh.mu.Lock()
	if el, ok := sh.entries[userID]; ok {
		sh.order.Remove(el)
		delete(sh.entries, userID)
	}
	sh.mu.Unlock()
}

// store 持锁调用。容量已满时淘汰最久未使用的一个条目。
func (sh *shard) store(userID string, posts []*model.Post, now time.Time) {
	if el, ok := sh.entries[userID]; ok {
		e := el.Value.(*entry)
		e.posts = posts
		e.storedAt = now
		sh.order.MoveToFront(el)
		return
	}
	if sh.order.Len() >= sh.capacity {
		oldest := sh.order.Back()
		if oldest != nil {
			sh.order.Remove(oldest)
			delete(sh.entries, oldest.Value.(*entry).userID)
		}
	}
	sh.entries[userID] = sh.order.PushFront(&entry{userID: userID, posts: posts, storedAt: now})
}
