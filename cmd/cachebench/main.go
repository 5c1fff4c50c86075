package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/miniblog/internal/cache"
	"github.com/d60-Lab/miniblog/internal/model"
	"github.com/d60-Lab/miniblog/internal/repository"
)

// 对比帖子列表三种读取策略：直连 DB、进程内 LRU+TTL、Redis
func main() {
	ctx := context.Background()

	var db *gorm.DB
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db = must(gorm.Open(postgres.Open(dsn), &gorm.Config{}))
		mustDo(db.Exec("DROP TABLE IF EXISTS posts CASCADE").Error)
		mustDo(db.Exec("DROP TABLE IF EXISTS users CASCADE").Error)
	} else {
		db = must(gorm.Open(sqlite.Open(":memory:"), &gorm.Config{}))
	}
	mustDo(db.AutoMigrate(&model.User{}, &model.Post{}))

	const (
		userCount    = 500
		postsPerUser = 50
		requests     = 20000
		ttl          = 5 * time.Minute
	)

	fmt.Println("Seeding test data...")
	users := make([]model.User, userCount)
	for i := range users {
		users[i] = model.User{ID: uuid.NewString(), Email: fmt.Sprintf("user_%d@example.com", i), PasswordHash: "x"}
	}
	mustDo(db.CreateInBatches(&users, 500).Error)
	posts := make([]model.Post, 0, userCount*postsPerUser)
	for _, u := range users {
		for j := 0; j < postsPerUser; j++ {
			posts = append(posts, model.Post{ID: uuid.NewString(), UserID: u.ID, Text: fmt.Sprintf("post %d", j)})
		}
	}
	mustDo(db.CreateInBatches(&posts, 1000).Error)
	fmt.Printf("Test data ready: %d users x %d posts\n", userCount, postsPerUser)

	postRepo := repository.NewPostRepository(db)

	var loads atomic.Int64
	loaderFor := func(userID string) cache.Loader {
		return func(ctx context.Context) ([]*model.Post, error) {
			loads.Add(1)
			return postRepo.ListByUser(ctx, userID)
		}
	}

	// 请求按 zipf 倾斜，贴近少数活跃用户占多数读取的形态
	r := rand.New(rand.NewSource(1))
	zipf := rand.NewZipf(r, 1.2, 1, userCount-1)
	reqs := make([]string, requests)
	for i := range reqs {
		reqs[i] = users[zipf.Uint64()].ID
	}

	run := func(name string, get func(ctx context.Context, userID string) ([]*model.Post, error)) {
		loads.Store(0)
		durations := make([]time.Duration, 0, len(reqs))
		for _, userID := range reqs {
			start := time.Now()
			if _, err := get(ctx, userID); err != nil {
				panic(err)
			}
			durations = append(durations, time.Since(start))
		}
		fmt.Printf("%-14s avg=%v p95=%v p99=%v db_loads=%d\n",
			name, avg(durations), pct(durations, 0.95), pct(durations, 0.99), loads.Load())
	}

	run("No cache", func(ctx context.Context, userID string) ([]*model.Post, error) {
		return loaderFor(userID)(ctx)
	})

	mem := cache.NewMemory(userCount/2, ttl)
	run("Memory LRU", func(ctx context.Context, userID string) ([]*model.Post, error) {
		return mem.GetPosts(ctx, userID, loaderFor(userID))
	})

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
		}
		client.FlushAll(ctx)
		rc := cache.NewRedis(client, ttl)
		run("Redis", func(ctx context.Context, userID string) ([]*model.Post, error) {
			return rc.GetPosts(ctx, userID, loaderFor(userID))
		})
	}
}

func avg(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return total / time.Duration(len(ds))
}

func pct(ds []time.Duration, p float64) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(ds))
	copy(sorted, ds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
