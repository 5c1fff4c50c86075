package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/miniblog/internal/model"
	"github.com/d60-Lab/miniblog/pkg/logger"
)

// Redis 跨进程部署时的帖子列表缓存，TTL 交给 Redis 过期机制。
// 写缓存为 best effort，Redis 不可用时退化为纯回源。
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Redis{client: client, ttl: ttl}
}

func postsKey(userID string) string { return "posts:" + userID }

func (r *Redis) GetPosts(ctx context.Context, userID string, load Loader) ([]*model.Post, error) {
	key := postsKey(userID)
	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var out []*model.Post
		if uErr := json.Unmarshal(data, &out); uErr == nil {
			return out, nil
		}
	}

	posts, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if payload, mErr := json.Marshal(posts); mErr == nil {
		if sErr := r.client.Set(ctx, key, payload, r.ttl).Err(); sErr != nil {
			logger.Warn("cache set failed", zap.String("user", userID), zap.Error(sErr))
		}
	}
	return posts, nil
}

func (r *Redis) Invalidate(ctx context.Context, userID string) {
	if err := r.client.Del(ctx, postsKey(userID)).Err(); err != nil {
		logger.Warn("cache invalidate failed", zap.String("user", userID), zap.Error(err))
	}
}
