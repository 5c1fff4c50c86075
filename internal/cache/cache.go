// Package cache fronts the per-user post listing read path.
// Implementations are safe for concurrent use; a miss is a normal path,
// never an error.
package cache

import (
	"context"

	"github.com/d60-Lab/miniblog/internal/model"
)

// Loader 回源函数，缓存未命中时调用一次
type Loader func(ctx context.Context) ([]*model.Post, error)

type PostCache interface {
	// GetPosts 命中时直接返回缓存值；未命中时调用 load 并写入缓存。
	// 同一 key 的并发未命中由实现保证回源结果一致。
	GetPosts(ctx context.Context, userID string, load Loader) ([]*model.Post, error)

	// Invalidate 写后失效：创建/删除帖子后调用，使该用户的缓存立即不可用
	Invalidate(ctx context.Context, userID string)
}
