package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/miniblog/internal/cache"
	"github.com/d60-Lab/miniblog/internal/model"
	"github.com/d60-Lab/miniblog/internal/repository"
)

// MaxPostLength 帖子正文长度上限（字符数）
const MaxPostLength = 1_000_000

// ErrTextTooLong 正文超出长度上限
var ErrTextTooLong = errors.New("post text too long")

// PostService 帖子读写，列表读取经过缓存
type PostService interface {
	Create(ctx context.Context, userID, text string) (string, error)
	List(ctx context.Context, userID string) ([]*model.Post, error)
	Delete(ctx context.Context, postID string) error
}

type postService struct {
	postRepo repository.PostRepository
	cache    cache.PostCache
}

func NewPostService(postRepo repository.PostRepository, postCache cache.PostCache) PostService {
	return &postService{postRepo: postRepo, cache: postCache}
}

func (s *postService) Create(ctx context.Context, userID, text string) (string, error) {
	if len([]rune(text)) > MaxPostLength {
		return "", ErrTextTooLong
	}
	post, err := s.postRepo.Create(ctx, userID, text)
	if err != nil {
		return "", err
	}
	// 写后失效，保证作者紧随其后的列表读取不落到过期缓存
	s.cache.Invalidate(ctx, userID)
	return post.ID, nil
}

func (s *postService) List(ctx context.Context, userID string) ([]*model.Post, error) {
	return s.cache.GetPosts(ctx, userID, func(ctx context.Context) ([]*model.Post, error) {
		return s.postRepo.ListByUser(ctx, userID)
	})
}

func (s *postService) Delete(ctx context.Context, postID string) error {
	// 先查作者，删除成功后失效其缓存条目
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, post.UserID)
	return nil
}
