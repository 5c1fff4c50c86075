package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/miniblog/internal/model"
)

// ErrPostNotFound 删除/查询的帖子不存在
var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	Create(ctx context.Context, userID, text string) (*model.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Post, error)
	FindByID(ctx context.Context, postID string) (*model.Post, error)
	Delete(ctx context.Context, postID string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, userID, text string) (*model.Post, error) {
	p := &model.Post{ID: uuid.New().String(), UserID: userID, Text: text}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&res).Error
	return res, err
}

func (r *postRepository) FindByID(ctx context.Context, postID string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ?", postID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Delete(ctx context.Context, postID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", postID).Delete(&model.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}
