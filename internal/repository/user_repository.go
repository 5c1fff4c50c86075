package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/miniblog/internal/model"
)

var (
	// ErrDuplicateEmail 注册时邮箱已存在
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound 按邮箱查询无记录
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	u := &model.User{ID: uuid.New().String(), Email: email, PasswordHash: passwordHash}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		// 唯一键冲突在此边界翻译，不向上层泄露存储细节
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
