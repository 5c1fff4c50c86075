package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/miniblog/internal/auth"
	"github.com/d60-Lab/miniblog/internal/model"
	"github.com/d60-Lab/miniblog/internal/repository"
)

var (
	// ErrInvalidCredentials 邮箱不存在与密码错误对外不作区分
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized token 缺失/损坏/过期/指向未知用户，统一折叠
	ErrUnauthorized = errors.New("unauthorized")
)

// TokenResult 签发结果，随 signup/login 返回
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AuthService 注册、登录与 token 鉴权
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*TokenResult, error)
	Login(ctx context.Context, email, password string) (*TokenResult, error)
	// Authenticate 是所有需要身份的操作的前置门：校验 token 并解析出用户
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenService) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Signup(ctx context.Context, email, password string) (*TokenResult, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.Create(ctx, email, hash); err != nil {
		return nil, err
	}
	return s.issue(email)
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(email)
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	subject, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.FindByEmail(ctx, subject)
	if err != nil {
		// 未知用户与坏 token 同样返回 Unauthorized，避免泄露账号是否存在
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) issue(email string) (*TokenResult, error) {
	token, err := s.tokens.Issue(email, 0)
	if err != nil {
		return nil, err
	}
	return &TokenResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.DefaultTTL().Seconds()),
	}, nil
}
