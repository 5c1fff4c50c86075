package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken 签名不符、载荷损坏、缺少 subject 或已过期，统一归为此错误
var ErrInvalidToken = errors.New("invalid token")

// TokenService 签发与校验无状态 bearer token。
// 对称密钥随服务注入，同一密钥签发的 token 才能通过校验；
// 服务端不保存会话，过期前无法吊销。
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration

	now func() time.Time
}

func NewTokenService(secret, algorithm string, defaultTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("token: unknown signing algorithm %q", algorithm)
	}
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	return &TokenService{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// Issue 生成携带 subject 与绝对过期时间的 token，ttl<=0 时取默认值
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// DefaultTTL 返回签发时的默认有效期
func (s *TokenService) DefaultTTL() time.Duration { return s.defaultTTL }

// Verify 校验签名与过期时间，返回 subject。
// 任何解析失败都折叠为 ErrInvalidToken，不向调用方区分原因。
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// 拒绝与配置不一致的签名算法，防止算法替换
		if t.Method.Alg() != s.method.Alg() {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
