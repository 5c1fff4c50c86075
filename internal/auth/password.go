package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword 生成加盐单向哈希，同一明文每次结果不同但均可校验
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword 恒定时间比较，任何不匹配都返回 false 而非错误
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
