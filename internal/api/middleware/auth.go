package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/miniblog/internal/model"
	"github.com/d60-Lab/miniblog/internal/service"
	"github.com/d60-Lab/miniblog/pkg/response"
)

const userKey = "auth.user"

// Auth 鉴权门：解析 Bearer token 并把已认证用户写入上下文。
// token 缺失、损坏、过期或指向未知用户一律 401。
func Auth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(c, "unauthorized access")
			return
		}
		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "unauthorized access")
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser 取出 Auth 中间件写入的用户，仅在受保护路由内调用
func CurrentUser(c *gin.Context) *model.User {
	return c.MustGet(userKey).(*model.User)
}
