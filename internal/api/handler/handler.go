package handler

import (
	"github.com/d60-Lab/miniblog/internal/service"
)

// Handler 聚合各业务 service，供路由注册
type Handler struct {
	authService service.AuthService
	postService service.PostService
}

func NewHandler(authService service.AuthService, postService service.PostService) *Handler {
	return &Handler{authService: authService, postService: postService}
}

// AuthService 暴露给鉴权中间件使用
func (h *Handler) AuthService() service.AuthService { return h.authService }
