package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/miniblog/internal/repository"
	"github.com/d60-Lab/miniblog/internal/service"
	"github.com/d60-Lab/miniblog/pkg/response"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1"`
}

// Signup 注册并直接签发 token
// @Summary 用户注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body credentialsRequest true "注册信息"
// @Success 200 {object} response.Response{data=service.TokenResult}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, err := h.authService.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.Conflict(c, "email already registered")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, token)
}

// Login 校验凭证并签发 token
// @Summary 用户登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body credentialsRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.TokenResult}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, token)
}
