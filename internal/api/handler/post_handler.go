package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/miniblog/internal/api/middleware"
	"github.com/d60-Lab/miniblog/internal/repository"
	"github.com/d60-Lab/miniblog/internal/service"
	"github.com/d60-Lab/miniblog/pkg/response"
)

type createPostRequest struct {
	Text string `json:"text" binding:"required,notblank,max=1000000"`
}

// CreatePost 发布帖子
// @Summary 发布帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user := middleware.CurrentUser(c)
	postID, err := h.postService.Create(c.Request.Context(), user.ID, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrTextTooLong) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"post_id": postID})
}

// ListPosts 查询当前用户的全部帖子（短 TTL 缓存）
// @Summary 查询我的帖子
// @Tags 帖子
// @Produce json
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	user := middleware.CurrentUser(c)
	posts, err := h.postService.List(c.Request.Context(), user.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"posts": posts})
}

// DeletePost 按 id 删除帖子
// @Summary 删除帖子
// @Tags 帖子
// @Produce json
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{post_id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	postID := c.Param("post_id")
	if err := h.postService.Delete(c.Request.Context(), postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
