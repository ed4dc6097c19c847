package handler

import (
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

// LikeHandler 视频与评论的点赞
type LikeHandler struct {
	videoService   *service.VideoService
	commentService *service.CommentService
}

func NewLikeHandler(videoService *service.VideoService, commentService *service.CommentService) *LikeHandler {
	return &LikeHandler{videoService: videoService, commentService: commentService}
}

// LikeVideo 点赞视频
// @Summary 点赞视频
// @Tags 点赞
// @Produce json
// @Security BearerAuth
// @Param id path int true "视频ID"
// @Success 200 {object} dto.VideoInfo
// @Failure 400 {object} response.ErrorResponse "已点赞"
// @Router /videos/{id}/like [post]
func (h *LikeHandler) LikeVideo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	info, err := h.videoService.Like(id, middleware.GetCurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// UnlikeVideo 取消点赞，DELETE /videos/:id/like 与 POST /videos/:id/unlike 等价
// @Summary 取消点赞视频
// @Tags 点赞
// @Produce json
// @Security BearerAuth
// @Param id path int true "视频ID"
// @Success 200 {object} dto.VideoInfo
// @Failure 400 {object} response.ErrorResponse "未点赞"
// @Router /videos/{id}/like [delete]
func (h *LikeHandler) UnlikeVideo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	info, err := h.videoService.Unlike(id, middleware.GetCurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// LikeStatus GET /videos/:id/like
func (h *LikeHandler) LikeStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status, err := h.videoService.LikeStatus(id, middleware.GetCurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, status)
}

// ListLikers GET /videos/:id/likes
func (h *LikeHandler) ListLikers(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	skip, limit, ok := parseSkipLimit(c)
	if !ok {
		return
	}

	users, err := h.videoService.ListLikers(id, middleware.GetCurrentUserID(c), skip, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, users)
}

// LikeComment POST /videos/comments/:id/like
func (h *LikeHandler) LikeComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	info, err := h.commentService.Like(id, middleware.GetCurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// UnlikeComment POST /videos/comments/:id/unlike
func (h *LikeHandler) UnlikeComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	info, err := h.commentService.Unlike(id, middleware.GetCurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}
