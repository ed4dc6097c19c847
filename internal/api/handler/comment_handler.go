package handler

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create 发表评论或回复
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "视频ID"
// @Param request body dto.CommentCreateRequest true "评论内容"
// @Success 201 {object} dto.CommentInfo
// @Failure 400 {object} response.ErrorResponse "父评论不属于该视频"
// @Failure 404 {object} response.ErrorResponse "视频或父评论不存在"
// @Router /videos/{id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.commentService.Create(videoID, middleware.GetCurrentUserID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, info)
}

// ListByVideo 视频的顶层评论
// @Summary 评论列表
// @Tags 评论
// @Produce json
// @Param id path int true "视频ID"
// @Param skip query int false "偏移" default(0)
// @Param limit query int false "数量" default(10)
// @Success 200 {array} dto.CommentInfo
// @Router /videos/{id}/comments [get]
func (h *CommentHandler) ListByVideo(c *gin.Context) {
	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	skip, limit, ok := parseSkipLimit(c)
	if !ok {
		return
	}

	comments, err := h.commentService.ListByVideo(videoID, middleware.GetCurrentUserID(c), skip, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, comments)
}

// ListReplies GET /videos/comments/:id/replies
func (h *CommentHandler) ListReplies(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	skip, limit, ok := parseSkipLimit(c)
	if !ok {
		return
	}

	replies, err := h.commentService.ListReplies(commentID, middleware.GetCurrentUserID(c), skip, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, replies)
}

// Update PUT /videos/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.commentService.Update(commentID, middleware.GetCurrentUserID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// Delete DELETE /videos/comments/:id，回复随之删除
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(commentID, middleware.GetCurrentUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.NoContent(c)
}
