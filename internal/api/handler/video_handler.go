package handler

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/media"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	videoService *service.VideoService
	limits       UploadLimits
}

func NewVideoHandler(videoService *service.VideoService, limits UploadLimits) *VideoHandler {
	return &VideoHandler{videoService: videoService, limits: limits}
}

// Upload 上传视频
// @Summary 上传视频
// @Description 上传视频文件，可选附带缩略图；未提供缩略图时从视频截帧生成
// @Tags 视频
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "标题"
// @Param description formData string false "描述"
// @Param is_private formData bool false "是否私密"
// @Param video_file formData file true "视频文件"
// @Param thumbnail_file formData file false "缩略图"
// @Success 201 {object} dto.VideoInfo
// @Failure 400 {object} response.ErrorResponse "文件类型不符或参数无效"
// @Failure 500 {object} response.ErrorResponse "上传失败"
// @Router /videos/ [post]
func (h *VideoHandler) Upload(c *gin.Context) {
	limitBody(c, h.limits.MaxVideoBytes+h.limits.MaxImageBytes)

	var req dto.VideoUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	video, vf, ok := openFormFile(c, "video_file", h.limits.MaxVideoBytes, true)
	if !ok {
		return
	}
	defer vf.Close()

	thumb, tf, ok := openFormFile(c, "thumbnail_file", h.limits.MaxImageBytes, false)
	if !ok {
		return
	}
	if tf != nil {
		defer tf.Close()
	}

	info, err := h.videoService.Upload(c.Request.Context(), middleware.GetCurrentUserID(c), &req, *video, thumb)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, info)
}

// List 公开视频列表（按上传时间倒序）
// @Summary 视频列表
// @Tags 视频
// @Produce json
// @Param skip query int false "偏移" default(0)
// @Param limit query int false "数量" default(10)
// @Success 200 {array} dto.VideoInfo
// @Router /videos/ [get]
func (h *VideoHandler) List(c *gin.Context) {
	skip, limit, ok := parseSkipLimit(c)
	if !ok {
		return
	}

	videos, err := h.videoService.List(skip, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, videos)
}

// Get 视频详情，每次访问播放量加一
// @Summary 视频详情
// @Tags 视频
// @Produce json
// @Param id path int true "视频ID"
// @Success 200 {object} dto.VideoInfo
// @Failure 403 {object} response.ErrorResponse "私密视频"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /videos/{id} [get]
func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	info, err := h.videoService.Get(c.Request.Context(), id, middleware.GetCurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// Update PUT /videos/:id
func (h *VideoHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.VideoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.videoService.Update(c.Request.Context(), id, middleware.GetCurrentUserID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// Delete DELETE /videos/:id
func (h *VideoHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), id, middleware.GetCurrentUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateThumbnail POST /videos/:id/thumbnail
func (h *VideoHandler) UpdateThumbnail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	limitBody(c, h.limits.MaxImageBytes)
	up, f, ok := openFormFile(c, "file", h.limits.MaxImageBytes, true)
	if !ok {
		return
	}
	defer f.Close()

	info, err := h.videoService.UpdateThumbnail(c.Request.Context(), id, middleware.GetCurrentUserID(c), *up)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// ServeFile GET /videos/file/:filename
func (h *VideoHandler) ServeFile(c *gin.Context) {
	h.serve(c, media.CategoryVideo)
}

// ServeThumbnail GET /videos/thumbnail/:filename
func (h *VideoHandler) ServeThumbnail(c *gin.Context) {
	h.serve(c, media.CategoryThumbnail)
}

func (h *VideoHandler) serve(c *gin.Context, cat media.Category) {
	name := c.Param("filename")
	obj, err := h.videoService.OpenFile(c.Request.Context(), cat, name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	serveObject(c, obj, name)
}
