package handler

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/media"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService  *service.UserService
	videoService *service.VideoService
	limits       UploadLimits
}

func NewUserHandler(userService *service.UserService, videoService *service.VideoService, limits UploadLimits) *UserHandler {
	return &UserHandler{userService: userService, videoService: videoService, limits: limits}
}

// GetMe 获取当前用户信息
// @Summary 当前用户
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Failure 401 {object} response.ErrorResponse "未认证"
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	response.OK(c, service.ToUserInfo(user))
}

// UpdateMe 更新当前用户资料
// @Summary 更新当前用户
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UserUpdateRequest true "更新字段"
// @Success 200 {object} dto.UserInfo
// @Failure 400 {object} response.ErrorResponse "用户名或邮箱已被占用"
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.userService.UpdateMe(middleware.GetCurrentUserID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// UploadProfilePicture POST /users/me/profile-picture
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	h.uploadImage(c, media.CategoryProfilePicture)
}

// UploadBanner POST /users/me/banner
func (h *UserHandler) UploadBanner(c *gin.Context) {
	h.uploadImage(c, media.CategoryBanner)
}

func (h *UserHandler) uploadImage(c *gin.Context, cat media.Category) {
	limitBody(c, h.limits.MaxImageBytes)
	up, f, ok := openFormFile(c, "file", h.limits.MaxImageBytes, true)
	if !ok {
		return
	}
	defer f.Close()

	userID := middleware.GetCurrentUserID(c)
	var (
		info *dto.UserInfo
		err  error
	)
	if cat == media.CategoryBanner {
		info, err = h.userService.SetBanner(c.Request.Context(), userID, *up)
	} else {
		info, err = h.userService.SetProfilePicture(c.Request.Context(), userID, *up)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// GetUser 用户主页信息
// @Summary 查询用户
// @Tags 用户
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} dto.ChannelInfo
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /users/{username} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	info, err := h.userService.GetChannel(c.Param("username"), middleware.GetCurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// ListVideos 用户上传的视频，本人可见私密视频
// @Summary 用户视频列表
// @Tags 用户
// @Produce json
// @Param username path string true "用户名"
// @Param skip query int false "偏移" default(0)
// @Param limit query int false "数量" default(10)
// @Success 200 {array} dto.VideoInfo
// @Router /users/{username}/videos [get]
func (h *UserHandler) ListVideos(c *gin.Context) {
	skip, limit, ok := parseSkipLimit(c)
	if !ok {
		return
	}

	videos, err := h.videoService.ListByUploader(c.Param("username"), middleware.GetCurrentUserID(c), skip, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, videos)
}

// ServeProfilePicture GET /users/files/profile-picture/:filename
func (h *UserHandler) ServeProfilePicture(c *gin.Context) {
	h.serveImage(c, media.CategoryProfilePicture)
}

// ServeBanner GET /users/files/banner/:filename
func (h *UserHandler) ServeBanner(c *gin.Context) {
	h.serveImage(c, media.CategoryBanner)
}

func (h *UserHandler) serveImage(c *gin.Context, cat media.Category) {
	name := c.Param("filename")
	obj, err := h.userService.OpenImage(c.Request.Context(), cat, name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	serveObject(c, obj, name)
}
