package handler

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchVideos 搜索视频
// @Summary 搜索视频
// @Description 按关键词匹配标题或描述（不区分大小写），仅返回公开视频
// @Tags 搜索
// @Produce json
// @Param query query string false "关键词"
// @Param uploader query string false "上传者用户名"
// @Param min_duration query int false "最短时长（秒）"
// @Param max_duration query int false "最长时长（秒）"
// @Param sort_by query string false "排序字段: created_at, views, duration" default(created_at)
// @Param sort_order query string false "排序方向: asc, desc" default(desc)
// @Param limit query int false "数量" default(10)
// @Param offset query int false "偏移" default(0)
// @Success 200 {array} dto.VideoInfo
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Router /search/videos [get]
func (h *SearchHandler) SearchVideos(c *gin.Context) {
	var req dto.SearchVideoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	videos, err := h.searchService.Search(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, videos)
}

// Trending 播放量最高的公开视频
// @Summary 热门视频
// @Tags 搜索
// @Produce json
// @Param limit query int false "数量" default(10)
// @Success 200 {array} dto.VideoInfo
// @Router /search/trending [get]
func (h *SearchHandler) Trending(c *gin.Context) {
	var req dto.TopListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	videos, err := h.searchService.Trending(c.Request.Context(), req.Limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, videos)
}

// Latest GET /search/latest
func (h *SearchHandler) Latest(c *gin.Context) {
	var req dto.TopListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	videos, err := h.searchService.Latest(c.Request.Context(), req.Limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, videos)
}
