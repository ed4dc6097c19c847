package handler

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type WatchHistoryHandler struct {
	historyService *service.WatchHistoryService
}

func NewWatchHistoryHandler(historyService *service.WatchHistoryService) *WatchHistoryHandler {
	return &WatchHistoryHandler{historyService: historyService}
}

// Record 上报观看进度，同一视频只保留一条记录
// @Summary 记录观看进度
// @Tags 观看历史
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "视频ID"
// @Param request body dto.WatchHistoryRequest true "播放位置（秒）"
// @Success 200 {object} dto.WatchHistoryInfo
// @Router /videos/{id}/watch-history [post]
func (h *WatchHistoryHandler) Record(c *gin.Context) {
	videoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.WatchHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.historyService.Record(videoID, middleware.GetCurrentUserID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// List GET /videos/watch-history
func (h *WatchHistoryHandler) List(c *gin.Context) {
	skip, limit, ok := parseSkipLimit(c)
	if !ok {
		return
	}

	items, err := h.historyService.List(middleware.GetCurrentUserID(c), skip, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, items)
}
