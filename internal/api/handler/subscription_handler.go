package handler

import (
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subService *service.SubscriptionService
}

func NewSubscriptionHandler(subService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subService: subService}
}

// Subscribe 订阅频道
// @Summary 订阅用户
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Param username path string true "频道用户名"
// @Success 200 {object} dto.ChannelInfo
// @Failure 400 {object} response.ErrorResponse "不能订阅自己或已订阅"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /users/{username}/subscribe [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	info, err := h.subService.Subscribe(middleware.GetCurrentUserID(c), c.Param("username"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// Unsubscribe 取消订阅
// @Summary 取消订阅
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Param username path string true "频道用户名"
// @Success 200 {object} dto.ChannelInfo
// @Failure 400 {object} response.ErrorResponse "未订阅"
// @Router /users/{username}/unsubscribe [post]
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	info, err := h.subService.Unsubscribe(middleware.GetCurrentUserID(c), c.Param("username"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, info)
}

// ListSubscribers GET /users/:username/subscribers
func (h *SubscriptionHandler) ListSubscribers(c *gin.Context) {
	skip, limit, ok := parseSkipLimit(c)
	if !ok {
		return
	}
	users, err := h.subService.ListSubscribers(c.Param("username"), skip, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, users)
}

// ListMySubscriptions GET /users/me/subscriptions
func (h *SubscriptionHandler) ListMySubscriptions(c *gin.Context) {
	skip, limit, ok := parseSkipLimit(c)
	if !ok {
		return
	}
	users, err := h.subService.ListSubscriptions(middleware.GetCurrentUserID(c), skip, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, users)
}
