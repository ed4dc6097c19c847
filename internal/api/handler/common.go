package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"vidhub-go/internal/api/response"
	"vidhub-go/internal/media"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// UploadLimits 上传文件大小上限（字节）
type UploadLimits struct {
	MaxVideoBytes int64
	MaxImageBytes int64
}

// kindStatus 领域错误类别到 HTTP 状态码
var kindStatus = map[service.Kind]int{
	service.KindNotFound:         http.StatusNotFound,
	service.KindForbidden:        http.StatusForbidden,
	service.KindConflict:         http.StatusBadRequest,
	service.KindInvalidMediaType: http.StatusBadRequest,
	service.KindBadRequest:       http.StatusBadRequest,
	service.KindUnauthorized:     http.StatusUnauthorized,
	service.KindUploadFailed:     http.StatusInternalServerError,
	service.KindInternal:         http.StatusInternalServerError,
}

// handleServiceError 统一把 service 错误写成错误响应
func handleServiceError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	if kind == service.KindUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	response.Fail(c, status, string(kind), service.MessageOf(err))
}

// parseIDParam 解析路径中的正整数 ID
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的ID: "+c.Param(name))
		return 0, false
	}
	return id, true
}

// parseSkipLimit 解析 skip/limit 分页参数
func parseSkipLimit(c *gin.Context) (int, int, bool) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		response.BadRequest(c, "skip 必须是非负整数")
		return 0, 0, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		response.BadRequest(c, "limit 必须是正整数")
		return 0, 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit, true
}

// limitBody 限制请求体总大小，额外留 1MB 给其他表单字段
func limitBody(c *gin.Context, max int64) {
	if max > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max+1<<20)
	}
}

// openFormFile 读取 multipart 文件字段；required 为 false 且字段缺失时返回 nil
func openFormFile(c *gin.Context, field string, max int64, required bool) (*media.Upload, multipart.File, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(c, "上传文件过大")
			return nil, nil, false
		}
		if errors.Is(err, http.ErrMissingFile) && !required {
			return nil, nil, true
		}
		response.BadRequest(c, fmt.Sprintf("缺少上传文件 %s", field))
		return nil, nil, false
	}

	if max > 0 && fh.Size > max {
		response.BadRequest(c, fmt.Sprintf("文件大小不能超过 %d MB", max>>20))
		return nil, nil, false
	}

	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, "打开上传文件失败")
		return nil, nil, false
	}

	return &media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, f, true
}

// serveObject 以 Range 友好的方式输出媒体文件
func serveObject(c *gin.Context, obj *media.Object, name string) {
	defer obj.Body.Close()
	if obj.ContentType != "" {
		c.Header("Content-Type", obj.ContentType)
	}
	http.ServeContent(c.Writer, c.Request, name, obj.ModTime, obj.Body)
}
