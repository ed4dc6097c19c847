package middleware

import (
	"strings"

	"vidhub-go/internal/api/response"
	"vidhub-go/internal/model"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

const ContextKeyUser = "currentUser"

// TokenResolver 把访问令牌解析为有效用户
type TokenResolver interface {
	ResolveToken(token string) (*model.User, error)
}

// AuthRequired 要求请求携带有效 Bearer Token
func AuthRequired(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "缺少认证令牌")
			return
		}

		user, err := resolver.ResolveToken(token)
		if err != nil {
			response.Unauthorized(c, service.MessageOf(err))
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// AuthOptional 有合法 Token 时注入当前用户，否则按匿名继续
func AuthOptional(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if user, err := resolver.ResolveToken(token); err == nil {
				c.Set(ContextKeyUser, user)
			}
		}
		c.Next()
	}
}

// GetCurrentUser 从 Gin Context 中获取当前登录用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok
}

// GetCurrentUserID 当前用户 ID，匿名时为 0
func GetCurrentUserID(c *gin.Context) int64 {
	if user, ok := GetCurrentUser(c); ok {
		return user.ID
	}
	return 0
}

// extractToken 从 Authorization 头中提取 Bearer Token
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
