package dto

import "time"

// TokenRequest OAuth2 密码模式登录表单
type TokenRequest struct {
	Username string `form:"username" binding:"required,min=1,max=50"`
	Password string `form:"password" binding:"required,min=1,max=128"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Email    string  `json:"email" binding:"required,email,max=255"`
	Password string  `json:"password" binding:"required,min=6,max=128"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
}

// TokenData 登录成功返回的 Token 信息
type TokenData struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserInfo 用户公开信息（不含密码哈希）
type UserInfo struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FullName       *string   `json:"full_name"`
	Bio            *string   `json:"bio"`
	ProfilePicture *string   `json:"profile_picture"`
	BannerImage    *string   `json:"banner_image"`
	CreatedAt      time.Time `json:"created_at"`
	IsActive       bool      `json:"is_active"`
}
