package dto

// UserUpdateRequest 当前用户信息更新请求，nil 字段不修改
type UserUpdateRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
	Password *string `json:"password" binding:"omitempty,min=6,max=128"`
}

// ChannelInfo 频道信息（用户 + 订阅数）
type ChannelInfo struct {
	UserInfo
	SubscribersCount int64 `json:"subscribers_count"`
	Subscribed       bool  `json:"subscribed"`
}
