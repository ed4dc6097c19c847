package dto

import "time"

// VideoUploadRequest 视频上传请求（multipart/form-data），文件字段单独读取
type VideoUploadRequest struct {
	Title       string `form:"title" binding:"required,min=1,max=200"`
	Description string `form:"description" binding:"omitempty,max=5000"`
	IsPrivate   bool   `form:"is_private"`
}

// VideoUpdateRequest 视频更新请求
type VideoUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	IsPrivate   *bool   `json:"is_private"`
}

// VideoInfo 视频详情
type VideoInfo struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	IsPrivate     bool      `json:"is_private"`
	FilePath      string    `json:"file_path"`
	ThumbnailPath *string   `json:"thumbnail_path"`
	Duration      int       `json:"duration"`
	Views         int64     `json:"views"`
	LikesCount    int64     `json:"likes_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UploaderID    int64     `json:"uploader_id"`
	Uploader      *UserInfo `json:"uploader,omitempty"`
}

// LikeStatus 点赞状态
type LikeStatus struct {
	VideoID    int64 `json:"video_id"`
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}
