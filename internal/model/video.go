package model

import "time"

// Video 视频模型
type Video struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;comment:视频标识" json:"id"`
	UploaderID    int64     `gorm:"not null;index:idx_videos_uploader_id;comment:上传者ID" json:"uploader_id"`
	Title         string    `gorm:"size:200;not null;comment:视频标题" json:"title"`
	Description   *string   `gorm:"type:text;comment:视频描述" json:"description"`
	FilePath      string    `gorm:"size:255;not null;comment:视频文件名" json:"file_path"`
	ThumbnailPath *string   `gorm:"size:255;comment:缩略图文件名" json:"thumbnail_path"`
	Duration      int       `gorm:"not null;default:0;comment:视频时长（秒）" json:"duration"`
	Views         int64     `gorm:"not null;default:0;index:idx_videos_views;comment:播放量" json:"views"`
	IsPrivate     bool      `gorm:"not null;default:false;index:idx_videos_is_private;comment:是否私密" json:"is_private"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_videos_created_at;comment:创建时间" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系，仅显式 Preload
	Uploader User `gorm:"foreignKey:UploaderID" json:"-"`
}

func (Video) TableName() string {
	return "videos"
}

// VisibleTo 私密视频只对上传者可见
func (v *Video) VisibleTo(userID int64) bool {
	return !v.IsPrivate || v.UploaderID == userID
}
