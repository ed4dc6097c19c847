package model

import "time"

// WatchHistory 观看记录，每个 (用户, 视频) 至多一条
type WatchHistory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uq_watch_user_video,priority:1;comment:用户ID" json:"user_id"`
	VideoID   int64     `gorm:"not null;uniqueIndex:uq_watch_user_video,priority:2;index:idx_watch_video_id;comment:视频ID" json:"video_id"`
	Timestamp int       `gorm:"not null;default:0;comment:观看进度（秒）" json:"timestamp"`
	WatchedAt time.Time `gorm:"not null;index:idx_watch_watched_at;comment:最近观看时间" json:"watched_at"`
}

func (WatchHistory) TableName() string {
	return "watch_history"
}
