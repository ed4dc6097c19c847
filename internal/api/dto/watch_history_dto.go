package dto

import "time"

// WatchHistoryRequest 上报观看进度
type WatchHistoryRequest struct {
	Timestamp int `json:"timestamp" binding:"min=0"`
}

// WatchHistoryInfo 观看记录
type WatchHistoryInfo struct {
	ID        int64      `json:"id"`
	Timestamp int        `json:"timestamp"`
	WatchedAt time.Time  `json:"watched_at"`
	UserID    int64      `json:"user_id"`
	VideoID   int64      `json:"video_id"`
	Video     *VideoInfo `json:"video,omitempty"`
}
