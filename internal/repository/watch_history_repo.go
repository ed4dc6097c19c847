package repository

import (
	"time"

	"vidhub-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchHistoryRepository struct {
	db *gorm.DB
}

func NewWatchHistoryRepository(db *gorm.DB) *WatchHistoryRepository {
	return &WatchHistoryRepository{db: db}
}

// Upsert 每个 (用户, 视频) 只保留一条，重复上报覆盖进度并刷新观看时间
func (r *WatchHistoryRepository) Upsert(userID, videoID int64, timestamp int, watchedAt time.Time) (*model.WatchHistory, error) {
	entry := &model.WatchHistory{
		UserID:    userID,
		VideoID:   videoID,
		Timestamp: timestamp,
		WatchedAt: watchedAt,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp", "watched_at"}),
	}).Create(entry).Error
	if err != nil {
		return nil, err
	}
	return r.Get(userID, videoID)
}

// Get 查询某用户某视频的观看记录
func (r *WatchHistoryRepository) Get(userID, videoID int64) (*model.WatchHistory, error) {
	var entry model.WatchHistory
	err := r.db.Where("user_id = ? AND video_id = ?", userID, videoID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByUser 用户观看记录，最近观看在前
func (r *WatchHistoryRepository) ListByUser(userID int64, skip, limit int) ([]model.WatchHistory, error) {
	var entries []model.WatchHistory
	err := r.db.Where("user_id = ?", userID).
		Order("watched_at DESC").Order("id DESC").
		Offset(skip).Limit(limit).
		Find(&entries).Error
	return entries, err
}
