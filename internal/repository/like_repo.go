package repository

import (
	"vidhub-go/internal/model"

	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// LikeVideo 点赞视频，已点赞返回 false
func (r *LikeRepository) LikeVideo(userID, videoID int64) (bool, error) {
	return addEdge(r.db, &model.VideoLike{UserID: userID, VideoID: videoID})
}

// UnlikeVideo 取消点赞，未点赞返回 false
func (r *LikeRepository) UnlikeVideo(userID, videoID int64) (bool, error) {
	return removeEdge(r.db, &model.VideoLike{UserID: userID, VideoID: videoID})
}

// HasLikedVideo 是否已点赞视频
func (r *LikeRepository) HasLikedVideo(userID, videoID int64) (bool, error) {
	return hasEdge(r.db, &model.VideoLike{UserID: userID, VideoID: videoID})
}

// CountVideoLikes 视频点赞数
func (r *LikeRepository) CountVideoLikes(videoID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.VideoLike{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}

// LikeComment 点赞评论，已点赞返回 false
func (r *LikeRepository) LikeComment(userID, commentID int64) (bool, error) {
	return addEdge(r.db, &model.CommentLike{UserID: userID, CommentID: commentID})
}

// UnlikeComment 取消评论点赞，未点赞返回 false
func (r *LikeRepository) UnlikeComment(userID, commentID int64) (bool, error) {
	return removeEdge(r.db, &model.CommentLike{UserID: userID, CommentID: commentID})
}

// CountCommentLikes 批量统计评论点赞数
func (r *LikeRepository) CountCommentLikes(commentIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CommentID int64
		Total     int64
	}
	err := r.db.Model(&model.CommentLike{}).
		Select("comment_id, COUNT(*) AS total").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CommentID] = row.Total
	}
	return counts, nil
}

// ListVideoLikerIDs 视频的点赞用户（分页）
func (r *LikeRepository) ListVideoLikerIDs(videoID int64, skip, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.VideoLike{}).
		Where("video_id = ?", videoID).
		Order("user_id ASC").
		Offset(skip).Limit(limit).
		Pluck("user_id", &ids).Error
	return ids, err
}

// CountVideoLikesByIDs 批量统计视频点赞数
func (r *LikeRepository) CountVideoLikesByIDs(videoIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(videoIDs))
	if len(videoIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		VideoID int64
		Total   int64
	}
	err := r.db.Model(&model.VideoLike{}).
		Select("video_id, COUNT(*) AS total").
		Where("video_id IN ?", videoIDs).
		Group("video_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.VideoID] = row.Total
	}
	return counts, nil
}
