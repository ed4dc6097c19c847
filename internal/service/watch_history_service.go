package service

import (
	"time"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
)

type WatchHistoryService struct {
	historyRepo *repository.WatchHistoryRepository
	videoRepo   *repository.VideoRepository
	likeRepo    *repository.LikeRepository
	now         func() time.Time
}

func NewWatchHistoryService(historyRepo *repository.WatchHistoryRepository, videoRepo *repository.VideoRepository, likeRepo *repository.LikeRepository) *WatchHistoryService {
	return &WatchHistoryService{
		historyRepo: historyRepo,
		videoRepo:   videoRepo,
		likeRepo:    likeRepo,
		now:         time.Now,
	}
}

// Record 上报观看进度，每个 (用户, 视频) 只保留一条并刷新观看时间
func (s *WatchHistoryService) Record(videoID, userID int64, req *dto.WatchHistoryRequest) (*dto.WatchHistoryInfo, error) {
	if _, err := loadVisibleVideo(s.videoRepo, videoID, userID); err != nil {
		return nil, err
	}

	entry, err := s.historyRepo.Upsert(userID, videoID, req.Timestamp, s.now().UTC())
	if err != nil {
		return nil, err
	}

	video, err := s.videoRepo.GetByIDWithUploader(videoID)
	if err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}
	infos, err := toVideoInfos(s.likeRepo, []model.Video{*video})
	if err != nil {
		return nil, err
	}

	info := toWatchHistoryInfo(entry)
	info.Video = &infos[0]
	return info, nil
}

// List 当前用户的观看记录，最近观看在前；已不可见的视频不附带详情
func (s *WatchHistoryService) List(userID int64, skip, limit int) ([]dto.WatchHistoryInfo, error) {
	entries, err := s.historyRepo.ListByUser(userID, skip, limit)
	if err != nil {
		return nil, err
	}

	videoIDs := make([]int64, 0, len(entries))
	for _, e := range entries {
		videoIDs = append(videoIDs, e.VideoID)
	}
	videos, err := s.videoRepo.ListByIDs(videoIDs)
	if err != nil {
		return nil, err
	}

	visible := make([]model.Video, 0, len(videos))
	for _, v := range videos {
		if v.VisibleTo(userID) {
			visible = append(visible, v)
		}
	}
	infos, err := toVideoInfos(s.likeRepo, visible)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*dto.VideoInfo, len(infos))
	for i := range infos {
		byID[infos[i].ID] = &infos[i]
	}

	items := make([]dto.WatchHistoryInfo, 0, len(entries))
	for i := range entries {
		info := toWatchHistoryInfo(&entries[i])
		info.Video = byID[entries[i].VideoID]
		items = append(items, *info)
	}
	return items, nil
}

func toWatchHistoryInfo(e *model.WatchHistory) *dto.WatchHistoryInfo {
	return &dto.WatchHistoryInfo{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		WatchedAt: e.WatchedAt,
		UserID:    e.UserID,
		VideoID:   e.VideoID,
	}
}
