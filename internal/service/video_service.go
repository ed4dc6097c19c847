package service

import (
	"context"
	"strings"

	"vidhub-go/internal/api/dto"
	infraKafka "vidhub-go/internal/infra/kafka"
	"vidhub-go/internal/media"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrVideoNotFound     = newError(KindNotFound, "视频不存在")
	ErrVideoForbidden    = newError(KindForbidden, "没有权限访问该视频")
	ErrVideoNoPermission = newError(KindForbidden, "没有权限操作该视频")
	ErrUploadFailed      = newError(KindUploadFailed, "视频保存失败")
	ErrAlreadyLiked      = newError(KindConflict, "已经点过赞了")
	ErrNotLiked          = newError(KindConflict, "尚未点赞")
)

type VideoService struct {
	videoRepo *repository.VideoRepository
	userRepo  *repository.UserRepository
	likeRepo  *repository.LikeRepository
	ingestor  *media.Ingestor
	events    EventPublisher
}

// NewVideoService events 可为 nil
func NewVideoService(
	videoRepo *repository.VideoRepository,
	userRepo *repository.UserRepository,
	likeRepo *repository.LikeRepository,
	ingestor *media.Ingestor,
	events EventPublisher,
) *VideoService {
	return &VideoService{
		videoRepo: videoRepo,
		userRepo:  userRepo,
		likeRepo:  likeRepo,
		ingestor:  ingestor,
		events:    events,
	}
}

// Upload 存储视频文件、确定缩略图与时长后写入记录；写库失败时清理已落盘的文件
func (s *VideoService) Upload(ctx context.Context, uploaderID int64, req *dto.VideoUploadRequest, file media.Upload, thumbnail *media.Upload) (*dto.VideoInfo, error) {
	videoName, err := s.ingestor.Store(ctx, file, media.CategoryVideo)
	if err != nil {
		return nil, storeError(err)
	}

	thumbName := s.resolveThumbnail(ctx, videoName, thumbnail)
	duration := s.ingestor.DeriveDuration(ctx, videoName)

	video := &model.Video{
		UploaderID:    uploaderID,
		Title:         strings.TrimSpace(req.Title),
		FilePath:      videoName,
		ThumbnailPath: &thumbName,
		Duration:      duration,
		IsPrivate:     req.IsPrivate,
	}
	if req.Description != "" {
		desc := req.Description
		video.Description = &desc
	}

	if err := s.videoRepo.Create(video); err != nil {
		logger.Error("Persist video failed, removing stored files",
			zap.Int64("uploader_id", uploaderID),
			zap.String("video_file", videoName),
			zap.String("thumbnail", thumbName),
			zap.Error(err),
		)
		s.ingestor.Delete(ctx, media.CategoryVideo, videoName)
		s.ingestor.Delete(ctx, media.CategoryThumbnail, thumbName)
		return nil, ErrUploadFailed
	}

	logger.Info("Video uploaded",
		zap.Int64("video_id", video.ID),
		zap.Int64("uploader_id", uploaderID),
		zap.Int("duration", duration),
	)
	publishVideoEvent(ctx, s.events, infraKafka.VideoCreated, video.ID)

	if full, err := s.videoRepo.GetByIDWithUploader(video.ID); err == nil {
		video = full
	}
	return toVideoInfo(video, 0), nil
}

// resolveThumbnail 调用方提供的图片优先，否则截帧；任何失败都退回默认缩略图
func (s *VideoService) resolveThumbnail(ctx context.Context, videoName string, thumbnail *media.Upload) string {
	if thumbnail == nil {
		return s.ingestor.DeriveThumbnail(ctx, videoName)
	}
	name, err := s.ingestor.Store(ctx, *thumbnail, media.CategoryThumbnail)
	if err != nil {
		logger.Warn("Store uploaded thumbnail failed, using default",
			zap.String("video_file", videoName),
			zap.Error(err),
		)
		return s.ingestor.DefaultThumbnail()
	}
	return name
}

// Get 查看视频，播放量原子 +1
func (s *VideoService) Get(ctx context.Context, videoID, viewerID int64) (*dto.VideoInfo, error) {
	if _, err := s.visibleVideo(videoID, viewerID); err != nil {
		return nil, err
	}

	if err := s.videoRepo.IncrementViews(videoID); err != nil {
		return nil, err
	}

	video, err := s.videoRepo.GetByIDWithUploader(videoID)
	if err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}
	return s.withLikes(video)
}

// List 公开视频列表
func (s *VideoService) List(skip, limit int) ([]dto.VideoInfo, error) {
	videos, err := s.videoRepo.ListPublic(skip, limit)
	if err != nil {
		return nil, err
	}
	return toVideoInfos(s.likeRepo, videos)
}

// ListByUploader 用户的视频，本人可见私密视频
func (s *VideoService) ListByUploader(username string, viewerID int64, skip, limit int) ([]dto.VideoInfo, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	videos, err := s.videoRepo.ListByUploader(user.ID, user.ID == viewerID, skip, limit)
	if err != nil {
		return nil, err
	}
	return toVideoInfos(s.likeRepo, videos)
}

// Update 修改标题、描述、可见性，仅上传者
func (s *VideoService) Update(ctx context.Context, videoID, userID int64, req *dto.VideoUpdateRequest) (*dto.VideoInfo, error) {
	if _, err := s.ownedVideo(videoID, userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsPrivate != nil {
		updates["is_private"] = *req.IsPrivate
	}

	video, err := s.videoRepo.Update(videoID, updates)
	if err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}

	if len(updates) > 0 {
		publishVideoEvent(ctx, s.events, infraKafka.VideoUpdated, videoID)
	}
	return s.withLikes(video)
}

// Delete 删除视频及关联数据，随后删除视频文件与非默认缩略图
func (s *VideoService) Delete(ctx context.Context, videoID, userID int64) error {
	video, err := s.ownedVideo(videoID, userID)
	if err != nil {
		return err
	}

	if err := s.videoRepo.Delete(videoID); err != nil {
		return notFound(err, ErrVideoNotFound)
	}

	s.ingestor.Delete(ctx, media.CategoryVideo, video.FilePath)
	if video.ThumbnailPath != nil {
		s.ingestor.Delete(ctx, media.CategoryThumbnail, *video.ThumbnailPath)
	}

	logger.Info("Video deleted", zap.Int64("video_id", videoID), zap.Int64("user_id", userID))
	publishVideoEvent(ctx, s.events, infraKafka.VideoDeleted, videoID)
	return nil
}

// UpdateThumbnail 替换缩略图，旧的非默认缩略图随后删除
func (s *VideoService) UpdateThumbnail(ctx context.Context, videoID, userID int64, up media.Upload) (*dto.VideoInfo, error) {
	current, err := s.ownedVideo(videoID, userID)
	if err != nil {
		return nil, err
	}

	name, err := s.ingestor.Store(ctx, up, media.CategoryThumbnail)
	if err != nil {
		return nil, storeError(err)
	}

	video, err := s.videoRepo.Update(videoID, map[string]interface{}{"thumbnail_path": name})
	if err != nil {
		s.ingestor.Delete(ctx, media.CategoryThumbnail, name)
		return nil, notFound(err, ErrVideoNotFound)
	}

	if current.ThumbnailPath != nil {
		s.ingestor.Delete(ctx, media.CategoryThumbnail, *current.ThumbnailPath)
	}

	publishVideoEvent(ctx, s.events, infraKafka.VideoUpdated, videoID)
	return s.withLikes(video)
}

// Like 点赞视频，重复点赞返回 ErrAlreadyLiked
func (s *VideoService) Like(videoID, userID int64) (*dto.VideoInfo, error) {
	if _, err := s.visibleVideo(videoID, userID); err != nil {
		return nil, err
	}

	added, err := s.likeRepo.LikeVideo(userID, videoID)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, ErrAlreadyLiked
	}
	return s.reload(videoID)
}

// Unlike 取消点赞，不检查可见性以便视频转私密后仍可撤销
func (s *VideoService) Unlike(videoID, userID int64) (*dto.VideoInfo, error) {
	if _, err := s.videoRepo.GetByID(videoID); err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}

	removed, err := s.likeRepo.UnlikeVideo(userID, videoID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotLiked
	}
	return s.reload(videoID)
}

// LikeStatus 当前用户是否点赞及点赞总数
func (s *VideoService) LikeStatus(videoID, userID int64) (*dto.LikeStatus, error) {
	if _, err := s.visibleVideo(videoID, userID); err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.HasLikedVideo(userID, videoID)
	if err != nil {
		return nil, err
	}
	count, err := s.likeRepo.CountVideoLikes(videoID)
	if err != nil {
		return nil, err
	}
	return &dto.LikeStatus{VideoID: videoID, Liked: liked, LikesCount: count}, nil
}

// ListLikers 点赞了视频的用户，私密视频仅作者可见
func (s *VideoService) ListLikers(videoID, viewerID int64, skip, limit int) ([]dto.UserInfo, error) {
	if _, err := s.visibleVideo(videoID, viewerID); err != nil {
		return nil, err
	}
	ids, err := s.likeRepo.ListVideoLikerIDs(videoID, skip, limit)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	return toUserInfos(users), nil
}

// OpenFile 打开视频或缩略图文件
func (s *VideoService) OpenFile(ctx context.Context, cat media.Category, name string) (*media.Object, error) {
	return openMedia(ctx, s.ingestor, cat, name)
}

// visibleVideo 私密视频只允许上传者访问
func (s *VideoService) visibleVideo(videoID, viewerID int64) (*model.Video, error) {
	return loadVisibleVideo(s.videoRepo, videoID, viewerID)
}

func (s *VideoService) ownedVideo(videoID, userID int64) (*model.Video, error) {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}
	if video.UploaderID != userID {
		return nil, ErrVideoNoPermission
	}
	return video, nil
}

func (s *VideoService) reload(videoID int64) (*dto.VideoInfo, error) {
	video, err := s.videoRepo.GetByIDWithUploader(videoID)
	if err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}
	return s.withLikes(video)
}

func (s *VideoService) withLikes(video *model.Video) (*dto.VideoInfo, error) {
	count, err := s.likeRepo.CountVideoLikes(video.ID)
	if err != nil {
		return nil, err
	}
	return toVideoInfo(video, count), nil
}

func loadVisibleVideo(videoRepo *repository.VideoRepository, videoID, viewerID int64) (*model.Video, error) {
	video, err := videoRepo.GetByID(videoID)
	if err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}
	if !video.VisibleTo(viewerID) {
		return nil, ErrVideoForbidden
	}
	return video, nil
}
