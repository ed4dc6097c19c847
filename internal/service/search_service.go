package service

import (
	"context"
	"errors"
	"fmt"

	"vidhub-go/internal/api/dto"
	infraES "vidhub-go/internal/infra/elasticsearch"
	infraKafka "vidhub-go/internal/infra/kafka"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
	reindexBatchSize = 200
)

// VideoIndex 外部检索引擎，ES 实现见 infra/elasticsearch
type VideoIndex interface {
	Search(ctx context.Context, q infraES.VideoQuery) ([]int64, error)
	Upsert(ctx context.Context, doc infraES.VideoDoc) error
	Delete(ctx context.Context, videoID int64) error
	BulkUpsert(ctx context.Context, docs []infraES.VideoDoc) (success, failed int, err error)
}

// ListCache 榜单缓存，Redis 实现见 infra/redis
type ListCache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, val interface{}) error
	Invalidate(ctx context.Context) error
}

type SearchService struct {
	videoRepo *repository.VideoRepository
	likeRepo  *repository.LikeRepository
	index     VideoIndex
	cache     ListCache
}

// NewSearchService index 与 cache 均可为 nil，此时直接查库
func NewSearchService(videoRepo *repository.VideoRepository, likeRepo *repository.LikeRepository, index VideoIndex, cache ListCache) *SearchService {
	return &SearchService{videoRepo: videoRepo, likeRepo: likeRepo, index: index, cache: cache}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// Search 检索公开视频（索引优先，失败则降级到数据库）
func (s *SearchService) Search(ctx context.Context, req *dto.SearchVideoRequest) ([]dto.VideoInfo, error) {
	params := repository.VideoSearchParams{
		Query:       req.Query,
		Uploader:    req.Uploader,
		MinDuration: req.MinDuration,
		MaxDuration: req.MaxDuration,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
		Offset:      req.Offset,
		Limit:       clampLimit(req.Limit),
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	if s.index != nil {
		videos, err := s.searchIndex(ctx, params)
		if err == nil {
			return toVideoInfos(s.likeRepo, videos)
		}
		logger.Warn("ES search failed, fallback to DB", zap.Error(err))
	}

	videos, err := s.videoRepo.Search(params)
	if err != nil {
		return nil, err
	}
	return toVideoInfos(s.likeRepo, videos)
}

// indexOverfetch 每页向索引多取的倍数，用于抵消失效命中
const indexOverfetch = 2

func (s *SearchService) searchIndex(ctx context.Context, p repository.VideoSearchParams) ([]model.Video, error) {
	ids, err := s.index.Search(ctx, infraES.VideoQuery{
		Query:       p.Query,
		Uploader:    p.Uploader,
		MinDuration: p.MinDuration,
		MaxDuration: p.MaxDuration,
		SortBy:      p.SortBy,
		SortOrder:   p.SortOrder,
		From:        0,
		Size:        p.Offset + p.Limit*indexOverfetch,
	})
	if err != nil {
		return nil, err
	}
	// 以数据库为准，索引滞后时已转私密或已删除的视频被过滤
	videos, err := s.videoRepo.ListPublicByIDs(ids)
	if err != nil {
		return nil, err
	}
	// 在过滤后的结果上分页，失效命中不会让页面变短或跨页重复
	if p.Offset >= len(videos) {
		return []model.Video{}, nil
	}
	end := p.Offset + p.Limit
	if end > len(videos) {
		end = len(videos)
	}
	return videos[p.Offset:end], nil
}

// Trending 播放量最高的公开视频
func (s *SearchService) Trending(ctx context.Context, limit int) ([]dto.VideoInfo, error) {
	limit = clampLimit(limit)
	return s.cachedList(ctx, fmt.Sprintf("trending:%d", limit), func() ([]model.Video, error) {
		return s.videoRepo.Trending(limit)
	})
}

// Latest 最新发布的公开视频
func (s *SearchService) Latest(ctx context.Context, limit int) ([]dto.VideoInfo, error) {
	limit = clampLimit(limit)
	return s.cachedList(ctx, fmt.Sprintf("latest:%d", limit), func() ([]model.Video, error) {
		return s.videoRepo.Latest(limit)
	})
}

// cachedList 旁路缓存，缓存故障不影响查询
func (s *SearchService) cachedList(ctx context.Context, key string, load func() ([]model.Video, error)) ([]dto.VideoInfo, error) {
	if s.cache != nil {
		var cached []dto.VideoInfo
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("List cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	videos, err := load()
	if err != nil {
		return nil, err
	}
	items, err := toVideoInfos(s.likeRepo, videos)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, items); err != nil {
			logger.Warn("List cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

// HandleVideoEvent 视频变更后失效榜单缓存并同步索引
func (s *SearchService) HandleVideoEvent(ctx context.Context, ev *infraKafka.VideoEvent) error {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Warn("List cache invalidate failed", zap.Error(err))
		}
	}
	if s.index == nil {
		return nil
	}

	if ev.Type == infraKafka.VideoDeleted {
		return s.index.Delete(ctx, ev.VideoID)
	}

	video, err := s.videoRepo.GetByIDWithUploader(ev.VideoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.index.Delete(ctx, ev.VideoID)
		}
		return err
	}
	if video.IsPrivate {
		return s.index.Delete(ctx, video.ID)
	}
	return s.index.Upsert(ctx, infraES.NewVideoDoc(video))
}

// Reindex 按 ID 游标分批把全部公开视频写入索引，返回成功条数
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}

	var (
		afterID int64
		total   int
	)
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		videos, err := s.videoRepo.ListPublicAfter(afterID, reindexBatchSize)
		if err != nil {
			return total, err
		}
		if len(videos) == 0 {
			break
		}

		docs := make([]infraES.VideoDoc, 0, len(videos))
		for i := range videos {
			docs = append(docs, infraES.NewVideoDoc(&videos[i]))
		}
		success, failed, err := s.index.BulkUpsert(ctx, docs)
		if err != nil {
			return total, err
		}
		if failed > 0 {
			logger.Warn("Reindex batch had failures", zap.Int("failed", failed), zap.Int64("after_id", afterID))
		}
		total += success
		afterID = videos[len(videos)-1].ID
	}

	logger.Info("Reindex completed", zap.Int("indexed", total))
	return total, nil
}
