package service

import (
	"context"

	infraKafka "vidhub-go/internal/infra/kafka"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// EventPublisher 视频变更通知出口，Kafka 生产者或进程内直连
type EventPublisher interface {
	PublishVideoEvent(ctx context.Context, ev infraKafka.VideoEvent) error
}

// DirectPublisher 未启用 Kafka 时在请求内同步刷新索引与缓存
type DirectPublisher struct {
	search *SearchService
}

func NewDirectPublisher(search *SearchService) *DirectPublisher {
	return &DirectPublisher{search: search}
}

func (p *DirectPublisher) PublishVideoEvent(ctx context.Context, ev infraKafka.VideoEvent) error {
	return p.search.HandleVideoEvent(ctx, &ev)
}

// publishVideoEvent 通知失败只记日志，不影响主流程
func publishVideoEvent(ctx context.Context, pub EventPublisher, t infraKafka.VideoEventType, videoID int64) {
	if pub == nil {
		return
	}
	if err := pub.PublishVideoEvent(ctx, infraKafka.NewVideoEvent(t, videoID)); err != nil {
		logger.Warn("Publish video event failed",
			zap.Int64("video_id", videoID),
			zap.String("type", string(t)),
			zap.Error(err),
		)
	}
}
