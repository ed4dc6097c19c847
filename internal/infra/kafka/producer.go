package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vidhub-go/internal/config"
	"vidhub-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// VideoEventType 视频变更类型
type VideoEventType string

const (
	VideoCreated VideoEventType = "created"
	VideoUpdated VideoEventType = "updated"
	VideoDeleted VideoEventType = "deleted"
)

// VideoEvent 视频变更消息体，搜索索引与榜单缓存据此刷新
type VideoEvent struct {
	Type       VideoEventType `json:"type"`
	VideoID    int64          `json:"video_id"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewVideoEvent 创建当前时间的事件
func NewVideoEvent(t VideoEventType, videoID int64) VideoEvent {
	return VideoEvent{Type: t, VideoID: videoID, OccurredAt: time.Now().UTC()}
}

// Key 同一视频的事件落在同一分区，保证顺序
func (e VideoEvent) Key() []byte {
	return []byte(fmt.Sprintf("video-%d", e.VideoID))
}

// DecodeVideoEvent 解析并校验消息体
func DecodeVideoEvent(value []byte) (*VideoEvent, error) {
	var ev VideoEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video event: %w", err)
	}
	switch ev.Type {
	case VideoCreated, VideoUpdated, VideoDeleted:
	default:
		return nil, fmt.Errorf("unknown video event type %q", ev.Type)
	}
	if ev.VideoID <= 0 {
		return nil, fmt.Errorf("invalid video id %d", ev.VideoID)
	}
	return &ev, nil
}

// Producer 视频事件生产者
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer 初始化 Kafka 生产者
func NewProducer(cfg *config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.VideoEventsTopic()),
	)

	return &Producer{writer: w, topic: cfg.VideoEventsTopic()}
}

// PublishVideoEvent 发送视频事件
func (p *Producer) PublishVideoEvent(ctx context.Context, ev VideoEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal video event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   ev.Key(),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send video event: %w", err)
	}

	logger.Debug("Video event sent",
		zap.Int64("video_id", ev.VideoID),
		zap.String("type", string(ev.Type)),
		zap.String("topic", p.topic),
	)
	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	logger.Info("Kafka producer closed")
	return p.writer.Close()
}
