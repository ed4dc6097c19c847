package elasticsearch

import (
	"context"
	"fmt"
	"strings"

	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// videosIndexMapping 标题与描述额外带一个小写归一化的 keyword 子字段，供子串匹配
const videosIndexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0,
		"analysis": {
			"normalizer": {
				"lowercase_normalizer": {
					"type": "custom",
					"filter": ["lowercase"]
				}
			}
		}
	},
	"mappings": {
		"properties": {
			"id": {"type": "long"},
			"uploader_id": {"type": "long"},
			"uploader_name": {"type": "keyword"},
			"title": {
				"type": "text",
				"fields": {"raw": {"type": "keyword", "normalizer": "lowercase_normalizer", "ignore_above": 256}}
			},
			"description": {
				"type": "text",
				"fields": {"raw": {"type": "keyword", "normalizer": "lowercase_normalizer", "ignore_above": 8191}}
			},
			"duration": {"type": "integer"},
			"views": {"type": "long"},
			"is_private": {"type": "boolean"},
			"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
		}
	}
}`

// Ensure 确保索引存在，不存在则按 mapping 创建
func (x *VideoIndex) Ensure(ctx context.Context) error {
	resp, err := x.client.Indices.Exists(
		[]string{x.index},
		x.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode == 200 {
		logger.Info("Elasticsearch videos index already exists", zap.String("index", x.index))
		return nil
	}

	created, err := x.client.Indices.Create(
		x.index,
		x.client.Indices.Create.WithContext(ctx),
		x.client.Indices.Create.WithBody(strings.NewReader(videosIndexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer created.Body.Close()

	if created.IsError() {
		return fmt.Errorf("create index failed: %s", created.String())
	}

	logger.Info("Elasticsearch videos index created", zap.String("index", x.index))
	return nil
}
