package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vidhub-go/internal/model"
	"vidhub-go/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// VideoDoc ES 视频文档结构
type VideoDoc struct {
	ID           int64  `json:"id"`
	UploaderID   int64  `json:"uploader_id"`
	UploaderName string `json:"uploader_name"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Duration     int    `json:"duration"`
	Views        int64  `json:"views"`
	IsPrivate    bool   `json:"is_private"`
	CreatedAt    string `json:"created_at"`
}

// NewVideoDoc 由视频模型构造文档，需预加载 Uploader
func NewVideoDoc(v *model.Video) VideoDoc {
	doc := VideoDoc{
		ID:           v.ID,
		UploaderID:   v.UploaderID,
		UploaderName: v.Uploader.Username,
		Title:        v.Title,
		Duration:     v.Duration,
		Views:        v.Views,
		IsPrivate:    v.IsPrivate,
		CreatedAt:    v.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if v.Description != nil {
		doc.Description = *v.Description
	}
	return doc
}

// VideoQuery 检索条件，语义与数据库检索一致
type VideoQuery struct {
	Query       string
	Uploader    string
	MinDuration *int
	MaxDuration *int
	SortBy      string
	SortOrder   string
	From        int
	Size        int
}

var sortFields = map[string]string{
	"created_at": "created_at",
	"views":      "views",
	"duration":   "duration",
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// BuildVideoQuery 生成查询 DSL：大小写不敏感的子串匹配标题或描述
func BuildVideoQuery(q VideoQuery) map[string]interface{} {
	filter := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"is_private": false}},
	}

	if text := strings.TrimSpace(q.Query); text != "" {
		pattern := "*" + wildcardEscaper.Replace(strings.ToLower(text)) + "*"
		filter = append(filter, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"wildcard": map[string]interface{}{
						"title.raw": map[string]interface{}{"value": pattern, "case_insensitive": true},
					}},
					map[string]interface{}{"wildcard": map[string]interface{}{
						"description.raw": map[string]interface{}{"value": pattern, "case_insensitive": true},
					}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if q.Uploader != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"uploader_name": q.Uploader},
		})
	}

	if q.MinDuration != nil || q.MaxDuration != nil {
		rng := map[string]interface{}{}
		if q.MinDuration != nil {
			rng["gte"] = *q.MinDuration
		}
		if q.MaxDuration != nil {
			rng["lte"] = *q.MaxDuration
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"duration": rng},
		})
	}

	field, ok := sortFields[q.SortBy]
	if !ok {
		field = "created_at"
	}
	order := "desc"
	if strings.EqualFold(q.SortOrder, "asc") {
		order = "asc"
	}

	return map[string]interface{}{
		"from":    q.From,
		"size":    q.Size,
		"_source": []string{"id"},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filter},
		},
		"sort": []interface{}{
			map[string]interface{}{field: map[string]interface{}{"order": order}},
			map[string]interface{}{"id": map[string]interface{}{"order": order}},
		},
	}
}

// VideoIndex videos 索引的读写入口
type VideoIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewVideoIndex 创建索引访问器
func NewVideoIndex(client *elasticsearch.Client, index string) *VideoIndex {
	return &VideoIndex{client: client, index: index}
}

// Name 索引名
func (x *VideoIndex) Name() string {
	return x.index
}

// Upsert 写入或覆盖单个文档
func (x *VideoIndex) Upsert(ctx context.Context, doc VideoDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	resp, err := x.client.Index(
		x.index,
		bytes.NewReader(body),
		x.client.Index.WithContext(ctx),
		x.client.Index.WithDocumentID(strconv.FormatInt(doc.ID, 10)),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}

	logger.Debug("Video synced to ES", zap.Int64("video_id", doc.ID))
	return nil
}

// Delete 删除文档，文档不存在不算错误
func (x *VideoIndex) Delete(ctx context.Context, videoID int64) error {
	resp, err := x.client.Delete(
		x.index,
		strconv.FormatInt(videoID, 10),
		x.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() && resp.StatusCode != 404 {
		return fmt.Errorf("delete document failed: %s", resp.String())
	}
	return nil
}

// BulkUpsert 批量写入文档
func (x *VideoIndex) BulkUpsert(ctx context.Context, docs []VideoDoc) (success, failed int, err error) {
	if len(docs) == 0 {
		return 0, 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": x.index, "_id": strconv.FormatInt(doc.ID, 10)},
		}
		if err := enc.Encode(meta); err != nil {
			return 0, len(docs), err
		}
		if err := enc.Encode(doc); err != nil {
			return 0, len(docs), err
		}
	}

	resp, err := x.client.Bulk(&buf, x.client.Bulk.WithContext(ctx))
	if err != nil {
		return 0, len(docs), err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, len(docs), fmt.Errorf("bulk failed: %s", resp.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return 0, len(docs), fmt.Errorf("decode bulk response: %w", err)
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}

// Search 执行检索，按命中顺序返回视频 ID
func (x *VideoIndex) Search(ctx context.Context, q VideoQuery) ([]int64, error) {
	body, err := json.Marshal(BuildVideoQuery(q))
	if err != nil {
		return nil, err
	}

	resp, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("ES search error: %s", resp.String())
	}

	var esResp struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]int64, 0, len(esResp.Hits.Hits))
	for _, h := range esResp.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, nil
}
