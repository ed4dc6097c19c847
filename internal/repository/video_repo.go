package repository

import (
	"strings"

	"vidhub-go/internal/model"

	"gorm.io/gorm"
)

// VideoSearchParams 视频检索条件，只作用于公开视频
type VideoSearchParams struct {
	Query       string
	Uploader    string
	MinDuration *int
	MaxDuration *int
	SortBy      string // created_at | views | duration
	SortOrder   string // asc | desc
	Offset      int
	Limit       int
}

// 排序列白名单
var videoSortColumns = map[string]string{
	"created_at": "videos.created_at",
	"views":      "videos.views",
	"duration":   "videos.duration",
}

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// GetByID 根据 ID 获取视频
func (r *VideoRepository) GetByID(id int64) (*model.Video, error) {
	var video model.Video
	err := r.db.Where("id = ?", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDWithUploader 根据 ID 获取视频（含上传者信息）
func (r *VideoRepository) GetByIDWithUploader(id int64) (*model.Video, error) {
	var video model.Video
	err := r.db.Preload("Uploader").Where("id = ?", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// Create 创建视频记录
func (r *VideoRepository) Create(video *model.Video) error {
	return r.db.Create(video).Error
}

// Update 更新视频字段
func (r *VideoRepository) Update(id int64, updates map[string]interface{}) (*model.Video, error) {
	if len(updates) > 0 {
		result := r.db.Model(&model.Video{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByIDWithUploader(id)
}

// IncrementViews 播放量 +1（原子自增）
func (r *VideoRepository) IncrementViews(id int64) error {
	return r.db.Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// Delete 删除视频及其评论、评论点赞、观看记录、视频点赞
func (r *VideoRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&model.Comment{}).Select("id").Where("video_id = ?", id)

		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&model.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&model.WatchHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&model.VideoLike{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&model.Video{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListPublic 公开视频列表，按创建时间倒序
func (r *VideoRepository) ListPublic(skip, limit int) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.Preload("Uploader").
		Where("is_private = ?", false).
		Order("created_at DESC").Order("id DESC").
		Offset(skip).Limit(limit).
		Find(&videos).Error
	return videos, err
}

// ListByUploader 用户上传的视频；includePrivate 为 false 时只返回公开视频
func (r *VideoRepository) ListByUploader(uploaderID int64, includePrivate bool, skip, limit int) ([]model.Video, error) {
	query := r.db.Preload("Uploader").Where("uploader_id = ?", uploaderID)
	if !includePrivate {
		query = query.Where("is_private = ?", false)
	}

	var videos []model.Video
	err := query.Order("created_at DESC").Order("id DESC").
		Offset(skip).Limit(limit).
		Find(&videos).Error
	return videos, err
}

// Search 公开视频检索（关键词、上传者、时长区间、排序、分页）
func (r *VideoRepository) Search(p VideoSearchParams) ([]model.Video, error) {
	query := r.db.Model(&model.Video{}).
		Select("videos.*").
		Preload("Uploader").
		Where("videos.is_private = ?", false)

	if q := strings.TrimSpace(p.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		query = query.Where(
			"LOWER(videos.title) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(videos.description, '')) LIKE ? ESCAPE '\\'",
			pattern, pattern,
		)
	}
	if p.Uploader != "" {
		query = query.Joins("JOIN users ON users.id = videos.uploader_id").
			Where("users.username = ?", p.Uploader)
	}
	if p.MinDuration != nil {
		query = query.Where("videos.duration >= ?", *p.MinDuration)
	}
	if p.MaxDuration != nil {
		query = query.Where("videos.duration <= ?", *p.MaxDuration)
	}

	column, ok := videoSortColumns[p.SortBy]
	if !ok {
		column = videoSortColumns["created_at"]
	}
	direction := "DESC"
	if strings.EqualFold(p.SortOrder, "asc") {
		direction = "ASC"
	}

	var videos []model.Video
	err := query.
		Order(column + " " + direction).
		Order("videos.id " + direction).
		Offset(p.Offset).Limit(p.Limit).
		Find(&videos).Error
	return videos, err
}

// Trending 公开视频按播放量倒序
func (r *VideoRepository) Trending(limit int) ([]model.Video, error) {
	return r.Search(VideoSearchParams{SortBy: "views", SortOrder: "desc", Limit: limit})
}

// Latest 公开视频按创建时间倒序
func (r *VideoRepository) Latest(limit int) ([]model.Video, error) {
	return r.Search(VideoSearchParams{SortBy: "created_at", SortOrder: "desc", Limit: limit})
}

// ListPublicByIDs 按给定顺序返回公开视频，缺失或已转私密的会被跳过
func (r *VideoRepository) ListPublicByIDs(ids []int64) ([]model.Video, error) {
	if len(ids) == 0 {
		return []model.Video{}, nil
	}
	var videos []model.Video
	err := r.db.Preload("Uploader").
		Where("id IN ? AND is_private = ?", ids, false).
		Find(&videos).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]model.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	ordered := make([]model.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}

// ListByIDs 批量查询视频（含私密），不保证顺序
func (r *VideoRepository) ListByIDs(ids []int64) ([]model.Video, error) {
	if len(ids) == 0 {
		return []model.Video{}, nil
	}
	var videos []model.Video
	err := r.db.Preload("Uploader").Where("id IN ?", ids).Find(&videos).Error
	return videos, err
}

// ListPublicAfter 按 ID 游标分批读取公开视频，用于全量重建索引
func (r *VideoRepository) ListPublicAfter(afterID int64, limit int) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.Preload("Uploader").
		Where("id > ? AND is_private = ?", afterID, false).
		Order("id ASC").Limit(limit).
		Find(&videos).Error
	return videos, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
