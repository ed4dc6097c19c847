package repository

import (
	"errors"

	"vidhub-go/internal/model"

	"gorm.io/gorm"
)

// ErrCommentCycle 评论的祖先链中出现环
var ErrCommentCycle = errors.New("comment ancestry contains a cycle")

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) GetByIDWithUser(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("User").First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateContent 更新评论内容
func (r *CommentRepository) UpdateContent(id int64, content string) (*model.Comment, error) {
	result := r.db.Model(&model.Comment{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByIDWithUser(id)
}

// ListTopLevel 视频的顶层评论（不含回复）
func (r *CommentRepository) ListTopLevel(videoID int64, skip, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Preload("User").
		Where("video_id = ? AND parent_id IS NULL", videoID).
		Order("created_at ASC").Order("id ASC").
		Offset(skip).Limit(limit).
		Find(&comments).Error
	return comments, err
}

// ListReplies 获取某条评论的直接回复
func (r *CommentRepository) ListReplies(parentID int64, skip, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Preload("User").
		Where("parent_id = ?", parentID).
		Order("created_at ASC").Order("id ASC").
		Offset(skip).Limit(limit).
		Find(&comments).Error
	return comments, err
}

// CountReplies 统计某条评论的回复数
func (r *CommentRepository) CountReplies(commentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("parent_id = ?", commentID).Count(&count).Error
	return count, err
}

// AncestorIDs 自底向上返回 id 的祖先链（不含自身），遇到环返回 ErrCommentCycle
func (r *CommentRepository) AncestorIDs(id int64) ([]int64, error) {
	visited := map[int64]bool{id: true}
	var chain []int64

	current := id
	for {
		var parent struct{ ParentID *int64 }
		err := r.db.Model(&model.Comment{}).Select("parent_id").Where("id = ?", current).Take(&parent).Error
		if err != nil {
			return nil, err
		}
		if parent.ParentID == nil {
			return chain, nil
		}
		next := *parent.ParentID
		if visited[next] {
			return nil, ErrCommentCycle
		}
		visited[next] = true
		chain = append(chain, next)
		current = next
	}
}

// DeleteTree 删除评论及其全部后代，连同这些评论的点赞，返回删除条数
func (r *CommentRepository) DeleteTree(id int64) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ids := []int64{id}
		seen := map[int64]bool{id: true}
		frontier := []int64{id}

		for len(frontier) > 0 {
			var children []int64
			if err := tx.Model(&model.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			frontier = frontier[:0]
			for _, c := range children {
				if !seen[c] {
					seen[c] = true
					ids = append(ids, c)
					frontier = append(frontier, c)
				}
			}
		}

		if err := tx.Where("comment_id IN ?", ids).Delete(&model.CommentLike{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&model.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}
