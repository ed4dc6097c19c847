package service

import (
	"errors"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrCommentNotFound     = newError(KindNotFound, "评论不存在")
	ErrCommentNoPermission = newError(KindForbidden, "没有权限操作该评论")
	ErrParentNotFound      = newError(KindNotFound, "父评论不存在")
	ErrParentVideoMismatch = newError(KindBadRequest, "父评论不属于该视频")
	ErrCommentCycle        = newError(KindBadRequest, "评论层级存在循环引用")
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	videoRepo   *repository.VideoRepository
	likeRepo    *repository.LikeRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, videoRepo *repository.VideoRepository, likeRepo *repository.LikeRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, videoRepo: videoRepo, likeRepo: likeRepo}
}

// Create 发表评论或回复，回复的父评论必须属于同一视频
func (s *CommentService) Create(videoID, userID int64, req *dto.CommentCreateRequest) (*dto.CommentInfo, error) {
	if _, err := loadVisibleVideo(s.videoRepo, videoID, userID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(*req.ParentID)
		if err != nil {
			return nil, notFound(err, ErrParentNotFound)
		}
		if parent.VideoID != videoID {
			return nil, ErrParentVideoMismatch
		}
		if _, err := s.commentRepo.AncestorIDs(parent.ID); err != nil {
			if errors.Is(err, repository.ErrCommentCycle) {
				logger.Error("Comment ancestry cycle detected", zap.Int64("comment_id", parent.ID))
				return nil, ErrCommentCycle
			}
			return nil, err
		}
	}

	comment := &model.Comment{
		UserID:   userID,
		VideoID:  videoID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	if full, err := s.commentRepo.GetByIDWithUser(comment.ID); err == nil {
		comment = full
	}
	return toCommentInfo(comment, 0, 0), nil
}

// ListByVideo 视频的顶层评论
func (s *CommentService) ListByVideo(videoID, viewerID int64, skip, limit int) ([]dto.CommentInfo, error) {
	if _, err := loadVisibleVideo(s.videoRepo, videoID, viewerID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListTopLevel(videoID, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.buildCommentInfos(comments)
}

// ListReplies 评论的直接回复
func (s *CommentService) ListReplies(commentID, viewerID int64, skip, limit int) ([]dto.CommentInfo, error) {
	if _, err := s.visibleComment(commentID, viewerID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListReplies(commentID, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.buildCommentInfos(comments)
}

// Update 修改评论内容，仅作者
func (s *CommentService) Update(commentID, userID int64, req *dto.CommentUpdateRequest) (*dto.CommentInfo, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	if comment.UserID != userID {
		return nil, ErrCommentNoPermission
	}

	updated, err := s.commentRepo.UpdateContent(commentID, req.Content)
	if err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	return s.buildCommentInfo(updated)
}

// Delete 删除评论及其全部回复，作者或视频上传者可操作
func (s *CommentService) Delete(commentID, userID int64) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return notFound(err, ErrCommentNotFound)
	}

	if comment.UserID != userID {
		video, err := s.videoRepo.GetByID(comment.VideoID)
		if err != nil {
			return notFound(err, ErrVideoNotFound)
		}
		if video.UploaderID != userID {
			return ErrCommentNoPermission
		}
	}

	removed, err := s.commentRepo.DeleteTree(commentID)
	if err != nil {
		return err
	}

	logger.Info("Comment deleted",
		zap.Int64("comment_id", commentID),
		zap.Int64("user_id", userID),
		zap.Int64("removed", removed),
	)
	return nil
}

// Like 点赞评论，需能看到评论所在视频
func (s *CommentService) Like(commentID, userID int64) (*dto.CommentInfo, error) {
	comment, err := s.visibleComment(commentID, userID)
	if err != nil {
		return nil, err
	}

	added, err := s.likeRepo.LikeComment(userID, commentID)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, ErrAlreadyLiked
	}
	return s.buildCommentInfo(comment)
}

// Unlike 取消评论点赞
func (s *CommentService) Unlike(commentID, userID int64) (*dto.CommentInfo, error) {
	comment, err := s.commentRepo.GetByIDWithUser(commentID)
	if err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}

	removed, err := s.likeRepo.UnlikeComment(userID, commentID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotLiked
	}
	return s.buildCommentInfo(comment)
}

func (s *CommentService) visibleComment(commentID, viewerID int64) (*model.Comment, error) {
	comment, err := s.commentRepo.GetByIDWithUser(commentID)
	if err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	if _, err := loadVisibleVideo(s.videoRepo, comment.VideoID, viewerID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) buildCommentInfo(c *model.Comment) (*dto.CommentInfo, error) {
	items, err := s.buildCommentInfos([]model.Comment{*c})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *CommentService) buildCommentInfos(comments []model.Comment) ([]dto.CommentInfo, error) {
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	likes, err := s.likeRepo.CountCommentLikes(ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CommentInfo, 0, len(comments))
	for i := range comments {
		replies, err := s.commentRepo.CountReplies(comments[i].ID)
		if err != nil {
			return nil, err
		}
		items = append(items, *toCommentInfo(&comments[i], likes[comments[i].ID], replies))
	}
	return items, nil
}
