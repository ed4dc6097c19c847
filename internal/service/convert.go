package service

import (
	"errors"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"

	"gorm.io/gorm"
)

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		FullName:       user.FullName,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
		BannerImage:    user.BannerImage,
		CreatedAt:      user.CreatedAt,
		IsActive:       user.IsActive,
	}
}

// ToUserInfo 供 handler 直接渲染已认证用户
func ToUserInfo(user *model.User) *dto.UserInfo {
	return toUserInfo(user)
}

func toVideoInfo(v *model.Video, likesCount int64) *dto.VideoInfo {
	info := &dto.VideoInfo{
		ID:            v.ID,
		Title:         v.Title,
		Description:   v.Description,
		IsPrivate:     v.IsPrivate,
		FilePath:      v.FilePath,
		ThumbnailPath: v.ThumbnailPath,
		Duration:      v.Duration,
		Views:         v.Views,
		LikesCount:    likesCount,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
		UploaderID:    v.UploaderID,
	}
	if v.Uploader.ID != 0 {
		info.Uploader = toUserInfo(&v.Uploader)
	}
	return info
}

// toVideoInfos 批量转换并填充点赞数
func toVideoInfos(likeRepo *repository.LikeRepository, videos []model.Video) ([]dto.VideoInfo, error) {
	ids := make([]int64, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	counts, err := likeRepo.CountVideoLikesByIDs(ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.VideoInfo, 0, len(videos))
	for i := range videos {
		items = append(items, *toVideoInfo(&videos[i], counts[videos[i].ID]))
	}
	return items, nil
}

func toCommentInfo(c *model.Comment, likesCount, repliesCount int64) *dto.CommentInfo {
	info := &dto.CommentInfo{
		ID:           c.ID,
		Content:      c.Content,
		ParentID:     c.ParentID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		UserID:       c.UserID,
		VideoID:      c.VideoID,
		LikesCount:   likesCount,
		RepliesCount: repliesCount,
	}
	if c.User.ID != 0 {
		info.User = toUserInfo(&c.User)
	}
	return info
}

func toUserInfos(users []model.User) []dto.UserInfo {
	items := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		items = append(items, *toUserInfo(&users[i]))
	}
	return items
}

// notFound 把 gorm 的未找到错误替换为领域错误
func notFound(err error, domainErr *Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}
