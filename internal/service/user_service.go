package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/media"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/logger"
	"vidhub-go/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidMediaType = newError(KindInvalidMediaType, "不支持的文件类型")
	ErrFileNotFound     = newError(KindNotFound, "文件不存在")
)

type UserService struct {
	userRepo *repository.UserRepository
	subRepo  *repository.SubscriptionRepository
	ingestor *media.Ingestor
}

func NewUserService(userRepo *repository.UserRepository, subRepo *repository.SubscriptionRepository, ingestor *media.Ingestor) *UserService {
	return &UserService{userRepo: userRepo, subRepo: subRepo, ingestor: ingestor}
}

// GetChannel 按用户名查询用户主页信息，viewerID 为 0 表示匿名
func (s *UserService) GetChannel(username string, viewerID int64) (*dto.ChannelInfo, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return buildChannelInfo(s.subRepo, toUserInfo(user), viewerID)
}

// UpdateMe 更新当前用户资料，用户名/邮箱变更需保持唯一
func (s *UserService) UpdateMe(userID int64, req *dto.UserUpdateRequest) (*dto.UserInfo, error) {
	updates := make(map[string]interface{})

	var username, email string
	if req.Username != nil {
		var err error
		if username, err = normalizeUsername(*req.Username); err != nil {
			return nil, err
		}
		updates["username"] = username
	}
	if req.Email != nil {
		email = strings.TrimSpace(*req.Email)
		updates["email"] = email
	}
	if err := checkIdentityFree(s.userRepo, username, email, userID); err != nil {
		return nil, err
	}

	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Password != nil {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["hashed_password"] = hashed
	}

	user, err := s.userRepo.Update(userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, notFound(err, ErrUserNotFound)
	}
	return toUserInfo(user), nil
}

// SetProfilePicture 上传头像，旧头像文件随后删除
func (s *UserService) SetProfilePicture(ctx context.Context, userID int64, up media.Upload) (*dto.UserInfo, error) {
	return s.replaceImage(ctx, userID, up, media.CategoryProfilePicture, "profile_picture")
}

// SetBanner 上传主页横幅，旧横幅文件随后删除
func (s *UserService) SetBanner(ctx context.Context, userID int64, up media.Upload) (*dto.UserInfo, error) {
	return s.replaceImage(ctx, userID, up, media.CategoryBanner, "banner_image")
}

func (s *UserService) replaceImage(ctx context.Context, userID int64, up media.Upload, cat media.Category, column string) (*dto.UserInfo, error) {
	current, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	name, err := s.ingestor.Store(ctx, up, cat)
	if err != nil {
		return nil, storeError(err)
	}

	user, err := s.userRepo.Update(userID, map[string]interface{}{column: name})
	if err != nil {
		s.ingestor.Delete(ctx, cat, name)
		return nil, err
	}

	old := current.ProfilePicture
	if cat == media.CategoryBanner {
		old = current.BannerImage
	}
	if old != nil && *old != "" {
		s.ingestor.Delete(ctx, cat, *old)
	}

	logger.Info("User image replaced",
		zap.Int64("user_id", userID),
		zap.String("category", string(cat)),
		zap.String("name", name),
	)
	return toUserInfo(user), nil
}

// OpenImage 打开头像或横幅文件
func (s *UserService) OpenImage(ctx context.Context, cat media.Category, name string) (*media.Object, error) {
	return openMedia(ctx, s.ingestor, cat, name)
}

func storeError(err error) error {
	if errors.Is(err, media.ErrInvalidMediaType) {
		return ErrInvalidMediaType
	}
	return fmt.Errorf("store media: %w", err)
}

func openMedia(ctx context.Context, ingestor *media.Ingestor, cat media.Category, name string) (*media.Object, error) {
	obj, err := ingestor.Open(ctx, cat, name)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) || errors.Is(err, media.ErrInvalidName) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return obj, nil
}
