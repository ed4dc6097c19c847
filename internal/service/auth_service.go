package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/logger"
	"vidhub-go/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = newError(KindNotFound, "用户不存在")
	ErrUsernameTaken     = newError(KindConflict, "用户名已被注册")
	ErrEmailTaken        = newError(KindConflict, "邮箱已被注册")
	ErrInvalidCredential = newError(KindUnauthorized, "用户名或密码错误")
	ErrInvalidToken      = newError(KindUnauthorized, "无效或已过期的认证凭据")
	ErrInactiveUser      = newError(KindUnauthorized, "用户已被禁用")
	ErrInvalidUsername   = newError(KindBadRequest, "用户名长度需在 3 到 50 个字符之间")
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
)

type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *utils.TokenManager
}

func NewAuthService(userRepo *repository.UserRepository, tokens *utils.TokenManager) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Register 用户注册，用户名与邮箱都必须唯一
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.UserInfo, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)

	if err := checkIdentityFree(s.userRepo, username, email, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		FullName:       req.FullName,
		Bio:            req.Bio,
		IsActive:       true,
	}

	if err := s.userRepo.Create(user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if taken := checkIdentityFree(s.userRepo, username, email, 0); taken != nil {
				return nil, taken
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return toUserInfo(user), nil
}

// Login 校验用户名密码并签发访问令牌
func (s *AuthService) Login(username, password string) (*dto.TokenData, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, notFound(err, ErrInvalidCredential)
	}

	if !utils.VerifyPassword(password, user.HashedPassword) {
		return nil, ErrInvalidCredential
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &dto.TokenData{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// ResolveToken 解析令牌并加载对应的有效用户
func (s *AuthService) ResolveToken(token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByUsername(claims.Subject)
	if err != nil {
		return nil, notFound(err, ErrInvalidToken)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// normalizeUsername 去除首尾空白后再校验长度
func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return "", ErrInvalidUsername
	}
	return username, nil
}

// checkIdentityFree exceptID 为当前用户时跳过自身
func checkIdentityFree(userRepo *repository.UserRepository, username, email string, exceptID int64) error {
	if username != "" {
		exists, err := userRepo.ExistsByUsername(username, exceptID)
		if err != nil {
			return err
		}
		if exists {
			return ErrUsernameTaken
		}
	}
	if email != "" {
		exists, err := userRepo.ExistsByEmail(email, exceptID)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}
	}
	return nil
}
