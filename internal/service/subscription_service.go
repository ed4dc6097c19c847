package service

import (
	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/repository"
)

var (
	ErrSelfSubscription  = newError(KindBadRequest, "不能订阅自己")
	ErrAlreadySubscribed = newError(KindConflict, "已经订阅过该用户")
	ErrNotSubscribed     = newError(KindConflict, "尚未订阅该用户")
)

type SubscriptionService struct {
	userRepo *repository.UserRepository
	subRepo  *repository.SubscriptionRepository
}

func NewSubscriptionService(userRepo *repository.UserRepository, subRepo *repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{userRepo: userRepo, subRepo: subRepo}
}

// Subscribe 订阅频道，重复订阅返回 ErrAlreadySubscribed
func (s *SubscriptionService) Subscribe(subscriberID int64, channelName string) (*dto.ChannelInfo, error) {
	channel, err := s.userRepo.GetByUsername(channelName)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if channel.ID == subscriberID {
		return nil, ErrSelfSubscription
	}

	added, err := s.subRepo.Add(subscriberID, channel.ID)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, ErrAlreadySubscribed
	}
	return buildChannelInfo(s.subRepo, toUserInfo(channel), subscriberID)
}

// Unsubscribe 取消订阅，未订阅返回 ErrNotSubscribed
func (s *SubscriptionService) Unsubscribe(subscriberID int64, channelName string) (*dto.ChannelInfo, error) {
	channel, err := s.userRepo.GetByUsername(channelName)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if channel.ID == subscriberID {
		return nil, ErrSelfSubscription
	}

	removed, err := s.subRepo.Remove(subscriberID, channel.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotSubscribed
	}
	return buildChannelInfo(s.subRepo, toUserInfo(channel), subscriberID)
}

// ListSubscribers 频道的订阅者
func (s *SubscriptionService) ListSubscribers(channelName string, skip, limit int) ([]dto.UserInfo, error) {
	channel, err := s.userRepo.GetByUsername(channelName)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	ids, err := s.subRepo.ListSubscriberIDs(channel.ID, skip, limit)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	return toUserInfos(users), nil
}

// ListSubscriptions 用户订阅的频道
func (s *SubscriptionService) ListSubscriptions(subscriberID int64, skip, limit int) ([]dto.UserInfo, error) {
	ids, err := s.subRepo.ListChannelIDs(subscriberID, skip, limit)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	return toUserInfos(users), nil
}

func buildChannelInfo(subRepo *repository.SubscriptionRepository, user *dto.UserInfo, viewerID int64) (*dto.ChannelInfo, error) {
	count, err := subRepo.CountSubscribers(user.ID)
	if err != nil {
		return nil, err
	}

	subscribed := false
	if viewerID != 0 && viewerID != user.ID {
		if subscribed, err = subRepo.Exists(viewerID, user.ID); err != nil {
			return nil, err
		}
	}

	return &dto.ChannelInfo{
		UserInfo:         *user,
		SubscribersCount: count,
		Subscribed:       subscribed,
	}, nil
}
