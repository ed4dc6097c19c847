package repository

import (
	"vidhub-go/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Add 订阅，已订阅返回 false
func (r *SubscriptionRepository) Add(subscriberID, channelID int64) (bool, error) {
	return addEdge(r.db, &model.Subscription{SubscriberID: subscriberID, ChannelID: channelID})
}

// Remove 取消订阅，未订阅返回 false
func (r *SubscriptionRepository) Remove(subscriberID, channelID int64) (bool, error) {
	return removeEdge(r.db, &model.Subscription{SubscriberID: subscriberID, ChannelID: channelID})
}

// Exists 检查订阅关系是否存在
func (r *SubscriptionRepository) Exists(subscriberID, channelID int64) (bool, error) {
	return hasEdge(r.db, &model.Subscription{SubscriberID: subscriberID, ChannelID: channelID})
}

// ListSubscriberIDs 频道的订阅者（分页）
func (r *SubscriptionRepository) ListSubscriberIDs(channelID int64, skip, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.Subscription{}).
		Where("channel_id = ?", channelID).
		Order("subscriber_id ASC").
		Offset(skip).Limit(limit).
		Pluck("subscriber_id", &ids).Error
	return ids, err
}

// ListChannelIDs 用户订阅的频道（分页）
func (r *SubscriptionRepository) ListChannelIDs(subscriberID int64, skip, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Order("channel_id ASC").
		Offset(skip).Limit(limit).
		Pluck("channel_id", &ids).Error
	return ids, err
}

// CountSubscribers 统计订阅者数
func (r *SubscriptionRepository) CountSubscribers(channelID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).Where("channel_id = ?", channelID).Count(&count).Error
	return count, err
}
