package model

// 以下三张关联表只有复合主键，不带任何边属性

// Subscription 订阅关系：SubscriberID 订阅 ChannelID
type Subscription struct {
	SubscriberID int64 `gorm:"primaryKey;autoIncrement:false" json:"subscriber_id"`
	ChannelID    int64 `gorm:"primaryKey;autoIncrement:false;index:idx_subscriptions_channel_id" json:"channel_id"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// VideoLike 视频点赞
type VideoLike struct {
	UserID  int64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	VideoID int64 `gorm:"primaryKey;autoIncrement:false;index:idx_video_likes_video_id" json:"video_id"`
}

func (VideoLike) TableName() string {
	return "video_likes"
}

// CommentLike 评论点赞
type CommentLike struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CommentID int64 `gorm:"primaryKey;autoIncrement:false;index:idx_comment_likes_comment_id" json:"comment_id"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&Video{},
		&Comment{},
		&WatchHistory{},
		&Subscription{},
		&VideoLike{},
		&CommentLike{},
	}
}
