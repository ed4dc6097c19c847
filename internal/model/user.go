package model

import "time"

// User 用户模型，只做软禁用（IsActive），不做物理删除
type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement;comment:用户标识" json:"id"`
	Username       string    `gorm:"size:50;not null;uniqueIndex;comment:用户名" json:"username"`
	Email          string    `gorm:"size:255;not null;uniqueIndex;comment:邮箱" json:"email"`
	HashedPassword string    `gorm:"size:255;not null;comment:密码哈希" json:"-"`
	FullName       *string   `gorm:"size:100;comment:全名" json:"full_name"`
	Bio            *string   `gorm:"type:text;comment:简介" json:"bio"`
	ProfilePicture *string   `gorm:"size:255;comment:头像文件名" json:"profile_picture"`
	BannerImage    *string   `gorm:"size:255;comment:主页横幅文件名" json:"banner_image"`
	CreatedAt      time.Time `gorm:"autoCreateTime;comment:注册时间" json:"created_at"`
	IsActive       bool      `gorm:"not null;default:true;comment:是否启用" json:"is_active"`
}

func (User) TableName() string {
	return "users"
}
