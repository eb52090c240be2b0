package model

import "time"

// User 用户表
type User struct {
	UserID       string    `json:"user_id" gorm:"column:user_id;type:varchar(32);primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	AvatarURL    *string   `json:"avatar_url,omitempty" gorm:"type:text"`
	IsAdmin      bool      `json:"is_admin" gorm:"default:false"`
	IsBlocked    bool      `json:"is_blocked" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// UserProfile 对外展示的用户信息（好友列表、会话列表共用）
type UserProfile struct {
	UserID    string  `json:"user_id" gorm:"column:user_id"`
	Username  string  `json:"username" gorm:"column:username"`
	AvatarURL *string `json:"avatar_url" gorm:"column:avatar_url"`
}
