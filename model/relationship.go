package model

import "time"

// FriendRequestStatus 好友申请状态
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
)

// Friend 好友边：UserID 把 FriendID 当作联系人
// 好友关系总是成对写入（A→B 与 B→A），联合主键保证同一有序对不重复
type Friend struct {
	UserID    string    `json:"user_id" gorm:"column:user_id;type:varchar(32);primaryKey"`
	FriendID  string    `json:"friend_id" gorm:"column:friend_id;type:varchar(32);primaryKey;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Friend) TableName() string {
	return "friends"
}

// FriendRequest 好友申请表
type FriendRequest struct {
	ID         int64               `json:"id" gorm:"primaryKey;autoIncrement"`
	SenderID   string              `json:"sender_id" gorm:"type:varchar(32);not null;index"`
	ReceiverID string              `json:"receiver_id" gorm:"type:varchar(32);not null;index"`
	Status     FriendRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	CreatedAt  time.Time           `json:"created_at" gorm:"autoCreateTime"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

// FriendRequestWithSender 待处理申请（附带发送者用户名）
type FriendRequestWithSender struct {
	FriendRequest
	SenderName string `json:"sender_name" gorm:"column:sender_name"`
}

// ChatItem 会话列表项
type ChatItem struct {
	ChatUserID string  `json:"chat_user_id" gorm:"column:chat_user_id"`
	Username   string  `json:"username" gorm:"column:username"`
	AvatarURL  *string `json:"avatar_url" gorm:"column:avatar_url"`
}
