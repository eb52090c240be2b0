package model

import "time"

// Message 私信表（只追加，不修改）
type Message struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	SenderID   string    `json:"sender_id" gorm:"type:varchar(32);not null;index:idx_messages_sender,priority:1"`
	ReceiverID string    `json:"receiver_id" gorm:"type:varchar(32);not null;index:idx_messages_receiver,priority:1"`
	Body       string    `json:"message" gorm:"column:message;type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_messages_sender,priority:2;index:idx_messages_receiver,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageWithSender 消息详情（包含发送者用户名）
type MessageWithSender struct {
	Message
	SenderName string `json:"sender_name" gorm:"column:sender_name"`
}

// TypingStatus 正在输入状态（UserID 正在给 ChatWithID 输入）
type TypingStatus struct {
	UserID      string    `json:"user_id" gorm:"column:user_id;type:varchar(32);primaryKey"`
	ChatWithID  string    `json:"chat_with_id" gorm:"column:chat_with_id;type:varchar(32);primaryKey"`
	IsTyping    bool      `json:"is_typing" gorm:"not null;default:false"`
	LastUpdated time.Time `json:"last_updated" gorm:"not null"`
}

func (TypingStatus) TableName() string {
	return "typing_status"
}
