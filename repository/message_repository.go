package repository

import (
	"context"

	"digo_messenger/model"

	"gorm.io/gorm"
)

type GormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListBetween 两人之间的全部消息，按时间正序
func (r *GormMessageRepository) ListBetween(ctx context.Context, userA, userB string) ([]model.MessageWithSender, error) {
	var messages []model.MessageWithSender
	err := r.db.WithContext(ctx).Table("messages m").
		Select("m.*, u.username AS sender_name").
		Joins("JOIN users u ON m.sender_id = u.user_id").
		Where("(m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)", userA, userB, userB, userA).
		Order("m.created_at ASC").
		Order("m.id ASC").
		Scan(&messages).Error
	return messages, err
}

func (r *GormMessageRepository) ListCounterparts(ctx context.Context, userID string) ([]model.ChatItem, error) {
	var items []model.ChatItem
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT u.user_id AS chat_user_id, u.username, u.avatar_url
		FROM messages m
		JOIN users u ON u.user_id = CASE WHEN m.sender_id = ? THEN m.receiver_id ELSE m.sender_id END
		WHERE m.sender_id = ? OR m.receiver_id = ?`,
		userID, userID, userID).
		Scan(&items).Error
	return items, err
}
