package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digo_messenger/model"
	"digo_messenger/repository"
)

// BotService 系统助手账号：注册欢迎、登录提醒
type BotService struct {
	userID   string
	username string
	users    repository.UserRepository
	messages repository.MessageRepository
	rels     *RelationshipService
}

func NewBotService(userID, username string, users repository.UserRepository, messages repository.MessageRepository, rels *RelationshipService) *BotService {
	return &BotService{
		userID:   userID,
		username: username,
		users:    users,
		messages: messages,
		rels:     rels,
	}
}

func (b *BotService) UserID() string {
	return b.userID
}

// EnsureAccount 助手账号不存在时创建（密码哈希不可用于登录）
func (b *BotService) EnsureAccount(ctx context.Context) error {
	exists, err := b.users.Exists(ctx, b.userID)
	if err != nil {
		return fmt.Errorf("failed to check bot account: %w", err)
	}
	if exists {
		return nil
	}

	bot := &model.User{
		UserID:       b.userID,
		Username:     b.username,
		PasswordHash: "!",
	}
	if err := b.users.Create(ctx, bot); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("failed to create bot account: %w", err)
	}
	return nil
}

// Welcome 给新用户发欢迎消息，并与其互加好友
func (b *BotService) Welcome(ctx context.Context, user *model.User) error {
	text := fmt.Sprintf("Welcome to Digo, %s! 🚀\n\nI am %s, your personal assistant. "+
		"I will notify you about sign-ins and other important events.\n\nYour ID: %s",
		user.Username, b.username, user.UserID)

	if err := b.send(ctx, user.UserID, text); err != nil {
		return err
	}
	return b.rels.AddFriendship(ctx, user.UserID, b.userID)
}

// LoginNotice 登录提醒
func (b *BotService) LoginNotice(ctx context.Context, user *model.User, at time.Time) error {
	text := fmt.Sprintf("🔑 Account sign-in\nTime: %s\nIf this wasn't you, change your password immediately!",
		at.Format("02.01.2006 15:04"))
	return b.send(ctx, user.UserID, text)
}

func (b *BotService) send(ctx context.Context, receiverID, text string) error {
	msg := &model.Message{
		SenderID:   b.userID,
		ReceiverID: receiverID,
		Body:       text,
	}
	if err := b.messages.Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to send bot message: %w", err)
	}
	return nil
}
