package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"digo_messenger/model"
	"digo_messenger/repository"
)

type ChatService struct {
	messages repository.MessageRepository
	rels     repository.RelationshipRepository
	users    repository.UserRepository
}

func NewChatService(messages repository.MessageRepository, rels repository.RelationshipRepository, users repository.UserRepository) *ChatService {
	return &ChatService{messages: messages, rels: rels, users: users}
}

// ListChats 会话列表 = 消息往来的用户 ∪ 好友 ∪ 反向好友边
// 好友边本应双向存在，反向查询兜底只写入了一个方向的数据
// 结果按 chat_user_id 去重并排序
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]model.ChatItem, error) {
	counterparts, err := s.messages.ListCounterparts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query message counterparts: %w", err)
	}
	friends, err := s.rels.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	followers, err := s.rels.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reverse friends: %w", err)
	}

	chatMap := make(map[string]model.ChatItem, len(counterparts)+len(friends))
	for _, item := range counterparts {
		chatMap[item.ChatUserID] = item
	}
	for _, profiles := range [][]model.UserProfile{friends, followers} {
		for _, p := range profiles {
			if _, ok := chatMap[p.UserID]; ok {
				continue
			}
			chatMap[p.UserID] = model.ChatItem{
				ChatUserID: p.UserID,
				Username:   p.Username,
				AvatarURL:  p.AvatarURL,
			}
		}
	}

	chats := make([]model.ChatItem, 0, len(chatMap))
	for _, item := range chatMap {
		chats = append(chats, item)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].ChatUserID < chats[j].ChatUserID
	})

	return chats, nil
}

// SendMessage 发送私信，不要求双方是好友
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID, body string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	exists, err := s.users.Exists(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check receiver: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	return msg, nil
}

// ListConversation 两人之间的消息历史，按时间正序
func (s *ChatService) ListConversation(ctx context.Context, userID, otherUserID string) ([]model.MessageWithSender, error) {
	messages, err := s.messages.ListBetween(ctx, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	if messages == nil {
		messages = []model.MessageWithSender{}
	}
	return messages, nil
}
