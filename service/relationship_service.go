package service

import (
	"context"
	"errors"
	"fmt"

	"digo_messenger/model"
	"digo_messenger/repository"
)

type RelationshipService struct {
	rels  repository.RelationshipRepository
	users repository.UserRepository
}

func NewRelationshipService(rels repository.RelationshipRepository, users repository.UserRepository) *RelationshipService {
	return &RelationshipService{rels: rels, users: users}
}

// SendFriendRequest 发送好友申请，返回申请 ID
func (s *RelationshipService) SendFriendRequest(ctx context.Context, senderID, receiverID string) (int64, error) {
	if senderID == receiverID {
		return 0, ErrSelfRequest
	}

	exists, err := s.users.Exists(ctx, receiverID)
	if err != nil {
		return 0, fmt.Errorf("failed to check receiver: %w", err)
	}
	if !exists {
		return 0, ErrUserNotFound
	}

	var requestID int64
	err = s.rels.Transaction(ctx, func(tx repository.RelationshipRepository) error {
		// 任一方向已是好友
		friends, err := tx.FriendshipExists(ctx, senderID, receiverID)
		if err != nil {
			return fmt.Errorf("failed to check friendship: %w", err)
		}
		if friends {
			return ErrAlreadyFriends
		}

		// 同方向已有 pending 申请
		pending, err := tx.PendingRequestExists(ctx, senderID, receiverID)
		if err != nil {
			return fmt.Errorf("failed to check pending request: %w", err)
		}
		if pending {
			return ErrDuplicateRequest
		}

		req := &model.FriendRequest{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Status:     model.FriendRequestPending,
		}
		if err := tx.CreateRequest(ctx, req); err != nil {
			// 并发插入被唯一索引拦截
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateRequest
			}
			return fmt.Errorf("failed to create friend request: %w", err)
		}
		requestID = req.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	return requestID, nil
}

// AcceptFriendRequest 接受好友申请：双向好友边与状态更新在同一事务内提交
// 只有申请的接收者能看到并接受 pending 状态的申请，其余情况一律视为不存在
func (s *RelationshipService) AcceptFriendRequest(ctx context.Context, receiverID string, requestID int64) error {
	return s.rels.Transaction(ctx, func(tx repository.RelationshipRepository) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to load friend request: %w", err)
		}
		if req.ReceiverID != receiverID || req.Status != model.FriendRequestPending {
			return ErrRequestNotFound
		}

		if err := tx.InsertFriendEdges(ctx, req.SenderID, req.ReceiverID); err != nil {
			return fmt.Errorf("failed to add friends: %w", err)
		}

		if err := tx.MarkAccepted(ctx, requestID); err != nil {
			// 被并发的另一次接受抢先
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to update friend request: %w", err)
		}
		return nil
	})
}

// AddFriendship 直接建立双向好友关系（注册时与助手机器人互加）
func (s *RelationshipService) AddFriendship(ctx context.Context, userA, userB string) error {
	if err := s.rels.InsertFriendEdges(ctx, userA, userB); err != nil {
		return fmt.Errorf("failed to add friends: %w", err)
	}
	return nil
}

// ListPendingRequests 收到的待处理申请，最新的在前
func (s *RelationshipService) ListPendingRequests(ctx context.Context, receiverID string) ([]model.FriendRequestWithSender, error) {
	requests, err := s.rels.ListPendingRequests(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend requests: %w", err)
	}
	if requests == nil {
		requests = []model.FriendRequestWithSender{}
	}
	return requests, nil
}

// ListFriends 好友列表，按用户名排序
func (s *RelationshipService) ListFriends(ctx context.Context, userID string) ([]model.UserProfile, error) {
	friends, err := s.rels.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	if friends == nil {
		friends = []model.UserProfile{}
	}
	return friends, nil
}
