// Package repository 定义存储层接口及其 GORM / Redis 实现。
// 服务层只依赖这里的接口，每个方法都接收请求级 context。
package repository

import (
	"context"
	"errors"

	"digo_messenger/model"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository 用户目录
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, userID string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Exists(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
	SetBlocked(ctx context.Context, userID string, blocked bool) error
	SetAdmin(ctx context.Context, userID string, admin bool) error
	// Delete 删除用户，并级联删除其好友边、好友申请、消息和输入状态
	Delete(ctx context.Context, userID string) error
}

// RelationshipRepository 好友边与好友申请
type RelationshipRepository interface {
	// Transaction 在同一事务内执行 fn，fn 返回错误则整体回滚
	Transaction(ctx context.Context, fn func(tx RelationshipRepository) error) error

	// FriendshipExists 任一方向存在好友边即返回 true
	FriendshipExists(ctx context.Context, userA, userB string) (bool, error)
	// InsertFriendEdges 同时写入 A→B 与 B→A，已存在的边跳过
	InsertFriendEdges(ctx context.Context, userA, userB string) error
	ListFriends(ctx context.Context, userID string) ([]model.UserProfile, error)
	// ListFollowers 反向查询：把 userID 当作好友的用户
	ListFollowers(ctx context.Context, userID string) ([]model.UserProfile, error)

	PendingRequestExists(ctx context.Context, senderID, receiverID string) (bool, error)
	CreateRequest(ctx context.Context, req *model.FriendRequest) error
	GetRequest(ctx context.Context, requestID int64) (*model.FriendRequest, error)
	// MarkAccepted 只把 pending 状态的申请改为 accepted
	MarkAccepted(ctx context.Context, requestID int64) error
	ListPendingRequests(ctx context.Context, receiverID string) ([]model.FriendRequestWithSender, error)
}

// MessageRepository 私信日志
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListBetween(ctx context.Context, userA, userB string) ([]model.MessageWithSender, error)
	// ListCounterparts 与 userID 有过消息往来的所有用户
	ListCounterparts(ctx context.Context, userID string) ([]model.ChatItem, error)
}

// TypingRepository 正在输入状态存储，新鲜度由调用方判断
type TypingRepository interface {
	Upsert(ctx context.Context, status *model.TypingStatus) error
	Get(ctx context.Context, userID, chatWithID string) (*model.TypingStatus, error)
}

// SettingsRepository 系统配置
type SettingsRepository interface {
	List(ctx context.Context) ([]model.SystemSettings, error)
	Update(ctx context.Context, key, value string) error
	// EnsureDefaults 写入缺失的配置项，已存在的值不覆盖
	EnsureDefaults(ctx context.Context, defaults []model.SystemSettings) error
}

// translate 把 GORM 错误翻译为仓储层错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
