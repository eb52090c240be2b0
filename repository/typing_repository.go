package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"digo_messenger/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTypingRepository typing_status 表
type GormTypingRepository struct {
	db *gorm.DB
}

func NewTypingRepository(db *gorm.DB) *GormTypingRepository {
	return &GormTypingRepository{db: db}
}

func (r *GormTypingRepository) Upsert(ctx context.Context, status *model.TypingStatus) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "chat_with_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_typing", "last_updated"}),
		}).
		Create(status).Error
}

func (r *GormTypingRepository) Get(ctx context.Context, userID, chatWithID string) (*model.TypingStatus, error) {
	var status model.TypingStatus
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chat_with_id = ?", userID, chatWithID).
		First(&status).Error
	if err != nil {
		return nil, translate(err)
	}
	return &status, nil
}

// RedisTypingRepository 每个 (user, chat_with) 一个 hash
// key 的过期时间只用于清理，状态是否有效仍由读取方比较 last_updated
type RedisTypingRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTypingRepository(rdb *redis.Client, ttl time.Duration) *RedisTypingRepository {
	return &RedisTypingRepository{rdb: rdb, ttl: ttl}
}

func typingKey(userID, chatWithID string) string {
	return "typing:" + userID + ":" + chatWithID
}

func (r *RedisTypingRepository) Upsert(ctx context.Context, status *model.TypingStatus) error {
	key := typingKey(status.UserID, status.ChatWithID)

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"is_typing", strconv.FormatBool(status.IsTyping),
		"last_updated", strconv.FormatInt(status.LastUpdated.UnixMilli(), 10),
	)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write typing status: %w", err)
	}
	return nil
}

func (r *RedisTypingRepository) Get(ctx context.Context, userID, chatWithID string) (*model.TypingStatus, error) {
	fields, err := r.rdb.HGetAll(ctx, typingKey(userID, chatWithID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read typing status: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	isTyping, _ := strconv.ParseBool(fields["is_typing"])
	updatedMs, err := strconv.ParseInt(fields["last_updated"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt typing status %q: %w", fields["last_updated"], err)
	}

	return &model.TypingStatus{
		UserID:      userID,
		ChatWithID:  chatWithID,
		IsTyping:    isTyping,
		LastUpdated: time.UnixMilli(updatedMs),
	}, nil
}
