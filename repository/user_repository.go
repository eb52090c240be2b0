package repository

import (
	"context"
	"fmt"

	"digo_messenger/model"

	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormUserRepository) GetByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

// List 所有用户，注册时间倒序
func (r *GormUserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("user_id").Find(&users).Error
	return users, err
}

func (r *GormUserRepository) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	return r.updateFlag(ctx, userID, "is_blocked", blocked)
}

func (r *GormUserRepository) SetAdmin(ctx context.Context, userID string, admin bool) error {
	return r.updateFlag(ctx, userID, "is_admin", admin)
}

func (r *GormUserRepository) updateFlag(ctx context.Context, userID, column string, value bool) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name  string
			model interface{}
			where string
		}{
			{"messages", &model.Message{}, "sender_id = ? OR receiver_id = ?"},
			{"friends", &model.Friend{}, "user_id = ? OR friend_id = ?"},
			{"friend requests", &model.FriendRequest{}, "sender_id = ? OR receiver_id = ?"},
			{"typing status", &model.TypingStatus{}, "user_id = ? OR chat_with_id = ?"},
		}
		for _, step := range steps {
			if err := tx.Where(step.where, userID, userID).Delete(step.model).Error; err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.name, err)
			}
		}

		result := tx.Where("user_id = ?", userID).Delete(&model.User{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
