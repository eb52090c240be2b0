package repository

import (
	"context"

	"digo_messenger/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRelationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) *GormRelationshipRepository {
	return &GormRelationshipRepository{db: db}
}

func (r *GormRelationshipRepository) Transaction(ctx context.Context, fn func(tx RelationshipRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRelationshipRepository{db: tx})
	})
}

func (r *GormRelationshipRepository) FriendshipExists(ctx context.Context, userA, userB string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Friend{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRelationshipRepository) InsertFriendEdges(ctx context.Context, userA, userB string) error {
	edges := []model.Friend{
		{UserID: userA, FriendID: userB},
		{UserID: userB, FriendID: userA},
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edges).Error
}

// ListFriends 好友列表，按用户名排序
func (r *GormRelationshipRepository) ListFriends(ctx context.Context, userID string) ([]model.UserProfile, error) {
	var friends []model.UserProfile
	err := r.db.WithContext(ctx).Table("friends f").
		Select("u.user_id, u.username, u.avatar_url").
		Joins("JOIN users u ON f.friend_id = u.user_id").
		Where("f.user_id = ?", userID).
		Order("u.username").
		Scan(&friends).Error
	return friends, err
}

func (r *GormRelationshipRepository) ListFollowers(ctx context.Context, userID string) ([]model.UserProfile, error) {
	var followers []model.UserProfile
	err := r.db.WithContext(ctx).Table("friends f").
		Select("u.user_id, u.username, u.avatar_url").
		Joins("JOIN users u ON f.user_id = u.user_id").
		Where("f.friend_id = ?", userID).
		Scan(&followers).Error
	return followers, err
}

func (r *GormRelationshipRepository) PendingRequestExists(ctx context.Context, senderID, receiverID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, model.FriendRequestPending).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRelationshipRepository) CreateRequest(ctx context.Context, req *model.FriendRequest) error {
	return translate(r.db.WithContext(ctx).Create(req).Error)
}

func (r *GormRelationshipRepository) GetRequest(ctx context.Context, requestID int64) (*model.FriendRequest, error) {
	var req model.FriendRequest
	if err := r.db.WithContext(ctx).Where("id = ?", requestID).First(&req).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *GormRelationshipRepository) MarkAccepted(ctx context.Context, requestID int64) error {
	result := r.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", requestID, model.FriendRequestPending).
		Update("status", model.FriendRequestAccepted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPendingRequests 收到的待处理申请，最新的在前
func (r *GormRelationshipRepository) ListPendingRequests(ctx context.Context, receiverID string) ([]model.FriendRequestWithSender, error) {
	var requests []model.FriendRequestWithSender
	err := r.db.WithContext(ctx).Table("friend_requests fr").
		Select("fr.*, u.username AS sender_name").
		Joins("JOIN users u ON fr.sender_id = u.user_id").
		Where("fr.receiver_id = ? AND fr.status = ?", receiverID, model.FriendRequestPending).
		Order("fr.created_at DESC").
		Order("fr.id DESC").
		Scan(&requests).Error
	return requests, err
}
