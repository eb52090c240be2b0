package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"digo_messenger/model"
	"digo_messenger/repository"
)

const maxUserIDAttempts = 20

type UserService struct {
	users    repository.UserRepository
	bot      *BotService
	settings *SystemSettingsService
	now      func() time.Time
}

func NewUserService(users repository.UserRepository, bot *BotService, settings *SystemSettingsService) *UserService {
	return &UserService{
		users:    users,
		bot:      bot,
		settings: settings,
		now:      time.Now,
	}
}

// Register 注册新用户，分配 6 位数字 ID
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	userID, err := s.generateUserID(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		UserID:       userID,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// 并发注册同名用户
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.bot != nil {
		if err := s.bot.Welcome(ctx, user); err != nil {
			log.Printf("[WARN] bot welcome for %s failed: %v", user.UserID, err)
		}
	}

	return user, nil
}

// Login 校验用户名密码
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.IsBlocked {
		return nil, ErrAccountBlocked
	}

	if s.bot != nil && (s.settings == nil || s.settings.IsFeatureEnabled(FeatureLoginNotice)) {
		if err := s.bot.LoginNotice(ctx, user, s.now()); err != nil {
			log.Printf("[WARN] bot login notice for %s failed: %v", user.UserID, err)
		}
	}

	return user, nil
}

// GetUser 按 ID 查询用户
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// ListUsers 所有注册用户，最新注册的在前
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// SetBlocked 封禁 / 解封用户
func (s *UserService) SetBlocked(ctx context.Context, actorID, targetID string, blocked bool) error {
	if blocked && actorID == targetID {
		return ErrCannotModifySelf
	}
	return s.mapNotFound(s.users.SetBlocked(ctx, targetID, blocked), "failed to update user")
}

// SetAdmin 授予 / 撤销管理员权限
func (s *UserService) SetAdmin(ctx context.Context, actorID, targetID string, admin bool) error {
	if !admin && actorID == targetID {
		return ErrCannotModifySelf
	}
	return s.mapNotFound(s.users.SetAdmin(ctx, targetID, admin), "failed to update user")
}

// DeleteUser 删除用户及其关联数据
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrCannotModifySelf
	}
	return s.mapNotFound(s.users.Delete(ctx, targetID), "failed to delete user")
}

func (s *UserService) mapNotFound(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *UserService) generateUserID(ctx context.Context) (string, error) {
	for i := 0; i < maxUserIDAttempts; i++ {
		userID := strconv.Itoa(100000 + rand.Intn(900000))
		exists, err := s.users.Exists(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("failed to check user id: %w", err)
		}
		if !exists {
			return userID, nil
		}
	}
	return "", fmt.Errorf("failed to allocate user id after %d attempts", maxUserIDAttempts)
}
