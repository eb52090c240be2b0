package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digo_messenger/model"
	"digo_messenger/repository"
)

// TypingService 正在输入状态，只在 window 时间内有效
type TypingService struct {
	repo     repository.TypingRepository
	settings *SystemSettingsService
	window   time.Duration
	now      func() time.Time
}

func NewTypingService(repo repository.TypingRepository, settings *SystemSettingsService, window time.Duration) *TypingService {
	return &TypingService{
		repo:     repo,
		settings: settings,
		window:   window,
		now:      time.Now,
	}
}

// SetClock 替换时钟（测试用）
func (s *TypingService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TypingService) enabled() bool {
	return s.settings == nil || s.settings.IsFeatureEnabled(FeatureTypingIndicator)
}

// SetTyping 记录 userID 正在（或停止）给 chatWithID 输入
func (s *TypingService) SetTyping(ctx context.Context, userID, chatWithID string, isTyping bool) error {
	if !s.enabled() {
		return nil
	}

	status := &model.TypingStatus{
		UserID:      userID,
		ChatWithID:  chatWithID,
		IsTyping:    isTyping,
		LastUpdated: s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, status); err != nil {
		return fmt.Errorf("failed to update typing status: %w", err)
	}
	return nil
}

// IsTyping userID 是否正在给 chatWithID 输入（超过 window 的记录视为过期）
func (s *TypingService) IsTyping(ctx context.Context, userID, chatWithID string) (bool, error) {
	if !s.enabled() {
		return false, nil
	}

	status, err := s.repo.Get(ctx, userID, chatWithID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query typing status: %w", err)
	}

	if s.now().Sub(status.LastUpdated) > s.window {
		return false, nil
	}
	return status.IsTyping, nil
}
