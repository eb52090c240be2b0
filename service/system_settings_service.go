package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"digo_messenger/model"
	"digo_messenger/repository"
)

// 功能开关
const (
	FeatureTypingIndicator = "enable_typing_indicator"
	FeatureLoginNotice     = "enable_login_notice"
)

var defaultSettings = []model.SystemSettings{
	{SettingKey: FeatureTypingIndicator, SettingValue: "true", Description: "正在输入提示"},
	{SettingKey: FeatureLoginNotice, SettingValue: "true", Description: "登录时由助手发送提醒消息"},
}

// SystemSettingsService 系统配置服务
type SystemSettingsService struct {
	repo            repository.SettingsRepository
	settingsCache   map[string]string
	settingsCacheMu sync.RWMutex
}

func NewSystemSettingsService(repo repository.SettingsRepository) *SystemSettingsService {
	return &SystemSettingsService{
		repo:          repo,
		settingsCache: make(map[string]string),
	}
}

// InitDefaultSettings 写入缺失的默认配置并加载缓存
func (s *SystemSettingsService) InitDefaultSettings(ctx context.Context) error {
	if err := s.repo.EnsureDefaults(ctx, defaultSettings); err != nil {
		return fmt.Errorf("failed to init default settings: %w", err)
	}
	return s.LoadSettings(ctx)
}

// LoadSettings 从数据库加载所有配置到内存缓存
func (s *SystemSettingsService) LoadSettings(ctx context.Context) error {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load system settings: %w", err)
	}

	s.settingsCacheMu.Lock()
	defer s.settingsCacheMu.Unlock()

	for _, setting := range settings {
		s.settingsCache[setting.SettingKey] = setting.SettingValue
	}
	return nil
}

// IsFeatureEnabled 检查功能是否启用，缓存里没有时使用默认值
func (s *SystemSettingsService) IsFeatureEnabled(featureKey string) bool {
	s.settingsCacheMu.RLock()
	value, exists := s.settingsCache[featureKey]
	s.settingsCacheMu.RUnlock()

	if !exists {
		for _, d := range defaultSettings {
			if d.SettingKey == featureKey {
				return d.SettingValue == "true"
			}
		}
		return false
	}
	return value == "true"
}

// UpdateSetting 更新配置（同时更新数据库和缓存）
func (s *SystemSettingsService) UpdateSetting(ctx context.Context, key, value string) error {
	if value != "true" && value != "false" {
		return ErrInvalidSettingValue
	}

	if err := s.repo.Update(ctx, key, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("failed to update setting: %w", err)
	}

	s.settingsCacheMu.Lock()
	s.settingsCache[key] = value
	s.settingsCacheMu.Unlock()

	return nil
}

// GetAllSettings 获取所有配置（缓存副本）
func (s *SystemSettingsService) GetAllSettings() map[string]string {
	s.settingsCacheMu.RLock()
	defer s.settingsCacheMu.RUnlock()

	result := make(map[string]string, len(s.settingsCache))
	for k, v := range s.settingsCache {
		result[k] = v
	}
	return result
}
