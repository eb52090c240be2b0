package model

import "time"

// SystemSettings 系统配置（管理员可切换的功能开关）
type SystemSettings struct {
	SettingKey   string    `json:"setting_key" gorm:"type:varchar(64);primaryKey"`
	SettingValue string    `json:"setting_value" gorm:"type:varchar(255);not null"`
	Description  string    `json:"description"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (SystemSettings) TableName() string {
	return "system_settings"
}
