package repository

import (
	"context"

	"digo_messenger/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormSettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

func (r *GormSettingsRepository) List(ctx context.Context) ([]model.SystemSettings, error) {
	var settings []model.SystemSettings
	err := r.db.WithContext(ctx).Order("setting_key").Find(&settings).Error
	return settings, err
}

func (r *GormSettingsRepository) Update(ctx context.Context, key, value string) error {
	result := r.db.WithContext(ctx).Model(&model.SystemSettings{}).
		Where("setting_key = ?", key).
		Update("setting_value", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormSettingsRepository) EnsureDefaults(ctx context.Context, defaults []model.SystemSettings) error {
	if len(defaults) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaults).Error
}
