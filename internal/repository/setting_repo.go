package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/model"
)

// ==================== SettingRepository 站点设置仓库 ====================

// SettingRepository 站点设置仓库接口
type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.SiteSetting, error)
	Upsert(ctx context.Context, setting *model.SiteSetting) error
	List(ctx context.Context, publicOnly bool) ([]model.SiteSetting, error)
	Delete(ctx context.Context, key string) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get 按键读取
func (r *settingRepository) Get(ctx context.Context, key string) (*model.SiteSetting, error) {
	var setting model.SiteSetting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &setting, err
}

// Upsert 按键写入
func (r *settingRepository) Upsert(ctx context.Context, setting *model.SiteSetting) error {
	existing, err := r.Get(ctx, setting.Key)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(setting).Error
	}
	existing.Value = setting.Value
	existing.IsPublic = setting.IsPublic
	existing.UpdatedBy = setting.UpdatedBy
	return r.db.WithContext(ctx).Save(existing).Error
}

// List 设置列表，publicOnly 时只返回对外公开的条目
func (r *settingRepository) List(ctx context.Context, publicOnly bool) ([]model.SiteSetting, error) {
	query := r.db.WithContext(ctx).Model(&model.SiteSetting{})
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}
	var settings []model.SiteSetting
	err := query.Order("key ASC").Find(&settings).Error
	return settings, err
}

// Delete 按键删除
func (r *settingRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&model.SiteSetting{}).Error
}
