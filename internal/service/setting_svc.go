package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/repository"
	"bazaar_dev_v1_202608/pkg/utils"
)

// ==================== SettingService 站点设置服务 ====================

// 公开设置的缓存键，写路径负责失效
const publicSettingsCacheKey = "settings:public"

// SettingService 管理后台的站点级 KV 配置
// 公开条目 (is_public) 不登录也能读，其余只有管理层可见。
// 公开列表每个匿名页面都会拉，进程内缓存一分钟挡掉大头。
type SettingService struct {
	settingRepo repository.SettingRepository
	publicCache *utils.TTLCache
}

// NewSettingService 创建设置服务
func NewSettingService(settingRepo repository.SettingRepository) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		publicCache: utils.NewTTLCache(time.Minute),
	}
}

// Get 读单个设置
func (s *SettingService) Get(ctx context.Context, key string) (*dto.SettingInfo, error) {
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, ErrSettingNotFound
	}
	return toSettingInfo(setting), nil
}

// Put 写入设置（新建或覆盖），值必须是合法 JSON
func (s *SettingService) Put(ctx context.Context, key string, req *dto.PutSettingRequest) (*dto.SettingInfo, error) {
	if !json.Valid(req.Value) {
		return nil, ErrInvalidSettingValue
	}

	setting := &model.SiteSetting{
		Key:      key,
		Value:    datatypes.JSON(req.Value),
		IsPublic: req.IsPublic,
	}
	if err := s.settingRepo.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	s.publicCache.Delete(publicSettingsCacheKey)
	return toSettingInfo(setting), nil
}

// List 全量设置（管理层）
func (s *SettingService) List(ctx context.Context) ([]*dto.SettingInfo, error) {
	return s.list(ctx, false)
}

// ListPublic 公开设置（无需登录），带进程内缓存
func (s *SettingService) ListPublic(ctx context.Context) ([]*dto.SettingInfo, error) {
	if cached, ok := s.publicCache.Get(publicSettingsCacheKey); ok {
		var list []*dto.SettingInfo
		if err := json.Unmarshal([]byte(cached), &list); err == nil {
			return list, nil
		}
		// 缓存内容解析失败按未命中处理
	}

	list, err := s.list(ctx, true)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(list); err == nil {
		s.publicCache.Set(publicSettingsCacheKey, string(raw))
	}
	return list, nil
}

func (s *SettingService) list(ctx context.Context, publicOnly bool) ([]*dto.SettingInfo, error) {
	settings, err := s.settingRepo.List(ctx, publicOnly)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.SettingInfo, 0, len(settings))
	for i := range settings {
		list = append(list, toSettingInfo(&settings[i]))
	}
	return list, nil
}

// Delete 删除设置
func (s *SettingService) Delete(ctx context.Context, key string) error {
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		return err
	}
	if setting == nil {
		return ErrSettingNotFound
	}
	if err := s.settingRepo.Delete(ctx, key); err != nil {
		return err
	}
	s.publicCache.Delete(publicSettingsCacheKey)
	return nil
}

// toSettingInfo 模型转 DTO
func toSettingInfo(setting *model.SiteSetting) *dto.SettingInfo {
	return &dto.SettingInfo{
		Key:      setting.Key,
		Value:    json.RawMessage(setting.Value),
		IsPublic: setting.IsPublic,
	}
}

// ==================== 错误定义 ====================

var (
	ErrSettingNotFound     = notFoundErr("设置不存在")
	ErrInvalidSettingValue = errors.New("设置值必须是合法 JSON")
)
