package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/model"
)

// ==================== SessionRepository 会话仓库 ====================

// SessionRepository 登录会话仓库接口
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Touch(ctx context.Context, userID int64) error
	CloseByUserID(ctx context.Context, userID int64) error
	ActiveUserIDs(ctx context.Context, userIDs []int64) ([]int64, error)
	CloseIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建会话仓库
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create 开启新会话
func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Touch 刷新用户全部活跃会话的最后活动时间
func (r *sessionRepository) Touch(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("last_active_at", time.Now()).Error
}

// CloseByUserID 关闭用户的全部活跃会话 (登出)
func (r *sessionRepository) CloseByUserID(ctx context.Context, userID int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  now,
		}).Error
}

// ActiveUserIDs 返回给定用户中当前有活跃会话的那部分
func (r *sessionRepository) ActiveUserIDs(ctx context.Context, userIDs []int64) ([]int64, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id IN ? AND is_active = ?", userIDs, true).
		Distinct().
		Pluck("user_id", &ids).Error
	return ids, err
}

// CloseIdleBefore 关闭最后活动时间早于 cutoff 的会话，返回关闭条数 (定时任务用)
func (r *sessionRepository) CloseIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("is_active = ? AND last_active_at < ?", true, cutoff).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  now,
		})
	return result.RowsAffected, result.Error
}

// CountActive 当前活跃会话总数
func (r *sessionRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
