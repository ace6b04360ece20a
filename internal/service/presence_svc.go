package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== PresenceService 在线状态服务 ====================

// 心跳有效期：这个窗口内有过请求就算在线
const presenceTTL = 5 * time.Minute

// PresenceService 用户在线状态
// 正常走 Redis 心跳键；Redis 不可用时降级为数据库活跃会话判断
type PresenceService struct {
	rdb         *redis.Client
	sessionRepo repository.SessionRepository
}

// NewPresenceService 创建在线状态服务
// rdb 允许为 nil (降级模式)
func NewPresenceService(rdb *redis.Client, sessionRepo repository.SessionRepository) *PresenceService {
	return &PresenceService{rdb: rdb, sessionRepo: sessionRepo}
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("presence:user:%d", userID)
}

// Touch 刷新心跳，认证中间件每个请求调用，失败静默
func (s *PresenceService) Touch(ctx context.Context, userID int64) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Set(ctx, presenceKey(userID), time.Now().Unix(), presenceTTL).Err()
}

// Clear 清除心跳 (登出时调用)
func (s *PresenceService) Clear(ctx context.Context, userID int64) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, presenceKey(userID)).Err()
}

// IsOnline 单用户在线判断
func (s *PresenceService) IsOnline(ctx context.Context, userID int64) bool {
	online, err := s.OnlineSet(ctx, []int64{userID})
	if err != nil {
		return false
	}
	return online[userID]
}

// OnlineSet 批量在线判断，返回 userID -> 是否在线
func (s *PresenceService) OnlineSet(ctx context.Context, userIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	if s.rdb != nil {
		keys := make([]string, len(userIDs))
		for i, id := range userIDs {
			keys[i] = presenceKey(id)
		}
		values, err := s.rdb.MGet(ctx, keys...).Result()
		if err == nil {
			for i, v := range values {
				result[userIDs[i]] = v != nil
			}
			return result, nil
		}
		// Redis 出错落到会话表
	}

	activeIDs, err := s.sessionRepo.ActiveUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range activeIDs {
		result[id] = true
	}
	return result, nil
}
