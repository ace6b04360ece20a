package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ==================== 在线状态中间件 ====================

// PresenceTracker 在线状态上报接口
// 由 service 层实现，这里只依赖最小接口避免反向依赖
type PresenceTracker interface {
	Touch(ctx context.Context, userID int64)
}

// TrackPresence 在线状态中间件
// 认证通过的每个请求刷新一次用户心跳，必须挂在 JWTAuth/OptionalAuth 之后
func TrackPresence(tracker PresenceTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tracker != nil {
			if userID := GetUserID(c); userID > 0 {
				tracker.Touch(c.Request.Context(), userID)
			}
		}
		c.Next()
	}
}
