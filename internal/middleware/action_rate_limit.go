package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 动作限流中间件 ====================

// ActionRateLimit 动作限流中间件
// 登录用户按用户维度限流，未登录请求退化为按客户端 IP 限流
//
// 使用示例:
//
//	router.POST("/api/products/:id/reviews",
//	    middleware.ActionRateLimit(middleware.ActionReview, 0),
//	    reviewCtl.Create,
//	)
//
// 参数:
//   - action: 动作类型
//   - interval: 冷却间隔，0 表示使用默认值
func ActionRateLimit(action ActionType, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = GetInterval(action)
	}

	return func(c *gin.Context) {
		var key string
		if userID := GetUserID(c); userID > 0 {
			key = UserActionKey(userID, action)
		} else {
			key = IPActionKey(c.ClientIP(), action)
		}

		// 检查限流
		result := GetLimiter().Check(key, interval)
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": retryAfter,
					"action":      action,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ==================== 辅助函数 ====================

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	if seconds < 60 {
		return fmt.Sprintf("操作过于频繁，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("操作过于频繁，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("操作过于频繁，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}

// ==================== 手动限流检查（供 Service 层使用）====================

// CheckActionAllowed 检查动作是否允许（不更新时间）
func CheckActionAllowed(userID int64, action ActionType) (bool, time.Duration) {
	key := UserActionKey(userID, action)
	interval := GetInterval(action)
	result := GetLimiter().CheckOnly(key, interval)
	return result.Allowed, result.RetryAfter
}

// MarkActionExecuted 标记动作已执行
func MarkActionExecuted(userID int64, action ActionType) {
	key := UserActionKey(userID, action)
	GetLimiter().MarkExecuted(key)
}

// ResetActionLimit 重置动作限流（管理员使用）
func ResetActionLimit(userID int64, action ActionType) {
	key := UserActionKey(userID, action)
	GetLimiter().Reset(key)
}
