package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== ActionRateLimiter 动作限流器 ====================

// ActionRateLimiter 敏感动作限流器
// 防止用户高频触发登录、发评价、发投诉这类写操作
type ActionRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &ActionRateLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *ActionRateLimiter {
	return globalLimiter
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行
// key: 限流键，如 "user:123:review"
// interval: 冷却间隔
func (r *ActionRateLimiter) Check(key string, interval time.Duration) CheckResult {
	// 获取或创建锁条目
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	// 更新最后执行时间
	entry.lastTime = now
	return CheckResult{
		Allowed:    true,
		RetryAfter: 0,
	}
}

// CheckOnly 仅检查，不更新时间
func (r *ActionRateLimiter) CheckOnly(key string, interval time.Duration) CheckResult {
	actual, ok := r.locks.Load(key)
	if !ok {
		return CheckResult{Allowed: true}
	}

	entry := actual.(*lockEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	elapsed := time.Since(entry.lastTime)
	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	return CheckResult{Allowed: true}
}

// MarkExecuted 标记已执行（动作实际成功后再计入冷却时调用）
func (r *ActionRateLimiter) MarkExecuted(key string) {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastTime = time.Now()
}

// Reset 重置指定 key 的限流
func (r *ActionRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Key 生成工具 ====================

// ActionType 动作类型
type ActionType string

const (
	ActionLogin     ActionType = "login"
	ActionRegister  ActionType = "register"
	ActionReview    ActionType = "review"
	ActionComplaint ActionType = "complaint"
	ActionChat      ActionType = "chat_message"
	ActionCheckout  ActionType = "checkout"
	ActionAICopy    ActionType = "ai_copy"
)

// UserActionKey 生成用户级限流 Key
func UserActionKey(userID int64, action ActionType) string {
	return fmt.Sprintf("user:%d:%s", userID, action)
}

// IPActionKey 生成 IP 级限流 Key（未登录接口用）
func IPActionKey(ip string, action ActionType) string {
	return fmt.Sprintf("ip:%s:%s", ip, action)
}

// ==================== 默认限流间隔 ====================

// DefaultIntervals 默认限流间隔配置
var DefaultIntervals = map[ActionType]time.Duration{
	ActionLogin:     time.Second,      // 登录：1 秒
	ActionRegister:  3 * time.Second,  // 注册：3 秒
	ActionReview:    10 * time.Second, // 发评价：10 秒
	ActionComplaint: 30 * time.Second, // 发投诉：30 秒
	ActionChat:      time.Second,      // 发消息：1 秒
	ActionCheckout:  3 * time.Second,  // 结算：3 秒
	ActionAICopy:    15 * time.Second, // AI 文案：15 秒
}

// GetInterval 获取动作的默认间隔
func GetInterval(action ActionType) time.Duration {
	if interval, ok := DefaultIntervals[action]; ok {
		return interval
	}
	return 5 * time.Second // 默认 5 秒
}
