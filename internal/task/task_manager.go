package task

import (
	"context"
	"log"
	"time"

	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
// 管理范围：封禁到期解封、闲置会话清理
type TaskManager struct {
	blockSweep   *BlockSweepTask
	sessionSweep *SessionSweepTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 封禁解封
	BlockSweepEnabled bool

	// 会话清理
	SessionSweepEnabled bool
	SessionIdleTimeout  time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		BlockSweepEnabled:   true,
		SessionSweepEnabled: true,
		SessionIdleTimeout:  24 * time.Hour,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.BlockSweepEnabled && deps.UserRepo != nil {
		tm.blockSweep = NewBlockSweepTask(deps.UserRepo)
	}

	if cfg.SessionSweepEnabled && deps.SessionRepo != nil {
		tm.sessionSweep = NewSessionSweepTask(deps.SessionRepo, cfg.SessionIdleTimeout)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.blockSweep != nil {
		tm.blockSweep.Start()
	}
	if tm.sessionSweep != nil {
		tm.sessionSweep.Start()
	}

	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.blockSweep != nil {
		tm.blockSweep.Stop()
	}
	if tm.sessionSweep != nil {
		tm.sessionSweep.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerBlockSweep 触发一轮到期解封
func (tm *TaskManager) TriggerBlockSweep(ctx context.Context) error {
	if tm.blockSweep == nil {
		return ErrTaskDisabled
	}
	tm.blockSweep.SweepNow(ctx)
	return nil
}

// TriggerSessionSweep 触发一轮会话清理
func (tm *TaskManager) TriggerSessionSweep(ctx context.Context) error {
	if tm.sessionSweep == nil {
		return ErrTaskDisabled
	}
	tm.sessionSweep.SweepNow(ctx)
	return nil
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"block_sweep":   tm.blockSweep != nil,
		"session_sweep": tm.sessionSweep != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
