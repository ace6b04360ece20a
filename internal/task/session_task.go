package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== SessionSweepTask 闲置会话清理任务 ====================

// SessionSweepTask 周期关闭长时间无活动的会话
// 在线状态以活动会话 + 心跳判定，不关掉僵尸会话的话
// 掉线的店铺成员会一直显示在线
type SessionSweepTask struct {
	sessionRepo repository.SessionRepository
	cron        *cron.Cron

	idleTimeout time.Duration
}

// NewSessionSweepTask 创建会话清理任务
func NewSessionSweepTask(sessionRepo repository.SessionRepository, idleTimeout time.Duration) *SessionSweepTask {
	if idleTimeout <= 0 {
		idleTimeout = 24 * time.Hour
	}
	return &SessionSweepTask{
		sessionRepo: sessionRepo,
		cron:        cron.New(cron.WithSeconds()),
		idleTimeout: idleTimeout,
	}
}

// Start 启动定时任务
func (t *SessionSweepTask) Start() {
	// 每 10 分钟扫一轮
	_, _ = t.cron.AddFunc("0 */10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		t.sweep(ctx)
	})

	t.cron.Start()
	log.Printf("[SessionSweepTask] 已启动 (每10分钟，闲置阈值 %s)", t.idleTimeout)
}

// Stop 停止任务
func (t *SessionSweepTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[SessionSweepTask] 已停止")
}

// SweepNow 手动触发一轮
func (t *SessionSweepTask) SweepNow(ctx context.Context) {
	t.sweep(ctx)
}

func (t *SessionSweepTask) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-t.idleTimeout)
	closed, err := t.sessionRepo.CloseIdleBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[SessionSweepTask] 清理闲置会话失败: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("[SessionSweepTask] 本轮关闭 %d 个闲置会话", closed)
	}
}
