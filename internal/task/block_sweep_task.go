package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== BlockSweepTask 封禁到期解封任务 ====================

// BlockSweepTask 周期解封到期用户
// 封禁判定以 block_expires_at 为准，读路径上已经把过期封禁当作未封禁，
// 这里只是把落库状态扫干净，让列表和统计不再带着过期记录
type BlockSweepTask struct {
	userRepo repository.UserRepository
	cron     *cron.Cron

	batchSize int
}

// NewBlockSweepTask 创建解封任务
func NewBlockSweepTask(userRepo repository.UserRepository) *BlockSweepTask {
	return &BlockSweepTask{
		userRepo:  userRepo,
		cron:      cron.New(cron.WithSeconds()),
		batchSize: 200,
	}
}

// Start 启动定时任务
func (t *BlockSweepTask) Start() {
	// 每分钟整点扫一轮
	_, _ = t.cron.AddFunc("0 * * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		t.sweep(ctx)
	})

	t.cron.Start()
	log.Println("[BlockSweepTask] 已启动 (每分钟)")
}

// Stop 停止任务
func (t *BlockSweepTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[BlockSweepTask] 已停止")
}

// SweepNow 手动触发一轮
func (t *BlockSweepTask) SweepNow(ctx context.Context) {
	t.sweep(ctx)
}

func (t *BlockSweepTask) sweep(ctx context.Context) {
	users, err := t.userRepo.ListExpiredBlocks(ctx, time.Now(), t.batchSize)
	if err != nil {
		log.Printf("[BlockSweepTask] 查询到期封禁失败: %v", err)
		return
	}
	if len(users) == 0 {
		return
	}

	cleared := 0
	for _, u := range users {
		if err := t.userRepo.ClearBlock(ctx, u.ID); err != nil {
			log.Printf("[BlockSweepTask] 解封用户 %d 失败: %v", u.ID, err)
			continue
		}
		cleared++
	}

	log.Printf("[BlockSweepTask] 本轮解封 %d/%d 个到期用户", cleared, len(users))
}
