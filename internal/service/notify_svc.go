package service

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"bazaar_dev_v1_202608/internal/repository"
	"bazaar_dev_v1_202608/pkg/utils"
)

// ==================== NotifyService 审核事件通知 ====================

// SettingKeyWebhookURL 站点设置中的通知回调地址键名
const SettingKeyWebhookURL = "moderation_webhook_url"

// 通知事件类型
const (
	EventComplaintCreated  = "complaint.created"
	EventComplaintAssigned = "complaint.assigned"
	EventComplaintResolved = "complaint.resolved"
	EventComplaintRejected = "complaint.rejected"
	EventUserBlocked       = "user.blocked"
	EventShopBlocked       = "shop.blocked"
)

// NotifyService 把审核事件推送到外部 Webhook。
// 未配置回调地址时静默跳过；推送失败只记日志，不影响业务主流程。
type NotifyService struct {
	settingRepo repository.SettingRepository
	client      *resty.Client
}

// NewNotifyService 创建通知服务
func NewNotifyService(settingRepo repository.SettingRepository) *NotifyService {
	client := utils.NewRestyClient(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second)

	return &NotifyService{
		settingRepo: settingRepo,
		client:      client,
	}
}

// webhookURL 解析回调地址：站点设置优先，环境变量兜底
func (s *NotifyService) webhookURL(ctx context.Context) string {
	if s.settingRepo != nil {
		setting, err := s.settingRepo.Get(ctx, SettingKeyWebhookURL)
		if err == nil && setting != nil {
			var url string
			if json.Unmarshal(setting.Value, &url) == nil && url != "" {
				return url
			}
		}
	}
	return os.Getenv("MODERATION_WEBHOOK_URL")
}

// Publish 异步推送一条事件，调用方无需等待结果
func (s *NotifyService) Publish(event string, payload map[string]interface{}) {
	go s.deliver(event, payload)
}

func (s *NotifyService) deliver(event string, payload map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	url := s.webhookURL(ctx)
	if url == "" {
		return
	}

	body := map[string]interface{}{
		"event":     event,
		"timestamp": time.Now().Unix(),
		"data":      payload,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		log.Printf("[Notify] 推送失败 event=%s err=%v", event, err)
		return
	}
	if resp.StatusCode() >= 300 {
		log.Printf("[Notify] 推送被拒绝 event=%s status=%d", event, resp.StatusCode())
	}
}
