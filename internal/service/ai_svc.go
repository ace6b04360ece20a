package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
	"bazaar_dev_v1_202608/pkg/utils"
)

// ==================== AIService 商品文案助手 ====================

// AIConfig AI 服务配置
type AIConfig struct {
	ApiKey    string
	TextModel string
}

// 成本估算用单价 (美元 / 百万 token)，按 flash 档粗算
const (
	costPerMInputTokens  = 0.075
	costPerMOutputTokens = 0.30
)

// AIService 调用 Gemini 为店铺成员生成商品文案建议
// 没配 API Key 时接口直接返回服务不可用
type AIService struct {
	config      *AIConfig
	client      *resty.Client
	productRepo repository.ProductRepository
	shopRepo    repository.ShopRepository
	aiLogRepo   repository.AICallLogRepository
}

// NewAIService 创建 AI 服务，aiLogRepo 可为 nil (不记流水)
func NewAIService(cfg *AIConfig, productRepo repository.ProductRepository, shopRepo repository.ShopRepository, aiLogRepo repository.AICallLogRepository) *AIService {
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-3-flash"
	}

	return &AIService{
		config:      cfg,
		client:      utils.NewRestyClient(60 * time.Second),
		productRepo: productRepo,
		shopRepo:    shopRepo,
		aiLogRepo:   aiLogRepo,
	}
}

// Available 是否已配置可用
func (s *AIService) Available() bool {
	return s != nil && s.config.ApiKey != ""
}

// GenerateListingCopy 为商品生成标题/描述/标签建议（店铺管理权限）
func (s *AIService) GenerateListingCopy(ctx context.Context, actorID int64, actorRole permission.Role, productID int64, req *dto.ListingCopyRequest) (*dto.ListingCopyResponse, error) {
	if !s.Available() {
		return nil, ErrAIUnavailable
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	shop, err := s.shopRepo.GetByID(ctx, product.ShopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	staffRole, err := s.shopRepo.GetStaffRole(ctx, product.ShopID, actorID)
	if err != nil {
		return nil, err
	}
	if !permission.CanManageShop(actorRole, actorID, shop.OwnerID, permission.Role(staffRole)) {
		return nil, forbiddenErr("无权管理该店铺的商品")
	}

	prompt := fmt.Sprintf(`You are a marketplace listing copywriter. Generate optimized listing content for:

Product: %s
Current Description: %s
Current Tags: %s
Style Hint: %s

Requirements:
1. Title: catchy and search friendly, max 140 characters
2. Description: engaging sales copy, 150-300 words, highlight features and benefits
3. Tags: 10 relevant search tags

Output Format (JSON only, no markdown):
{
  "title": "...",
  "description": "...",
  "tags": ["tag1", "tag2"]
}`, product.Name, product.Description, strings.Join(product.Tags, ", "), req.StyleHint)

	start := time.Now()
	result, usage, err := s.generate(ctx, prompt)
	s.record(ctx, product.ShopID, productID, usage, time.Since(start), err)
	return result, err
}

// Usage AI 用量统计，shopID 为 0 统计全平台 (管理层)
func (s *AIService) Usage(ctx context.Context, shopID int64, days int) (*repository.AIUsageStats, error) {
	if s.aiLogRepo == nil {
		return &repository.AIUsageStats{}, nil
	}
	if days <= 0 {
		days = 30
	}
	start := time.Now().AddDate(0, 0, -days)
	return s.aiLogRepo.UsageByShop(ctx, shopID, start, time.Time{})
}

// genUsage 单次调用的 token 用量
type genUsage struct {
	inputTokens  int
	outputTokens int
}

// record 落一条调用流水，失败只记日志不影响主流程
func (s *AIService) record(ctx context.Context, shopID, productID int64, usage *genUsage, elapsed time.Duration, callErr error) {
	if s.aiLogRepo == nil {
		return
	}

	entry := &model.AICallLog{
		ShopID:     shopID,
		ProductID:  productID,
		ModelName:  s.config.TextModel,
		DurationMs: elapsed.Milliseconds(),
		Status:     model.AICallStatusSuccess,
	}
	if usage != nil {
		entry.InputTokens = usage.inputTokens
		entry.OutputTokens = usage.outputTokens
		entry.CostUSD = float64(usage.inputTokens)/1e6*costPerMInputTokens +
			float64(usage.outputTokens)/1e6*costPerMOutputTokens
	}
	if callErr != nil {
		entry.Status = model.AICallStatusFailed
		entry.ErrorMsg = callErr.Error()
	}

	if err := s.aiLogRepo.Create(ctx, entry); err != nil {
		log.Printf("[AIService] 写入调用流水失败: %v", err)
	}
}

// generate 调用 Gemini 并把返回的 JSON 文本解析成结果
func (s *AIService) generate(ctx context.Context, prompt string) (*dto.ListingCopyResponse, *genUsage, error) {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		s.config.TextModel, s.config.ApiKey)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
		} `json:"usageMetadata"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&geminiResp).
		Post(url)
	if err != nil {
		return nil, nil, fmt.Errorf("请求失败: %v", err)
	}

	usage := &genUsage{
		inputTokens:  geminiResp.UsageMetadata.PromptTokenCount,
		outputTokens: geminiResp.UsageMetadata.CandidatesTokenCount,
	}

	if resp.StatusCode() != 200 {
		return nil, usage, fmt.Errorf("Gemini API 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}

	var jsonText string
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				jsonText = part.Text
				break
			}
		}
	}
	if jsonText == "" {
		return nil, usage, fmt.Errorf("无生成结果")
	}

	var result dto.ListingCopyResponse
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return nil, usage, fmt.Errorf("解析生成结果失败: %v, raw: %s", err, jsonText)
	}
	return &result, usage, nil
}

// ==================== 错误定义 ====================

var ErrAIUnavailable = unavailableErr("AI 文案服务未配置")
