package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
)

func TestNewAIService_Defaults(t *testing.T) {
	cfg := &AIConfig{}
	NewAIService(cfg, nil, nil, nil)
	if cfg.TextModel != "gemini-3-flash" {
		t.Errorf("默认 TextModel = %s, want gemini-3-flash", cfg.TextModel)
	}

	cfg = &AIConfig{TextModel: "gemini-3-pro"}
	NewAIService(cfg, nil, nil, nil)
	if cfg.TextModel != "gemini-3-pro" {
		t.Errorf("自定义 TextModel 被覆盖: %s", cfg.TextModel)
	}
}

func TestAIService_Available(t *testing.T) {
	if NewAIService(&AIConfig{}, nil, nil, nil).Available() {
		t.Error("无 API Key 应不可用")
	}
	if !NewAIService(&AIConfig{ApiKey: "k"}, nil, nil, nil).Available() {
		t.Error("有 API Key 应可用")
	}

	// 服务未装配时调用方拿到的是 nil
	var svc *AIService
	if svc.Available() {
		t.Error("nil 服务应不可用")
	}
}

func TestAIService_GenerateListingCopy_Unavailable(t *testing.T) {
	svc := NewAIService(&AIConfig{}, nil, nil, nil)

	_, err := svc.GenerateListingCopy(context.Background(), 1, permission.RoleUser, 1, &dto.ListingCopyRequest{})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Errorf("error = %v, want ErrAIUnavailable", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, 应归入服务不可用类", err)
	}
}

func TestAIService_GenerateListingCopy_Gates(t *testing.T) {
	db := setupSvcTestDB(t)
	db.Create(&testUser{ID: 10, Username: "potter", Role: "USER"})
	db.Create(&testShop{ID: 1, Name: "山野陶社", OwnerID: 10, Status: model.ShopStatusActive})
	db.Create(&testStaff{ID: 1, ShopID: 1, UserID: 10, Role: "SHOP_OWNER"})
	db.Create(&testStaff{ID: 2, ShopID: 1, UserID: 21, Role: "SHOP_STAFF"})
	db.Create(&testProduct{ID: 1, ShopID: 1, Name: "粗陶茶杯", Price: 2900, Quantity: 10})

	// 鉴权在发起请求之前完成，假 Key 不会触发外部调用
	svc := NewAIService(&AIConfig{ApiKey: "test-key"},
		repository.NewProductRepository(db), repository.NewShopRepository(db), nil)
	ctx := context.Background()

	if _, err := svc.GenerateListingCopy(ctx, 10, permission.RoleUser, 999, &dto.ListingCopyRequest{}); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("商品不存在 error = %v, want ErrProductNotFound", err)
	}

	if _, err := svc.GenerateListingCopy(ctx, 555, permission.RoleUser, 1, &dto.ListingCopyRequest{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("路人 error = %v, want ErrForbidden", err)
	}

	if _, err := svc.GenerateListingCopy(ctx, 21, permission.RoleUser, 1, &dto.ListingCopyRequest{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("普通店员 error = %v, want ErrForbidden", err)
	}
}

func TestAIService_Usage(t *testing.T) {
	// 未接流水仓储时返回零值而不是报错
	empty, err := NewAIService(&AIConfig{}, nil, nil, nil).Usage(context.Background(), 0, 30)
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if empty.TotalCalls != 0 {
		t.Errorf("无仓储用量 = %d, 期望 0", empty.TotalCalls)
	}

	db := setupSvcTestDB(t)
	if err := db.AutoMigrate(&model.AICallLog{}); err != nil {
		t.Fatalf("迁移调用流水表失败: %v", err)
	}
	aiLogRepo := repository.NewAICallLogRepository(db)
	for i := 0; i < 3; i++ {
		if err := aiLogRepo.Create(context.Background(), &model.AICallLog{
			ShopID: 1, ProductID: 1, ModelName: "gemini-3-flash",
			InputTokens: 100, OutputTokens: 50, Status: model.AICallStatusSuccess,
		}); err != nil {
			t.Fatalf("写入流水失败: %v", err)
		}
	}

	svc := NewAIService(&AIConfig{}, nil, nil, aiLogRepo)
	stats, err := svc.Usage(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if stats.TotalCalls != 3 || stats.TotalInputTokens != 300 {
		t.Errorf("用量统计 calls=%d tokens=%d, 期望 3/300", stats.TotalCalls, stats.TotalInputTokens)
	}
}

func TestAIService_GenerateListingCopy_Live(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("跳过: 需要设置 GEMINI_API_KEY 环境变量")
	}

	db := setupSvcTestDB(t)
	db.Create(&testUser{ID: 10, Username: "potter", Role: "USER"})
	db.Create(&testShop{ID: 1, Name: "山野陶社", OwnerID: 10, Status: model.ShopStatusActive})
	db.Create(&testStaff{ID: 1, ShopID: 1, UserID: 10, Role: "SHOP_OWNER"})
	db.Create(&testProduct{ID: 1, ShopID: 1, Name: "Handmade Ceramic Mug with Gold Rim", Price: 2900, Quantity: 10})

	svc := NewAIService(&AIConfig{ApiKey: apiKey},
		repository.NewProductRepository(db), repository.NewShopRepository(db), nil)

	result, err := svc.GenerateListingCopy(context.Background(), 10, permission.RoleUser, 1,
		&dto.ListingCopyRequest{StyleHint: "vintage, elegant"})
	if err != nil {
		t.Fatalf("GenerateListingCopy() error = %v", err)
	}

	if result.Title == "" {
		t.Error("生成的标题为空")
	}
	if result.Description == "" {
		t.Error("生成的描述为空")
	}
	if len(result.Tags) == 0 {
		t.Error("生成的标签为空")
	}
	t.Logf("生成标题: %s", result.Title)
	t.Logf("标签数量: %d", len(result.Tags))
}
