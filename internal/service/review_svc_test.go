package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func newReviewTestService(t *testing.T) (*ReviewService, *gorm.DB) {
	db := setupSvcTestDB(t)
	svc := NewReviewService(
		repository.NewReviewRepository(db),
		repository.NewProductRepository(db),
		repository.NewUnitOfWork(db),
	)
	return svc, db
}

func seedReviewFixture(t *testing.T, db *gorm.DB) {
	if err := db.Create(&testShop{ID: 1, Name: "杂货铺", OwnerID: 1, Status: model.ShopStatusActive}).Error; err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}
	if err := db.Create(&testProduct{ID: 1, ShopID: 1, Name: "陶瓷杯", Price: 2900, Quantity: 10}).Error; err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
}

// ==================== Create 测试 ====================

func TestReviewService_Create(t *testing.T) {
	svc, db := newReviewTestService(t)
	ctx := context.Background()
	seedReviewFixture(t, db)

	info, err := svc.Create(ctx, 10, 1, &dto.CreateReviewRequest{Rating: 5, Comment: "非常好"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if info.Rating != 5 {
		t.Errorf("Rating = %d, want 5", info.Rating)
	}
	if info.UserID != 10 {
		t.Errorf("UserID = %d, want 10", info.UserID)
	}

	// 商品与店铺的聚合值在同一事务内被重算
	var product testProduct
	db.First(&product, 1)
	if product.Rating != 5.0 {
		t.Errorf("product rating = %v, want 5.0", product.Rating)
	}
	if product.ReviewsCount != 1 {
		t.Errorf("product reviews_count = %d, want 1", product.ReviewsCount)
	}

	var shop testShop
	db.First(&shop, 1)
	if shop.Rating != 5.0 {
		t.Errorf("shop rating = %v, want 5.0", shop.Rating)
	}
	if shop.ReviewsCount != 1 {
		t.Errorf("shop reviews_count = %d, want 1", shop.ReviewsCount)
	}
}

func TestReviewService_Create_AggregatesAverage(t *testing.T) {
	svc, db := newReviewTestService(t)
	ctx := context.Background()
	seedReviewFixture(t, db)

	// 三人评价 5/3/4，均值 4.0
	for userID, rating := range map[int64]int{10: 5, 11: 3, 12: 4} {
		if _, err := svc.Create(ctx, userID, 1, &dto.CreateReviewRequest{Rating: rating}); err != nil {
			t.Fatalf("Create(user=%d) error = %v", userID, err)
		}
	}

	var product testProduct
	db.First(&product, 1)
	if product.Rating != 4.0 {
		t.Errorf("product rating = %v, want 4.0", product.Rating)
	}
	if product.ReviewsCount != 3 {
		t.Errorf("product reviews_count = %d, want 3", product.ReviewsCount)
	}

	// 同店第二个商品得 2 分后，店铺均值是全部评价的均值 (5+3+4+2)/4 = 3.5
	db.Create(&testProduct{ID: 2, ShopID: 1, Name: "木勺", Price: 900})
	if _, err := svc.Create(ctx, 10, 2, &dto.CreateReviewRequest{Rating: 2}); err != nil {
		t.Fatalf("Create(product=2) error = %v", err)
	}

	var shop testShop
	db.First(&shop, 1)
	if shop.Rating != 3.5 {
		t.Errorf("shop rating = %v, want 3.5", shop.Rating)
	}
	if shop.ReviewsCount != 4 {
		t.Errorf("shop reviews_count = %d, want 4", shop.ReviewsCount)
	}
}

func TestReviewService_Create_RoundsToOneDecimal(t *testing.T) {
	svc, db := newReviewTestService(t)
	ctx := context.Background()
	seedReviewFixture(t, db)

	// 5+3+3 = 11, 11/3 = 3.666... -> 3.7
	for userID, rating := range map[int64]int{10: 5, 11: 3, 12: 3} {
		if _, err := svc.Create(ctx, userID, 1, &dto.CreateReviewRequest{Rating: rating}); err != nil {
			t.Fatalf("Create(user=%d) error = %v", userID, err)
		}
	}

	var product testProduct
	db.First(&product, 1)
	if product.Rating != 3.7 {
		t.Errorf("product rating = %v, want 3.7", product.Rating)
	}
}

func TestReviewService_Create_Duplicate(t *testing.T) {
	svc, db := newReviewTestService(t)
	ctx := context.Background()
	seedReviewFixture(t, db)

	if _, err := svc.Create(ctx, 10, 1, &dto.CreateReviewRequest{Rating: 4}); err != nil {
		t.Fatalf("第一次评价失败: %v", err)
	}

	_, err := svc.Create(ctx, 10, 1, &dto.CreateReviewRequest{Rating: 1})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("error = %v, want ErrAlreadyReviewed", err)
	}

	// 重复评价不影响聚合值
	var product testProduct
	db.First(&product, 1)
	if product.Rating != 4.0 {
		t.Errorf("product rating = %v, want 4.0", product.Rating)
	}
}

func TestReviewService_Create_InvalidRating(t *testing.T) {
	svc, db := newReviewTestService(t)
	ctx := context.Background()
	seedReviewFixture(t, db)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(ctx, 10, 1, &dto.CreateReviewRequest{Rating: rating})
		if !errors.Is(err, ErrInvalidRating) {
			t.Errorf("Create(rating=%d) error = %v, want ErrInvalidRating", rating, err)
		}
	}
}

func TestReviewService_Create_ProductNotFound(t *testing.T) {
	svc, _ := newReviewTestService(t)

	_, err := svc.Create(context.Background(), 10, 999, &dto.CreateReviewRequest{Rating: 5})
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("error = %v, want ErrProductNotFound", err)
	}
	// 控制器按 ErrNotFound 归类映射 404
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("错误应归类为 ErrNotFound")
	}
}

// ==================== ListByProduct 测试 ====================

func TestReviewService_ListByProduct(t *testing.T) {
	svc, db := newReviewTestService(t)
	ctx := context.Background()
	seedReviewFixture(t, db)

	db.Create(&testUser{ID: 10, Username: "alice", Password: "x"})

	for userID, rating := range map[int64]int{10: 5, 11: 3, 12: 4} {
		if _, err := svc.Create(ctx, userID, 1, &dto.CreateReviewRequest{Rating: rating}); err != nil {
			t.Fatalf("Create(user=%d) error = %v", userID, err)
		}
	}

	resp, err := svc.ListByProduct(ctx, 1, 1, 2)
	if err != nil {
		t.Fatalf("ListByProduct() error = %v", err)
	}

	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	if len(resp.List) != 2 {
		t.Errorf("len(list) = %d, want 2", len(resp.List))
	}

	// 发起人用户名随评价一起返回
	for _, r := range resp.List {
		if r.UserID == 10 && r.Username != "alice" {
			t.Errorf("username = %s, want alice", r.Username)
		}
	}
}

func TestReviewService_ListByProduct_NotFound(t *testing.T) {
	svc, _ := newReviewTestService(t)

	_, err := svc.ListByProduct(context.Background(), 999, 1, 20)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("error = %v, want ErrProductNotFound", err)
	}
}

// ==================== 评分计算测试 ====================

func TestRoundRating(t *testing.T) {
	tests := []struct {
		name  string
		sum   int64
		count int64
		want  float64
	}{
		{"无评价归零", 0, 0, 0},
		{"整除", 12, 3, 4.0},
		{"四舍五入", 11, 3, 3.7},
		{"保留一位小数", 7, 2, 3.5},
		{"单条评价", 5, 1, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roundRating(tt.sum, tt.count); got != tt.want {
				t.Errorf("roundRating(%d, %d) = %v, want %v", tt.sum, tt.count, got, tt.want)
			}
		})
	}
}
