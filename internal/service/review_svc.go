package service

import (
	"context"
	"errors"
	"math"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== ReviewService 评价服务 ====================

// ReviewService 商品评价
// 一人一评；评分落库和商品/店铺聚合值的重算在同一事务内完成，
// 聚合值永远等于表里评价的实际均值（保留一位小数）
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	uow         *repository.UnitOfWork
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, uow *repository.UnitOfWork) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		uow:         uow,
	}
}

// Create 发表评价并重算商品与店铺评分
func (s *ReviewService) Create(ctx context.Context, actorID, productID int64, req *dto.CreateReviewRequest) (*dto.ReviewInfo, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	exists, err := s.reviewRepo.ExistsByProductUser(ctx, productID, actorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    actorID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err = s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		if err := uow.Reviews.Create(ctx, review); err != nil {
			return err
		}

		sum, count, err := uow.Reviews.AggregateByProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := uow.Products.UpdateRating(ctx, productID, roundRating(sum, count), int(count)); err != nil {
			return err
		}

		return recomputeShopRating(ctx, uow, product.ShopID)
	})
	if err != nil {
		return nil, err
	}

	return toReviewInfo(review), nil
}

// ListByProduct 商品评价列表
func (s *ReviewService) ListByProduct(ctx context.Context, productID int64, page, pageSize int) (*dto.ReviewListResponse, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	reviews, total, err := s.reviewRepo.ListByProduct(ctx, productID, page, pageSize)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.ReviewInfo, 0, len(reviews))
	for i := range reviews {
		list = append(list, toReviewInfo(&reviews[i]))
	}
	return &dto.ReviewListResponse{List: list, Total: total}, nil
}

// recomputeShopRating 按店铺在售商品的全部评价重算聚合评分
// 商品删除后调用它评分会随之回落，和逐条累加不同步的问题无关
func recomputeShopRating(ctx context.Context, uow *repository.UnitOfWork, shopID int64) error {
	sum, count, err := uow.Reviews.AggregateByShop(ctx, shopID)
	if err != nil {
		return err
	}
	return uow.Shops.UpdateRating(ctx, shopID, roundRating(sum, count), int(count))
}

// roundRating 均值保留一位小数，无评价时归零
func roundRating(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

// toReviewInfo 模型转 DTO
func toReviewInfo(review *model.Review) *dto.ReviewInfo {
	info := &dto.ReviewInfo{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	if review.User != nil {
		info.Username = review.User.Username
	}
	return info
}

// ==================== 错误定义 ====================

var (
	ErrInvalidRating   = errors.New("评分必须在 1~5 之间")
	ErrAlreadyReviewed = errors.New("已评价过该商品")
)
