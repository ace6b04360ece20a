package repository

import (
	"context"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/model"
)

// ==================== ReviewRepository 评价仓库 ====================

// ReviewRepository 商品评价仓库接口
// 写入后的评分重算需要跟写入同一事务，调用方通过 UnitOfWork 拿到绑定事务的实例
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	ExistsByProductUser(ctx context.Context, productID, userID int64) (bool, error)
	ListByProduct(ctx context.Context, productID int64, page, pageSize int) ([]model.Review, int64, error)
	AggregateByProduct(ctx context.Context, productID int64) (sum int64, count int64, err error)
	AggregateByShop(ctx context.Context, shopID int64) (sum int64, count int64, err error)
	DeleteByProduct(ctx context.Context, productID int64) error
	DeleteByShop(ctx context.Context, shopID int64) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create 写入评价
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ExistsByProductUser 用户是否已评价过该商品
func (r *reviewRepository) ExistsByProductUser(ctx context.Context, productID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListByProduct 商品评价列表
func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64, page, pageSize int) ([]model.Review, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var reviews []model.Review
	err := query.
		Preload("User").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reviews).Error

	return reviews, total, err
}

// AggregateByProduct 商品评分合计 (事务内重算用)
func (r *reviewRepository) AggregateByProduct(ctx context.Context, productID int64) (int64, int64, error) {
	return r.aggregate(r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("product_id = ?", productID))
}

// AggregateByShop 店铺全部在售商品的评分合计
func (r *reviewRepository) AggregateByShop(ctx context.Context, shopID int64) (int64, int64, error) {
	return r.aggregate(r.db.WithContext(ctx).
		Model(&model.Review{}).
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.shop_id = ? AND products.deleted_at IS NULL", shopID))
}

func (r *reviewRepository) aggregate(query *gorm.DB) (int64, int64, error) {
	var result struct {
		Sum   int64
		Count int64
	}
	err := query.
		Select("COALESCE(SUM(rating), 0) AS sum, COUNT(*) AS count").
		Scan(&result).Error
	return result.Sum, result.Count, err
}

// DeleteByProduct 删除商品的全部评价 (商品级联删除事务内调用)
func (r *reviewRepository) DeleteByProduct(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.Review{}).Error
}

// DeleteByShop 删除店铺全部商品的评价 (店铺级联删除事务内调用)
func (r *reviewRepository) DeleteByShop(ctx context.Context, shopID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id IN (?)",
			r.db.Model(&model.Product{}).Select("id").Where("shop_id = ?", shopID),
		).
		Delete(&model.Review{}).Error
}
