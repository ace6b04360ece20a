package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/model"
)

// ==================== ProductRepository 商品仓库 ====================

// ProductRepository 商品仓库接口
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByIDWithShop(ctx context.Context, id int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id int64) error
	DeleteByShop(ctx context.Context, shopID int64) error
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	UpdateRating(ctx context.Context, id int64, rating float64, reviewsCount int) error
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
}

// ProductFilter 商品筛选条件
type ProductFilter struct {
	Keyword  string
	ShopID   int64
	MinPrice int64
	MaxPrice int64
	InStock  bool
	Page     int
	PageSize int
}

// ==================== 实现 ====================

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create 创建商品
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID 根据 ID 获取商品
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDWithShop 获取商品并预载店铺
func (r *productRepository) GetByIDWithShop(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Preload("Shop").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// Update 更新商品
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete 删除商品（软删除，评价级联由服务层事务处理）
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

// DeleteByShop 删除店铺全部商品（店铺级联删除事务内调用）
func (r *productRepository) DeleteByShop(ctx context.Context, shopID int64) error {
	return r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Delete(&model.Product{}).Error
}

// List 商品列表/搜索
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{})

	// 关键词搜索
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", keyword, keyword)
	}

	// 店铺筛选
	if filter.ShopID > 0 {
		query = query.Where("shop_id = ?", filter.ShopID)
	}

	// 价格区间
	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}

	// 仅看有货
	if filter.InStock {
		query = query.Where("quantity > 0")
	}

	// 统计总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	var products []model.Product
	err := query.
		Order("id DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&products).Error

	return products, total, err
}

// UpdateRating 回写评分指标 (评价事务内调用)
func (r *productRepository) UpdateRating(ctx context.Context, id int64, rating float64, reviewsCount int) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":        rating,
			"reviews_count": reviewsCount,
		}).Error
}

// DecrementStock 条件扣减库存，库存不足返回 false (结算事务内调用)
func (r *productRepository) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
