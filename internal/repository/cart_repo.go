package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/model"
)

// ==================== CartRepository 购物车仓库 ====================

// CartRepository 购物车仓库接口
type CartRepository interface {
	Get(ctx context.Context, userID, productID int64) (*model.CartItem, error)
	Upsert(ctx context.Context, item *model.CartItem) error
	ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error)
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// Get 查询单条购物车记录
func (r *cartRepository) Get(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

// Upsert 写入购物车，同商品记录合并
func (r *cartRepository) Upsert(ctx context.Context, item *model.CartItem) error {
	existing, err := r.Get(ctx, item.UserID, item.ProductID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(item).Error
	}
	existing.Quantity = item.Quantity
	return r.db.WithContext(ctx).Save(existing).Error
}

// ListByUser 用户购物车列表（预载商品）
func (r *cartRepository) ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// Remove 移除单个商品
func (r *cartRepository) Remove(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{}).Error
}

// Clear 清空购物车（结算事务内调用）
func (r *cartRepository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}
