package repository

import (
	"context"

	"gorm.io/gorm"
)

// ==================== 事务支持 ====================

// UnitOfWork 工作单元（事务）
// 评分重算、购物车结算、店铺级联删除这类多表写入
// 通过它在单个数据库事务内完成
type UnitOfWork struct {
	db       *gorm.DB
	Shops    ShopRepository
	Products ProductRepository
	Reviews  ReviewRepository
	Carts    CartRepository
	Orders   OrderRepository
}

// NewUnitOfWork 创建工作单元
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{
		db:       db,
		Shops:    NewShopRepository(db),
		Products: NewProductRepository(db),
		Reviews:  NewReviewRepository(db),
		Carts:    NewCartRepository(db),
		Orders:   NewOrderRepository(db),
	}
}

// Transaction 执行事务
func (u *UnitOfWork) Transaction(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &UnitOfWork{
			db:       tx,
			Shops:    NewShopRepository(tx),
			Products: NewProductRepository(tx),
			Reviews:  NewReviewRepository(tx),
			Carts:    NewCartRepository(tx),
			Orders:   NewOrderRepository(tx),
		}
		return fn(txUow)
	})
}
