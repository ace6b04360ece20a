package model

import (
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	AuditMixin
	ShopID int64 `gorm:"index;not null"` // 店铺 ID (多店铺隔离核心)
	Shop   *Shop `gorm:"foreignKey:ShopID"`

	// --- 商品基本信息 ---
	Name        string `gorm:"size:255;index;not null"`
	Description string `gorm:"type:text"`
	AvatarUrl   string `gorm:"size:255"`

	// --- 价格与数量 ---
	// 单价以分为单位存储，避免浮点误差
	Price    int64 `gorm:"not null;default:0"`
	Quantity int   `gorm:"default:0"`

	// --- 评分指标 (评价事务内更新) ---
	Rating       float64 `gorm:"type:decimal(3,1);default:0"`
	ReviewsCount int     `gorm:"default:0"`

	// --- 标签 (Postgres Array) ---
	Tags pq.StringArray `gorm:"type:text[]"`

	// --- 关联关系 ---
	Reviews []Review `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "products"
}

// Review 商品评价
// 一个用户对一个商品只能评价一次
type Review struct {
	BaseModel
	ProductID int64 `gorm:"index;uniqueIndex:idx_product_user;not null"`
	UserID    int64 `gorm:"index;uniqueIndex:idx_product_user;not null"`

	Rating  int    `gorm:"not null"` // 1~5
	Comment string `gorm:"type:text"`

	Product *Product `gorm:"foreignKey:ProductID"`
	User    *User    `gorm:"foreignKey:UserID"`
}

func (Review) TableName() string {
	return "reviews"
}
