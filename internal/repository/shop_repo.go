package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/model"
)

// ==================== ShopRepository 店铺仓库 ====================

// ShopRepository 店铺仓库接口
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByIDWithOwner(ctx context.Context, id int64) (*model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ShopFilter) ([]model.Shop, int64, error)

	UpdateRating(ctx context.Context, id int64, rating float64, reviewsCount int) error
	IncTransactions(ctx context.Context, id int64, delta int) error

	// 任职关系
	GetStaff(ctx context.Context, shopID int64) ([]model.ShopStaff, error)
	GetStaffRole(ctx context.Context, shopID, userID int64) (string, error)
	UpsertStaff(ctx context.Context, staff *model.ShopStaff) error
	RemoveStaff(ctx context.Context, shopID, userID int64) error
	RemoveAllStaff(ctx context.Context, shopID int64) error
	ListShopIDsByStaff(ctx context.Context, userID int64) ([]int64, error)
}

// ShopFilter 店铺筛选条件
type ShopFilter struct {
	Keyword  string
	Status   string
	OwnerID  int64
	Verified *bool
	Page     int
	PageSize int
}

// ==================== 实现 ====================

type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓库
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

// Create 创建店铺
func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

// GetByID 根据 ID 获取店铺
func (r *shopRepository) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).First(&shop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shop, err
}

// GetByIDWithOwner 获取店铺并预载店主信息
func (r *shopRepository) GetByIDWithOwner(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Preload("Owner").First(&shop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shop, err
}

// Update 更新店铺
func (r *shopRepository) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}

// Delete 删除店铺（软删除，级联删除由服务层事务处理）
func (r *shopRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Shop{}, id).Error
}

// List 店铺列表
func (r *shopRepository) List(ctx context.Context, filter ShopFilter) ([]model.Shop, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Shop{})

	// 关键词搜索
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", keyword, keyword)
	}

	// 状态筛选
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	// 店主筛选
	if filter.OwnerID > 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}

	// 认证筛选
	if filter.Verified != nil {
		query = query.Where("is_verified = ?", *filter.Verified)
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

	var shops []model.Shop
	err := query.
		Order("id DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&shops).Error

	return shops, total, err
}

// UpdateRating 回写店铺评分指标 (评价事务内调用)
func (r *shopRepository) UpdateRating(ctx context.Context, id int64, rating float64, reviewsCount int) error {
	return r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":        rating,
			"reviews_count": reviewsCount,
		}).Error
}

// IncTransactions 累加成交数 (结算事务内调用)
func (r *shopRepository) IncTransactions(ctx context.Context, id int64, delta int) error {
	return r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", id).
		Update("transactions_count", gorm.Expr("transactions_count + ?", delta)).Error
}

// ==================== 任职关系 ====================

// GetStaff 获取店铺全部成员及其职务（预载用户信息）
func (r *shopRepository) GetStaff(ctx context.Context, shopID int64) ([]model.ShopStaff, error) {
	var staff []model.ShopStaff
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("shop_id = ?", shopID).
		Order("id ASC").
		Find(&staff).Error
	return staff, err
}

// GetStaffRole 查询用户在店铺的职务，无任职记录返回空串
func (r *shopRepository) GetStaffRole(ctx context.Context, shopID, userID int64) (string, error) {
	var staff model.ShopStaff
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND user_id = ?", shopID, userID).
		First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return staff.Role, nil
}

// UpsertStaff 新增或更新任职记录（一个用户一个店铺只有一条）
func (r *shopRepository) UpsertStaff(ctx context.Context, staff *model.ShopStaff) error {
	var existing model.ShopStaff
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND user_id = ?", staff.ShopID, staff.UserID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(staff).Error
	}
	if err != nil {
		return err
	}
	existing.Role = staff.Role
	existing.UpdatedBy = staff.UpdatedBy
	return r.db.WithContext(ctx).Save(&existing).Error
}

// RemoveStaff 移除任职记录
func (r *shopRepository) RemoveStaff(ctx context.Context, shopID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("shop_id = ? AND user_id = ?", shopID, userID).
		Delete(&model.ShopStaff{}).Error
}

// RemoveAllStaff 清空店铺全部任职记录 (店铺级联删除事务内调用)
func (r *shopRepository) RemoveAllStaff(ctx context.Context, shopID int64) error {
	return r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Delete(&model.ShopStaff{}).Error
}

// ListShopIDsByStaff 查询用户任职的全部店铺 ID
func (r *shopRepository) ListShopIDsByStaff(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ShopStaff{}).
		Where("user_id = ?", userID).
		Pluck("shop_id", &ids).Error
	return ids, err
}
