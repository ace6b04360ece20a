package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/model"
)

// ==================== ComplaintRepository 投诉仓库 ====================

// ComplaintRepository 投诉仓库接口
// 平台级和店铺级投诉同表存储 (shop_id = 0 为平台级)
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *model.Complaint) error
	GetByID(ctx context.Context, id int64) (*model.Complaint, error)
	Update(ctx context.Context, complaint *model.Complaint) error
	List(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, int64, error)
	AppendMessage(ctx context.Context, msg *model.ComplaintMessage) error
	ListMessages(ctx context.Context, complaintID int64) ([]model.ComplaintMessage, error)
}

// ComplaintFilter 投诉筛选条件
// ShopID: nil 不限范围, 0 仅平台级, >0 指定店铺
type ComplaintFilter struct {
	ShopID       *int64
	UserID       int64
	AssignedToID int64
	Status       string
	Page         int
	PageSize     int
}

type complaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository 创建投诉仓库
func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

// Create 创建投诉
func (r *complaintRepository) Create(ctx context.Context, complaint *model.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

// GetByID 获取投诉（预载发起人和受理人）
func (r *complaintRepository) GetByID(ctx context.Context, id int64) (*model.Complaint, error) {
	var complaint model.Complaint
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("AssignedTo").
		First(&complaint, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &complaint, err
}

// Update 更新投诉
func (r *complaintRepository) Update(ctx context.Context, complaint *model.Complaint) error {
	return r.db.WithContext(ctx).Save(complaint).Error
}

// List 投诉列表
func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Complaint{})

	// 范围筛选: 平台级 (=0) 或指定店铺 (>0)
	if filter.ShopID != nil {
		query = query.Where("shop_id = ?", *filter.ShopID)
	}

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.AssignedToID > 0 {
		query = query.Where("assigned_to_id = ?", filter.AssignedToID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	var complaints []model.Complaint
	err := query.
		Preload("User").
		Preload("AssignedTo").
		Order("id DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&complaints).Error

	return complaints, total, err
}

// AppendMessage 追加沟通记录
func (r *complaintRepository) AppendMessage(ctx context.Context, msg *model.ComplaintMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListMessages 投诉全部沟通记录，时间正序
func (r *complaintRepository) ListMessages(ctx context.Context, complaintID int64) ([]model.ComplaintMessage, error) {
	var messages []model.ComplaintMessage
	err := r.db.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}
