package service

import (
	"context"
	"errors"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== ShopService 店铺服务 ====================

// ShopService 店铺与成员管理
// 日常管理权限以任职表为准 (CanManageShop)；审核/封禁只开放给管理层，
// 由路由中间件拦截
type ShopService struct {
	shopRepo repository.ShopRepository
	userRepo repository.UserRepository
	uow      *repository.UnitOfWork
	presence *PresenceService
	notify   *NotifyService
}

// NewShopService 创建店铺服务
func NewShopService(shopRepo repository.ShopRepository, userRepo repository.UserRepository, uow *repository.UnitOfWork, presence *PresenceService, notify *NotifyService) *ShopService {
	return &ShopService{
		shopRepo: shopRepo,
		userRepo: userRepo,
		uow:      uow,
		presence: presence,
		notify:   notify,
	}
}

// Create 创建店铺（管理员操作），同时给店主落一条 SHOP_OWNER 任职记录
func (s *ShopService) Create(ctx context.Context, req *dto.CreateShopRequest) (*dto.ShopInfo, error) {
	owner, err := s.userRepo.GetByID(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	shop := &model.Shop{
		Name:        req.Name,
		Description: req.Description,
		AvatarUrl:   req.AvatarUrl,
		OwnerID:     req.OwnerID,
		Status:      model.ShopStatusPending,
	}

	err = s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		if err := uow.Shops.Create(ctx, shop); err != nil {
			return err
		}
		return uow.Shops.UpsertStaff(ctx, &model.ShopStaff{
			UserID: req.OwnerID,
			ShopID: shop.ID,
			Role:   string(permission.RoleShopOwner),
		})
	})
	if err != nil {
		return nil, err
	}

	shop.Owner = owner
	return toShopInfo(shop), nil
}

// Get 店铺详情
func (s *ShopService) Get(ctx context.Context, id int64) (*dto.ShopInfo, error) {
	shop, err := s.shopRepo.GetByIDWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return toShopInfo(shop), nil
}

// List 店铺列表
func (s *ShopService) List(ctx context.Context, req *dto.ShopListRequest) (*dto.ShopListResponse, error) {
	shops, total, err := s.shopRepo.List(ctx, repository.ShopFilter{
		Keyword:  req.Keyword,
		Status:   req.Status,
		OwnerID:  req.OwnerID,
		Verified: req.Verified,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*dto.ShopInfo, 0, len(shops))
	for i := range shops {
		list = append(list, toShopInfo(&shops[i]))
	}
	return &dto.ShopListResponse{List: list, Total: total}, nil
}

// Update 更新店铺资料
func (s *ShopService) Update(ctx context.Context, actorID int64, actorRole permission.Role, shopID int64, req *dto.UpdateShopRequest) (*dto.ShopInfo, error) {
	shop, err := s.requireManageable(ctx, actorID, actorRole, shopID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		shop.Name = req.Name
	}
	if req.Description != "" {
		shop.Description = req.Description
	}
	if req.AvatarUrl != "" {
		shop.AvatarUrl = req.AvatarUrl
	}
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return toShopInfo(shop), nil
}

// Delete 删除店铺（管理员操作）
// 评价、商品、任职记录、店铺本身在同一事务内依次删除
func (s *ShopService) Delete(ctx context.Context, shopID int64) error {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}

	return s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		if err := uow.Reviews.DeleteByShop(ctx, shopID); err != nil {
			return err
		}
		if err := uow.Products.DeleteByShop(ctx, shopID); err != nil {
			return err
		}
		if err := uow.Shops.RemoveAllStaff(ctx, shopID); err != nil {
			return err
		}
		return uow.Shops.Delete(ctx, shopID)
	})
}

// ==================== 审核与封禁 ====================

// Verify 审核通过：打认证标，待审核店铺转为营业
func (s *ShopService) Verify(ctx context.Context, shopID int64) (*dto.ShopInfo, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	shop.IsVerified = true
	if shop.Status == model.ShopStatusPending {
		shop.Status = model.ShopStatusActive
	}
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return toShopInfo(shop), nil
}

// Block 封禁店铺
func (s *ShopService) Block(ctx context.Context, actorID int64, shopID int64, req *dto.BlockShopRequest) (*dto.ShopInfo, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	shop.Status = model.ShopStatusBlocked
	shop.BlockReason = req.Reason
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.Publish(EventShopBlocked, map[string]interface{}{
			"shop_id":    shop.ID,
			"shop_name":  shop.Name,
			"reason":     req.Reason,
			"blocked_by": actorID,
		})
	}
	return toShopInfo(shop), nil
}

// Unblock 解封店铺
func (s *ShopService) Unblock(ctx context.Context, shopID int64) (*dto.ShopInfo, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	shop.Status = model.ShopStatusActive
	shop.BlockReason = ""
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return toShopInfo(shop), nil
}

// ==================== 成员管理 ====================

// ListStaff 成员列表
func (s *ShopService) ListStaff(ctx context.Context, actorID int64, actorRole permission.Role, shopID int64) ([]*dto.StaffInfo, error) {
	if _, err := s.requireManageable(ctx, actorID, actorRole, shopID); err != nil {
		return nil, err
	}

	staff, err := s.shopRepo.GetStaff(ctx, shopID)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.StaffInfo, 0, len(staff))
	for i := range staff {
		list = append(list, toStaffInfo(&staff[i]))
	}
	return list, nil
}

// UpsertStaff 新增成员或调整职务
func (s *ShopService) UpsertStaff(ctx context.Context, actorID int64, actorRole permission.Role, shopID int64, req *dto.UpsertStaffRequest) (*dto.StaffInfo, error) {
	if _, err := s.requireManageable(ctx, actorID, actorRole, shopID); err != nil {
		return nil, err
	}
	if !permission.ValidShopRole(permission.Role(req.Role)) {
		return nil, ErrInvalidStaffRole
	}

	target, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}
	if target.IsBlocked {
		return nil, ErrStaffBlocked
	}

	staff := &model.ShopStaff{
		UserID: req.UserID,
		ShopID: shopID,
		Role:   req.Role,
	}
	if err := s.shopRepo.UpsertStaff(ctx, staff); err != nil {
		return nil, err
	}

	staff.User = target
	return toStaffInfo(staff), nil
}

// RemoveStaff 移除成员
func (s *ShopService) RemoveStaff(ctx context.Context, actorID int64, actorRole permission.Role, shopID, userID int64) error {
	if _, err := s.requireManageable(ctx, actorID, actorRole, shopID); err != nil {
		return err
	}

	role, err := s.shopRepo.GetStaffRole(ctx, shopID, userID)
	if err != nil {
		return err
	}
	if role == "" {
		return ErrStaffNotFound
	}
	return s.shopRepo.RemoveStaff(ctx, shopID, userID)
}

// StaffOnline 成员在线状态（会话 + 心跳）
func (s *ShopService) StaffOnline(ctx context.Context, actorID int64, actorRole permission.Role, shopID int64) ([]*dto.StaffOnlineInfo, error) {
	if _, err := s.requireManageable(ctx, actorID, actorRole, shopID); err != nil {
		return nil, err
	}

	staff, err := s.shopRepo.GetStaff(ctx, shopID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]int64, 0, len(staff))
	for i := range staff {
		userIDs = append(userIDs, staff[i].UserID)
	}
	online, err := s.presence.OnlineSet(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.StaffOnlineInfo, 0, len(staff))
	for i := range staff {
		info := &dto.StaffOnlineInfo{
			UserID: staff[i].UserID,
			Role:   staff[i].Role,
			Online: online[staff[i].UserID],
		}
		if staff[i].User != nil {
			info.Username = staff[i].User.Username
		}
		list = append(list, info)
	}
	return list, nil
}

// ==================== 能力查询 ====================

// Capabilities 操作者对该店铺的能力
func (s *ShopService) Capabilities(ctx context.Context, actorID int64, actorRole permission.Role, shopID int64) (*dto.ShopCapabilities, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	staffRole, err := s.shopRepo.GetStaffRole(ctx, shopID, actorID)
	if err != nil {
		return nil, err
	}

	return &dto.ShopCapabilities{
		CanManage:      permission.CanManageShop(actorRole, actorID, shop.OwnerID, permission.Role(staffRole)),
		CanModerate:    permission.CanModerateShop(actorRole),
		CanHandleCases: permission.CanManageComplaint(actorRole, true, permission.Role(staffRole)),
		StaffRole:      staffRole,
	}, nil
}

// requireManageable 取店铺并校验管理权
func (s *ShopService) requireManageable(ctx context.Context, actorID int64, actorRole permission.Role, shopID int64) (*model.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	staffRole, err := s.shopRepo.GetStaffRole(ctx, shopID, actorID)
	if err != nil {
		return nil, err
	}
	if !permission.CanManageShop(actorRole, actorID, shop.OwnerID, permission.Role(staffRole)) {
		return nil, forbiddenErr("无权管理该店铺")
	}
	return shop, nil
}

// ==================== 转换函数 ====================

func toShopInfo(shop *model.Shop) *dto.ShopInfo {
	info := &dto.ShopInfo{
		ID:                shop.ID,
		Name:              shop.Name,
		Description:       shop.Description,
		AvatarUrl:         shop.AvatarUrl,
		OwnerID:           shop.OwnerID,
		Status:            shop.Status,
		IsVerified:        shop.IsVerified,
		BlockReason:       shop.BlockReason,
		Rating:            shop.Rating,
		ReviewsCount:      shop.ReviewsCount,
		TransactionsCount: shop.TransactionsCount,
		CreatedAt:         shop.CreatedAt,
	}
	if shop.Owner != nil {
		info.OwnerName = shop.Owner.Username
	}
	return info
}

func toStaffInfo(staff *model.ShopStaff) *dto.StaffInfo {
	info := &dto.StaffInfo{
		UserID:   staff.UserID,
		Role:     staff.Role,
		JoinedAt: staff.CreatedAt,
	}
	if staff.User != nil {
		info.Username = staff.User.Username
		info.DisplayName = staff.User.DisplayName
		info.AvatarUrl = staff.User.AvatarUrl
	}
	return info
}

// ==================== 错误定义 ====================

var (
	ErrShopNotFound     = notFoundErr("店铺不存在")
	ErrStaffNotFound    = notFoundErr("该用户不在店铺任职")
	ErrInvalidStaffRole = errors.New("只能授予店铺内职务")
	ErrStaffBlocked     = errors.New("被封禁用户不能担任店铺成员")
)
