package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func newShopTestService(t *testing.T) (*ShopService, *gorm.DB) {
	db := setupSvcTestDB(t)
	sessionRepo := repository.NewSessionRepository(db)
	svc := NewShopService(
		repository.NewShopRepository(db),
		repository.NewUserRepository(db),
		repository.NewUnitOfWork(db),
		NewPresenceService(nil, sessionRepo),
		nil,
	)
	return svc, db
}

// ==================== Create 测试 ====================

func TestShopService_Create(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testUser{ID: 5, Username: "seller", Password: "x", Role: "SHOP_OWNER"})

	info, err := svc.Create(ctx, &dto.CreateShopRequest{
		Name:    "手作小铺",
		OwnerID: 5,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if info.Status != model.ShopStatusPending {
		t.Errorf("status = %s, 新店应为待审核", info.Status)
	}
	if info.OwnerName != "seller" {
		t.Errorf("owner_name = %s, want seller", info.OwnerName)
	}

	// 店主的任职记录在同一事务内落库
	var staff testStaff
	if err := db.Where("shop_id = ? AND user_id = ?", info.ID, 5).First(&staff).Error; err != nil {
		t.Fatalf("店主任职记录缺失: %v", err)
	}
	if staff.Role != string(permission.RoleShopOwner) {
		t.Errorf("staff role = %s, want SHOP_OWNER", staff.Role)
	}
}

func TestShopService_Create_OwnerNotFound(t *testing.T) {
	svc, _ := newShopTestService(t)

	_, err := svc.Create(context.Background(), &dto.CreateShopRequest{Name: "没有店主", OwnerID: 999})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

// ==================== Update 测试 ====================

func TestShopService_Update_ByMembership(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "旧名字", OwnerID: 5, Status: model.ShopStatusActive})
	db.Create(&testStaff{ID: 1, UserID: 7, ShopID: 1, Role: "SHOP_MAIN"})

	// 店内主管可以改资料
	info, err := svc.Update(ctx, 7, permission.RoleUser, 1, &dto.UpdateShopRequest{Name: "新名字"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if info.Name != "新名字" {
		t.Errorf("name = %s, want 新名字", info.Name)
	}
}

func TestShopService_Update_Denied(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "某店", OwnerID: 5, Status: model.ShopStatusActive})
	db.Create(&testStaff{ID: 1, UserID: 8, ShopID: 1, Role: "SHOP_STAFF"})

	tests := []struct {
		name      string
		actorID   int64
		actorRole permission.Role
	}{
		{"路人不能改", 99, permission.RoleUser},
		{"普通店员不能改", 8, permission.RoleUser},
		{"全局 SHOP_OWNER 角色不带任职也不能改", 42, permission.RoleShopOwner},
		{"审核员不是管理员层", 99, permission.RoleModerator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.actorID, tt.actorRole, 1, &dto.UpdateShopRequest{Name: "改名"})
			if !errors.Is(err, ErrForbidden) {
				t.Errorf("error = %v, want 403 类错误", err)
			}
		})
	}
}

func TestShopService_Update_ByLiteralOwner(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	// owner_id 对上了就行，哪怕任职表里没有记录
	db.Create(&testShop{ID: 1, Name: "某店", OwnerID: 5, Status: model.ShopStatusActive})

	if _, err := svc.Update(ctx, 5, permission.RoleUser, 1, &dto.UpdateShopRequest{Name: "改好了"}); err != nil {
		t.Errorf("登记店主应能管理店铺: %v", err)
	}
}

func TestShopService_Update_ByAdmin(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "某店", OwnerID: 5, Status: model.ShopStatusActive})

	if _, err := svc.Update(ctx, 99, permission.RoleAdmin, 1, &dto.UpdateShopRequest{Name: "管理员改的"}); err != nil {
		t.Errorf("管理员层应能管理任何店铺: %v", err)
	}
}

// ==================== Delete 测试 ====================

func TestShopService_Delete_Cascades(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "要删的店", OwnerID: 5, Status: model.ShopStatusActive})
	db.Create(&testStaff{ID: 1, UserID: 5, ShopID: 1, Role: "SHOP_OWNER"})
	db.Create(&testProduct{ID: 1, ShopID: 1, Name: "货一", Price: 100})
	db.Create(&testProduct{ID: 2, ShopID: 1, Name: "货二", Price: 200})
	db.Create(&model.Review{ProductID: 1, UserID: 10, Rating: 5})

	// 别的店不受影响
	db.Create(&testShop{ID: 2, Name: "无辜的店", OwnerID: 6, Status: model.ShopStatusActive})
	db.Create(&testProduct{ID: 3, ShopID: 2, Name: "货三", Price: 300})

	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var shops, staff, products, reviews int64
	db.Model(&testShop{}).Count(&shops)
	db.Model(&testStaff{}).Where("shop_id = ?", 1).Count(&staff)
	db.Model(&testProduct{}).Where("shop_id = ?", 1).Count(&products)
	db.Model(&model.Review{}).Count(&reviews)

	if shops != 1 {
		t.Errorf("shops = %d, want 1", shops)
	}
	if staff != 0 {
		t.Errorf("staff = %d, want 0", staff)
	}
	if products != 0 {
		t.Errorf("shop1 products = %d, want 0", products)
	}
	if reviews != 0 {
		t.Errorf("reviews = %d, want 0", reviews)
	}

	var survivor int64
	db.Model(&testProduct{}).Where("shop_id = ?", 2).Count(&survivor)
	if survivor != 1 {
		t.Errorf("别的店的商品被误删, count = %d", survivor)
	}
}

func TestShopService_Delete_NotFound(t *testing.T) {
	svc, _ := newShopTestService(t)

	err := svc.Delete(context.Background(), 999)
	if !errors.Is(err, ErrShopNotFound) {
		t.Errorf("error = %v, want ErrShopNotFound", err)
	}
}

// ==================== 审核与封禁测试 ====================

func TestShopService_Verify(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "新店", OwnerID: 5, Status: model.ShopStatusPending})

	info, err := svc.Verify(ctx, 1)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !info.IsVerified {
		t.Error("is_verified 应为 true")
	}
	if info.Status != model.ShopStatusActive {
		t.Errorf("status = %s, 待审核店铺过审后应转营业", info.Status)
	}
}

func TestShopService_Verify_KeepsBlockedStatus(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	// 被封禁的店过审只打标，不解封
	db.Create(&testShop{ID: 1, Name: "被封的店", OwnerID: 5, Status: model.ShopStatusBlocked})

	info, err := svc.Verify(ctx, 1)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if info.Status != model.ShopStatusBlocked {
		t.Errorf("status = %s, 认证不应解除封禁", info.Status)
	}
	if !info.IsVerified {
		t.Error("is_verified 应为 true")
	}
}

func TestShopService_BlockUnblock(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "某店", OwnerID: 5, Status: model.ShopStatusActive})

	info, err := svc.Block(ctx, 1, 1, &dto.BlockShopRequest{Reason: "售假"})
	if err != nil {
		t.Fatalf("Block() error = %v", err)
	}
	if info.Status != model.ShopStatusBlocked {
		t.Errorf("status = %s, want BLOCKED", info.Status)
	}
	if info.BlockReason != "售假" {
		t.Errorf("block_reason = %s", info.BlockReason)
	}

	info, err = svc.Unblock(ctx, 1)
	if err != nil {
		t.Fatalf("Unblock() error = %v", err)
	}
	if info.Status != model.ShopStatusActive {
		t.Errorf("status = %s, want ACTIVE", info.Status)
	}
	if info.BlockReason != "" {
		t.Errorf("block_reason = %s, 解封应清空", info.BlockReason)
	}
}

// ==================== 成员管理测试 ====================

func TestShopService_UpsertStaff(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "某店", OwnerID: 5, Status: model.ShopStatusActive})
	db.Create(&testUser{ID: 7, Username: "clerk", Password: "x", Role: "USER"})

	info, err := svc.UpsertStaff(ctx, 5, permission.RoleUser, 1, &dto.UpsertStaffRequest{
		UserID: 7,
		Role:   "SHOP_STAFF",
	})
	if err != nil {
		t.Fatalf("UpsertStaff() error = %v", err)
	}
	if info.Role != "SHOP_STAFF" || info.Username != "clerk" {
		t.Errorf("staff = %+v", info)
	}

	// 再次授予只更新职务，不产生第二条记录
	if _, err := svc.UpsertStaff(ctx, 5, permission.RoleUser, 1, &dto.UpsertStaffRequest{
		UserID: 7,
		Role:   "SHOP_MAIN",
	}); err != nil {
		t.Fatalf("UpsertStaff(调职) error = %v", err)
	}

	var count int64
	db.Model(&testStaff{}).Where("shop_id = ? AND user_id = ?", 1, 7).Count(&count)
	if count != 1 {
		t.Errorf("staff rows = %d, want 1", count)
	}
	var staff testStaff
	db.Where("shop_id = ? AND user_id = ?", 1, 7).First(&staff)
	if staff.Role != "SHOP_MAIN" {
		t.Errorf("role = %s, want SHOP_MAIN", staff.Role)
	}
}

func TestShopService_UpsertStaff_Validation(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "某店", OwnerID: 5, Status: model.ShopStatusActive})
	db.Create(&testUser{ID: 7, Username: "clerk", Password: "x", Role: "USER"})
	db.Create(&testUser{ID: 8, Username: "banned", Password: "x", Role: "USER", IsBlocked: true})

	// 只能授予店铺内职务
	_, err := svc.UpsertStaff(ctx, 5, permission.RoleUser, 1, &dto.UpsertStaffRequest{UserID: 7, Role: "ADMIN"})
	if !errors.Is(err, ErrInvalidStaffRole) {
		t.Errorf("error = %v, want ErrInvalidStaffRole", err)
	}

	// 被封禁用户不能任职
	_, err = svc.UpsertStaff(ctx, 5, permission.RoleUser, 1, &dto.UpsertStaffRequest{UserID: 8, Role: "SHOP_STAFF"})
	if !errors.Is(err, ErrStaffBlocked) {
		t.Errorf("error = %v, want ErrStaffBlocked", err)
	}

	// 目标用户不存在
	_, err = svc.UpsertStaff(ctx, 5, permission.RoleUser, 1, &dto.UpsertStaffRequest{UserID: 999, Role: "SHOP_STAFF"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}

	// 店员无权管成员
	db.Create(&testStaff{ID: 1, UserID: 9, ShopID: 1, Role: "SHOP_STAFF"})
	_, err = svc.UpsertStaff(ctx, 9, permission.RoleUser, 1, &dto.UpsertStaffRequest{UserID: 7, Role: "SHOP_STAFF"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("error = %v, 店员管成员应被拒", err)
	}
}

func TestShopService_RemoveStaff(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "某店", OwnerID: 5, Status: model.ShopStatusActive})
	db.Create(&testStaff{ID: 1, UserID: 7, ShopID: 1, Role: "SHOP_STAFF"})

	if err := svc.RemoveStaff(ctx, 5, permission.RoleUser, 1, 7); err != nil {
		t.Fatalf("RemoveStaff() error = %v", err)
	}

	var count int64
	db.Model(&testStaff{}).Where("shop_id = ? AND user_id = ?", 1, 7).Count(&count)
	if count != 0 {
		t.Errorf("staff rows = %d, want 0", count)
	}

	// 不在职的移除报 404 类错误
	err := svc.RemoveStaff(ctx, 5, permission.RoleUser, 1, 7)
	if !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("error = %v, want ErrStaffNotFound", err)
	}
}

func TestShopService_StaffOnline(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "某店", OwnerID: 5, Status: model.ShopStatusActive})
	db.Create(&testUser{ID: 7, Username: "on-duty", Password: "x"})
	db.Create(&testUser{ID: 8, Username: "off-duty", Password: "x"})
	db.Create(&testStaff{ID: 1, UserID: 7, ShopID: 1, Role: "SHOP_MAIN"})
	db.Create(&testStaff{ID: 2, UserID: 8, ShopID: 1, Role: "SHOP_STAFF"})

	// 7 有活跃会话 (Redis 不可用时退回会话表判断)
	now := time.Now()
	db.Create(&model.Session{UserID: 7, StartedAt: now, LastActiveAt: now, IsActive: true})

	list, err := svc.StaffOnline(ctx, 5, permission.RoleUser, 1)
	if err != nil {
		t.Fatalf("StaffOnline() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}

	byID := make(map[int64]*dto.StaffOnlineInfo, len(list))
	for _, s := range list {
		byID[s.UserID] = s
	}
	if !byID[7].Online {
		t.Error("用户 7 应在线")
	}
	if byID[8].Online {
		t.Error("用户 8 不应在线")
	}
}

// ==================== 能力查询测试 ====================

func TestShopService_Capabilities(t *testing.T) {
	svc, db := newShopTestService(t)
	ctx := context.Background()

	db.Create(&testShop{ID: 1, Name: "某店", OwnerID: 5, Status: model.ShopStatusActive})
	db.Create(&testStaff{ID: 1, UserID: 7, ShopID: 1, Role: "SHOP_MAIN"})
	db.Create(&testStaff{ID: 2, UserID: 8, ShopID: 1, Role: "SHOP_STAFF"})

	// 店内主管：能管店、能处理店铺投诉，不能审核店铺
	caps, err := svc.Capabilities(ctx, 7, permission.RoleUser, 1)
	if err != nil {
		t.Fatalf("Capabilities() error = %v", err)
	}
	if !caps.CanManage || !caps.CanHandleCases {
		t.Errorf("SHOP_MAIN caps = %+v", caps)
	}
	if caps.CanModerate {
		t.Error("店内成员不能审核店铺")
	}
	if caps.StaffRole != "SHOP_MAIN" {
		t.Errorf("staff_role = %s", caps.StaffRole)
	}

	// 普通店员：都不行
	caps, _ = svc.Capabilities(ctx, 8, permission.RoleUser, 1)
	if caps.CanManage || caps.CanHandleCases {
		t.Errorf("SHOP_STAFF caps = %+v", caps)
	}

	// 管理员：全开
	caps, _ = svc.Capabilities(ctx, 99, permission.RoleAdmin, 1)
	if !caps.CanManage || !caps.CanModerate || !caps.CanHandleCases {
		t.Errorf("ADMIN caps = %+v", caps)
	}

	// 审核员：能处理投诉、能看，但日常管理不行
	caps, _ = svc.Capabilities(ctx, 99, permission.RoleModerator, 1)
	if caps.CanManage || caps.CanModerate {
		t.Errorf("MODERATOR caps = %+v", caps)
	}
	if !caps.CanHandleCases {
		t.Error("审核员应能处理店铺投诉")
	}
}
