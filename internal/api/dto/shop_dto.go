package dto

import "time"

// ==================== 店铺 ====================

// CreateShopRequest 创建店铺请求 (管理员操作)
type CreateShopRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	OwnerID     int64  `json:"owner_id" binding:"required,gt=0"`
	AvatarUrl   string `json:"avatar_url" binding:"omitempty,max=255"`
}

// UpdateShopRequest 更新店铺请求
type UpdateShopRequest struct {
	Name        string `json:"name" binding:"omitempty,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	AvatarUrl   string `json:"avatar_url" binding:"omitempty,max=255"`
}

// ShopInfo 店铺信息
type ShopInfo struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	AvatarUrl         string    `json:"avatar_url"`
	OwnerID           int64     `json:"owner_id"`
	OwnerName         string    `json:"owner_name,omitempty"`
	Status            string    `json:"status"`
	IsVerified        bool      `json:"is_verified"`
	BlockReason       string    `json:"block_reason,omitempty"`
	Rating            float64   `json:"rating"`
	ReviewsCount      int       `json:"reviews_count"`
	TransactionsCount int       `json:"transactions_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// ShopListRequest 店铺列表请求
type ShopListRequest struct {
	Keyword  string `form:"keyword"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING ACTIVE BLOCKED"`
	OwnerID  int64  `form:"owner_id"`
	Verified *bool  `form:"verified"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ShopListResponse 店铺列表响应
type ShopListResponse struct {
	List  []*ShopInfo `json:"list"`
	Total int64       `json:"total"`
}

// BlockShopRequest 封禁店铺请求
type BlockShopRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// ==================== 店铺成员 ====================

// UpsertStaffRequest 新增/调整成员请求
type UpsertStaffRequest struct {
	UserID int64  `json:"user_id" binding:"required,gt=0"`
	Role   string `json:"role" binding:"required,oneof=SHOP_OWNER SHOP_MAIN SHOP_STAFF"`
}

// StaffInfo 成员信息
type StaffInfo struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarUrl   string    `json:"avatar_url"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// StaffOnlineInfo 成员在线状态
type StaffOnlineInfo struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Online   bool   `json:"online"`
}

// ==================== 能力查询 ====================

// ShopCapabilities 操作者对某个店铺可执行的操作
type ShopCapabilities struct {
	CanManage      bool   `json:"can_manage"`           // 改资料/管商品/管成员
	CanModerate    bool   `json:"can_moderate"`         // 审核/封禁店铺本身
	CanHandleCases bool   `json:"can_handle_cases"`     // 处理该店投诉
	StaffRole      string `json:"staff_role,omitempty"` // 操作者在该店的职务
}
