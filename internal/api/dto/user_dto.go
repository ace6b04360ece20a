package dto

import "time"

// ==================== 注册/登录 ====================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=6,max=100"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=3,max=100"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *UserInfo `json:"user"`
}

// BlockedInfo 封禁详情 (封禁用户尝试登录时返回)
type BlockedInfo struct {
	Reason         string     `json:"reason"`
	BlockedAt      *time.Time `json:"blocked_at"`
	BlockExpiresAt *time.Time `json:"block_expires_at"` // null 表示永久封禁
}

// ==================== Token 刷新 ====================

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse 刷新 Token 响应
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ==================== 用户信息 ====================

// UserInfo 用户信息
type UserInfo struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	AvatarUrl   string     `json:"avatar_url"`
	Role        string     `json:"role"`
	IsPremium   bool       `json:"is_premium"`
	IsVerified  bool       `json:"is_verified"`
	IsBlocked   bool       `json:"is_blocked"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ==================== 密码修改 ====================

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required,min=6"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=100"`
}

// ==================== 用户管理 ====================

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
	AvatarUrl   string `json:"avatar_url" binding:"omitempty,max=255"`
}

// UpdateRoleRequest 变更角色请求
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=SECURITY ADMIN HEADADMIN MODERATOR SHOP_OWNER SHOP_MAIN SHOP_STAFF USER"`
}

// UpdateStatusRequest 更新用户标记请求 (premium/认证)
type UpdateStatusRequest struct {
	IsPremium  *bool `json:"is_premium"`
	IsVerified *bool `json:"is_verified"`
}

// BlockUserRequest 封禁请求
type BlockUserRequest struct {
	Reason    string `json:"reason" binding:"required,max=255"`
	ExpiresAt string `json:"expires_at" binding:"omitempty"` // RFC3339，留空为永久封禁
}

// ==================== 用户列表 ====================

// UserListRequest 用户列表请求
type UserListRequest struct {
	Keyword  string `form:"keyword"`
	Role     string `form:"role"`
	Blocked  *bool  `form:"blocked"`
	Verified *bool  `form:"verified"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// UserListResponse 用户列表响应
type UserListResponse struct {
	List  []*UserInfo `json:"list"`
	Total int64       `json:"total"`
}

// ==================== 能力查询 ====================

// UserCapabilities 操作者对某个用户可执行的操作
// 前端按钮显隐直接用它，不再自己复刻权限规则
type UserCapabilities struct {
	CanModify       bool     `json:"can_modify"`
	CanBlock        bool     `json:"can_block"`
	CanVerify       bool     `json:"can_verify"`
	CanDelete       bool     `json:"can_delete"`
	AssignableRoles []string `json:"assignable_roles"`
}

// SelfCapabilities 当前角色的全局能力
type SelfCapabilities struct {
	Role            string   `json:"role"`
	IsModeration    bool     `json:"is_moderation"` // 可进管理后台
	IsAdmin         bool     `json:"is_admin"`
	CanCreateShops  bool     `json:"can_create_shops"`
	AssignableRoles []string `json:"assignable_roles"`
}
