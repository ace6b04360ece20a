package model

import "time"

// User 平台用户
type User struct {
	BaseModel
	AuditMixin
	// 基础信息
	Username    string `gorm:"size:100;uniqueIndex;not null"`
	Password    string `gorm:"size:255;not null" json:"-"` // 哈希密码
	DisplayName string `gorm:"size:100"`
	AvatarUrl   string `gorm:"size:255"`

	// 平台级角色: OWNER, SECURITY, ADMIN, HEADADMIN, MODERATOR,
	// SHOP_OWNER, SHOP_MAIN, SHOP_STAFF, USER
	// 注意区分：这是平台的角色，ShopStaff 里的是店铺内的职务
	Role string `gorm:"size:20;index;default:'USER'"`

	IsPremium  bool `gorm:"default:false"`
	IsVerified bool `gorm:"default:false"`

	// 封禁状态
	// BlockExpiresAt 为空表示永久封禁，到期封禁由定时任务解除
	IsBlocked      bool       `gorm:"index;default:false"`
	BlockReason    string     `gorm:"size:255"`
	BlockedAt      *time.Time
	BlockExpiresAt *time.Time `gorm:"index"`

	LastLoginAt *time.Time

	// ==============================
	// 关联关系
	// ==============================

	// 方式 A: 快速查询用户任职的店铺 (忽略职务)
	Shops []Shop `gorm:"many2many:shop_staffs;"`

	// 方式 B: 查询用户在店铺的职务详情 (包含 Role)
	Memberships []ShopStaff `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// Session 登录会话
// 登录时开启，登出或空闲超时由定时任务关闭；客服在线状态基于活跃会话判断
type Session struct {
	BaseModel
	UserID       int64     `gorm:"index;not null"`
	StartedAt    time.Time `gorm:"index"`
	LastActiveAt time.Time `gorm:"index"`
	EndedAt      *time.Time
	IsActive     bool   `gorm:"index;default:true"`
	ClientIP     string `gorm:"size:64"`
	UserAgent    string `gorm:"size:255"`

	User *User `gorm:"foreignKey:UserID"`
}

func (Session) TableName() string {
	return "sessions"
}
