package model

// Shop 店铺状态常量
const (
	ShopStatusPending = "PENDING" // 待审核
	ShopStatusActive  = "ACTIVE"  // 正常
	ShopStatusBlocked = "BLOCKED" // 已封禁
)

type Shop struct {
	BaseModel
	AuditMixin
	// 1. 核心身份
	Name        string `gorm:"size:100;index;not null"`
	Description string `gorm:"type:text"`
	AvatarUrl   string `gorm:"size:255"`

	// 店主 (管理权以 shop_staffs 表为准，这里只是创建时登记的归属)
	OwnerID int64 `gorm:"index;not null"`
	Owner   *User `gorm:"foreignKey:OwnerID"`

	// 2. 审核与封禁状态
	Status      string `gorm:"size:20;index;default:'PENDING'"`
	IsVerified  bool   `gorm:"default:false"`
	BlockReason string `gorm:"size:255"`

	// 3. 运营关键指标 (由评价/订单事务内更新，不在请求期间重算)
	Rating            float64 `gorm:"type:decimal(3,1);default:0"`
	ReviewsCount      int     `gorm:"default:0"`
	TransactionsCount int     `gorm:"default:0"`

	// ==============================
	// 关联关系
	// ==============================

	Products []Product `gorm:"foreignKey:ShopID"`

	// 获取该店铺的所有成员及其职务 (Has Many)
	Memberships []ShopStaff `gorm:"foreignKey:ShopID"`
	// 获取该店铺的所有成员列表 (Many to Many, 忽略职务)
	Staff []User `gorm:"many2many:shop_staffs;"`
}

// ShopStaff 定义用户和店铺的任职关系
// GORM 自定义连接表 (Join Table)
// 店铺管理权的唯一依据：全局角色是 SHOP_OWNER 不代表能管任何店
type ShopStaff struct {
	BaseModel
	AuditMixin
	// 联合唯一索引
	// 确保一个用户在一个店铺里只有一条记录
	UserID int64 `gorm:"index;uniqueIndex:idx_user_shop;not null"`
	ShopID int64 `gorm:"index;uniqueIndex:idx_user_shop;not null"`

	// 店铺内职务: SHOP_OWNER, SHOP_MAIN, SHOP_STAFF
	Role string `gorm:"size:20;default:'SHOP_STAFF'"`

	// 关联对象 (Belongs To)
	User *User `gorm:"foreignKey:UserID"`
	Shop *Shop `gorm:"foreignKey:ShopID"`
}

func (Shop) TableName() string {
	return "shops"
}

func (ShopStaff) TableName() string {
	return "shop_staffs"
}
