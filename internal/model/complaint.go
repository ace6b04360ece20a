package model

import "time"

// Complaint 状态常量
// 状态机: PENDING -> IN_PROGRESS -> RESOLVED / REJECTED (PENDING 可直接 REJECTED)
const (
	ComplaintStatusPending    = "PENDING"
	ComplaintStatusInProgress = "IN_PROGRESS"
	ComplaintStatusResolved   = "RESOLVED"
	ComplaintStatusRejected   = "REJECTED"
)

// 消息发送方类型常量
const (
	SenderTypeUser   = "USER"
	SenderTypeStaff  = "STAFF"
	SenderTypeShop   = "SHOP"
	SenderTypeSystem = "SYSTEM"
)

// Complaint 投诉工单
// ShopID = 0 表示平台级投诉，否则为针对店铺的投诉 (同表存储，结构一致)
type Complaint struct {
	BaseModel
	AuditMixin
	ShopID int64 `gorm:"index;default:0"`
	UserID int64 `gorm:"index;not null"` // 发起人

	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`

	Status string `gorm:"size:20;index;default:'PENDING'"`

	// 受理人 (0 表示未受理)
	AssignedToID int64 `gorm:"index;default:0"`
	ResolvedAt   *time.Time

	// ==============================
	// 关联关系
	// ==============================

	User       *User              `gorm:"foreignKey:UserID"`
	AssignedTo *User              `gorm:"foreignKey:AssignedToID"`
	Shop       *Shop              `gorm:"foreignKey:ShopID"`
	Messages   []ComplaintMessage `gorm:"foreignKey:ComplaintID"`
}

// ComplaintMessage 投诉沟通记录
// 状态流转会自动追加 SYSTEM 消息
type ComplaintMessage struct {
	BaseModel
	ComplaintID int64  `gorm:"index;not null"`
	SenderID    int64  `gorm:"index;default:0"` // SYSTEM 消息为 0
	SenderType  string `gorm:"size:20;not null"`
	Message     string `gorm:"type:text;not null"`
}

func (Complaint) TableName() string {
	return "complaints"
}

func (ComplaintMessage) TableName() string {
	return "complaint_messages"
}
