package dto

import "time"

// ==================== 投诉 ====================

// CreateComplaintRequest 创建投诉请求
// 平台级投诉不带 shop_id (走 /api/complaints)；店铺投诉 shop_id 取自路由
type CreateComplaintRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=255"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// ComplaintInfo 投诉信息
type ComplaintInfo struct {
	ID             int64      `json:"id"`
	ShopID         int64      `json:"shop_id"` // 0 为平台级
	UserID         int64      `json:"user_id"`
	Username       string     `json:"username,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	AssignedToID   int64      `json:"assigned_to_id,omitempty"`
	AssignedToName string     `json:"assigned_to_name,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ComplaintListRequest 投诉列表请求
type ComplaintListRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS RESOLVED REJECTED"`
	Mine     bool   `form:"mine"`     // 只看自己发起的
	Assigned bool   `form:"assigned"` // 只看分配给自己的
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ComplaintListResponse 投诉列表响应
type ComplaintListResponse struct {
	List  []*ComplaintInfo `json:"list"`
	Total int64            `json:"total"`
}

// AssignComplaintRequest 受理请求
// assigned_to_id 留空表示受理人是操作者本人
type AssignComplaintRequest struct {
	AssignedToID int64 `json:"assigned_to_id" binding:"omitempty,gt=0"`
}

// ResolveComplaintRequest 解决/驳回请求
type ResolveComplaintRequest struct {
	Note string `json:"note" binding:"omitempty,max=2000"` // 附加说明，写入沟通记录
}

// ==================== 投诉消息 ====================

// ComplaintMessageRequest 发消息请求
type ComplaintMessageRequest struct {
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

// ComplaintMessageInfo 沟通记录
type ComplaintMessageInfo struct {
	ID          int64     `json:"id"`
	ComplaintID int64     `json:"complaint_id"`
	SenderID    int64     `json:"sender_id"`
	SenderType  string    `json:"sender_type"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
