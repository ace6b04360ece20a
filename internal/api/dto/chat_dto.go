package dto

import "time"

// ==================== 店铺会话 ====================

// OpenChatRequest 买家发起会话请求
type OpenChatRequest struct {
	ShopID int64 `json:"shop_id" binding:"required,gt=0"`
}

// ChatInfo 会话信息
type ChatInfo struct {
	ID            int64      `json:"id"`
	ShopID        int64      `json:"shop_id"`
	ShopName      string     `json:"shop_name,omitempty"`
	UserID        int64      `json:"user_id"`
	Username      string     `json:"username,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ChatListResponse 会话列表响应
type ChatListResponse struct {
	List []*ChatInfo `json:"list"`
}

// ==================== 会话消息 ====================

// ChatMessageRequest 发消息请求
type ChatMessageRequest struct {
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

// ChatMessageInfo 消息
type ChatMessageInfo struct {
	ID         int64     `json:"id"`
	ChatID     int64     `json:"chat_id"`
	SenderID   int64     `json:"sender_id"`
	SenderType string    `json:"sender_type"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatMessageListRequest 消息列表请求
type ChatMessageListRequest struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=50"`
}

// ChatMessageListResponse 消息列表响应
type ChatMessageListResponse struct {
	List  []*ChatMessageInfo `json:"list"`
	Total int64              `json:"total"`
}
