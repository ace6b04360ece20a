package model

import "time"

// ShopChat 买家与店铺的会话
// 一个买家和一个店铺之间只有一条会话线程
type ShopChat struct {
	BaseModel
	ShopID int64 `gorm:"index;uniqueIndex:idx_shop_user_chat;not null"`
	UserID int64 `gorm:"index;uniqueIndex:idx_shop_user_chat;not null"`

	LastMessageAt *time.Time `gorm:"index"`

	Shop     *Shop             `gorm:"foreignKey:ShopID"`
	User     *User             `gorm:"foreignKey:UserID"`
	Messages []ShopChatMessage `gorm:"foreignKey:ChatID"`
}

// ShopChatMessage 会话消息
// SenderType: USER (买家) / SHOP (店铺侧任意成员) / SYSTEM
type ShopChatMessage struct {
	BaseModel
	ChatID     int64  `gorm:"index;not null"`
	SenderID   int64  `gorm:"index;default:0"`
	SenderType string `gorm:"size:20;not null"`
	Message    string `gorm:"type:text;not null"`
	IsRead     bool   `gorm:"index;default:false"`
}

func (ShopChat) TableName() string {
	return "shop_chats"
}

func (ShopChatMessage) TableName() string {
	return "shop_chat_messages"
}
