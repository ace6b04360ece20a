package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/model"
)

// ==================== ChatRepository 店铺会话仓库 ====================

// ChatRepository 买家-店铺会话仓库接口
type ChatRepository interface {
	GetOrCreate(ctx context.Context, shopID, userID int64) (*model.ShopChat, error)
	GetByID(ctx context.Context, id int64) (*model.ShopChat, error)
	ListByUser(ctx context.Context, userID int64) ([]model.ShopChat, error)
	ListByShops(ctx context.Context, shopIDs []int64) ([]model.ShopChat, error)
	AppendMessage(ctx context.Context, msg *model.ShopChatMessage) error
	ListMessages(ctx context.Context, chatID int64, page, pageSize int) ([]model.ShopChatMessage, int64, error)
	MarkRead(ctx context.Context, chatID int64, senderType string) error
	TouchLastMessage(ctx context.Context, chatID int64) error
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建会话仓库
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// GetOrCreate 获取买家和店铺之间的会话，不存在则创建
func (r *chatRepository) GetOrCreate(ctx context.Context, shopID, userID int64) (*model.ShopChat, error) {
	var chat model.ShopChat
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND user_id = ?", shopID, userID).
		First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat = model.ShopChat{ShopID: shopID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetByID 获取会话
func (r *chatRepository) GetByID(ctx context.Context, id int64) (*model.ShopChat, error) {
	var chat model.ShopChat
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Preload("User").
		First(&chat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &chat, err
}

// ListByUser 买家视角的会话列表，最近活跃在前
func (r *chatRepository) ListByUser(ctx context.Context, userID int64) ([]model.ShopChat, error) {
	var chats []model.ShopChat
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Where("user_id = ?", userID).
		Order("last_message_at DESC NULLS LAST").
		Find(&chats).Error
	return chats, err
}

// ListByShops 店铺侧视角的会话列表 (客服看自己任职店铺的全部会话)
func (r *chatRepository) ListByShops(ctx context.Context, shopIDs []int64) ([]model.ShopChat, error) {
	if len(shopIDs) == 0 {
		return nil, nil
	}
	var chats []model.ShopChat
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Preload("User").
		Where("shop_id IN ?", shopIDs).
		Order("last_message_at DESC NULLS LAST").
		Find(&chats).Error
	return chats, err
}

// AppendMessage 追加消息
func (r *chatRepository) AppendMessage(ctx context.Context, msg *model.ShopChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListMessages 会话消息列表，时间正序
func (r *chatRepository) ListMessages(ctx context.Context, chatID int64, page, pageSize int) ([]model.ShopChatMessage, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.ShopChatMessage{}).
		Where("chat_id = ?", chatID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	var messages []model.ShopChatMessage
	err := query.
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error

	return messages, total, err
}

// MarkRead 把对方 (senderType) 发出的未读消息标记为已读
func (r *chatRepository) MarkRead(ctx context.Context, chatID int64, senderType string) error {
	return r.db.WithContext(ctx).
		Model(&model.ShopChatMessage{}).
		Where("chat_id = ? AND sender_type = ? AND is_read = ?", chatID, senderType, false).
		Update("is_read", true).Error
}

// TouchLastMessage 刷新会话最后消息时间
func (r *chatRepository) TouchLastMessage(ctx context.Context, chatID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.ShopChat{}).
		Where("id = ?", chatID).
		Update("last_message_at", time.Now()).Error
}
