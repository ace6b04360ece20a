package service

import (
	"context"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== ChatService 店铺会话服务 ====================

// ChatService 买家与店铺的私信
// 一对 (买家, 店铺) 只有一条线程；只有参与方可见，平台管理层也看不了。
// 发消息走 REST 落库，再尽力推给在线的另一方。
type ChatService struct {
	chatRepo repository.ChatRepository
	shopRepo repository.ShopRepository
	pusher   Pusher
}

// NewChatService 创建会话服务
func NewChatService(chatRepo repository.ChatRepository, shopRepo repository.ShopRepository, pusher Pusher) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		shopRepo: shopRepo,
		pusher:   pusher,
	}
}

// Open 买家对营业中的店铺发起会话；已有线程直接返回
func (s *ChatService) Open(ctx context.Context, actorID int64, req *dto.OpenChatRequest) (*dto.ChatInfo, error) {
	shop, err := s.shopRepo.GetByID(ctx, req.ShopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	if shop.Status != model.ShopStatusActive {
		return nil, ErrShopNotActive
	}

	chat, err := s.chatRepo.GetOrCreate(ctx, req.ShopID, actorID)
	if err != nil {
		return nil, err
	}
	chat.Shop = shop
	return toChatInfo(chat), nil
}

// ListMine 我的会话: 买家身份的线程 + 任职店铺的线程
func (s *ChatService) ListMine(ctx context.Context, actorID int64) (*dto.ChatListResponse, error) {
	own, err := s.chatRepo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	shopIDs, err := s.shopRepo.ListShopIDsByStaff(ctx, actorID)
	if err != nil {
		return nil, err
	}
	shopSide, err := s.chatRepo.ListByShops(ctx, shopIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(own)+len(shopSide))
	list := make([]*dto.ChatInfo, 0, len(own)+len(shopSide))
	for i := range own {
		seen[own[i].ID] = true
		list = append(list, toChatInfo(&own[i]))
	}
	for i := range shopSide {
		if seen[shopSide[i].ID] {
			continue
		}
		list = append(list, toChatInfo(&shopSide[i]))
	}
	return &dto.ChatListResponse{List: list}, nil
}

// Get 会话详情（仅参与方）
func (s *ChatService) Get(ctx context.Context, actorID, chatID int64) (*dto.ChatInfo, error) {
	chat, _, err := s.requireParticipant(ctx, actorID, chatID)
	if err != nil {
		return nil, err
	}
	return toChatInfo(chat), nil
}

// Messages 消息记录（仅参与方），时间正序分页
func (s *ChatService) Messages(ctx context.Context, actorID, chatID int64, req *dto.ChatMessageListRequest) (*dto.ChatMessageListResponse, error) {
	if _, _, err := s.requireParticipant(ctx, actorID, chatID); err != nil {
		return nil, err
	}

	messages, total, err := s.chatRepo.ListMessages(ctx, chatID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.ChatMessageInfo, 0, len(messages))
	for i := range messages {
		list = append(list, toChatMessageInfo(&messages[i]))
	}
	return &dto.ChatMessageListResponse{List: list, Total: total}, nil
}

// Send 发消息
// 买家发出的算 USER，店铺侧成员发出的算 SHOP；落库后推给另一方在线连接
func (s *ChatService) Send(ctx context.Context, actorID, chatID int64, req *dto.ChatMessageRequest) (*dto.ChatMessageInfo, error) {
	chat, isBuyer, err := s.requireParticipant(ctx, actorID, chatID)
	if err != nil {
		return nil, err
	}

	senderType := model.SenderTypeShop
	if isBuyer {
		senderType = model.SenderTypeUser
	}

	msg := &model.ShopChatMessage{
		ChatID:     chatID,
		SenderID:   actorID,
		SenderType: senderType,
		Message:    req.Message,
	}
	if err := s.chatRepo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.chatRepo.TouchLastMessage(ctx, chatID); err != nil {
		return nil, err
	}

	info := toChatMessageInfo(msg)
	s.pushToCounterparty(ctx, chat, info, actorID, isBuyer)
	return info, nil
}

// MarkRead 把对方发来的消息标记为已读
func (s *ChatService) MarkRead(ctx context.Context, actorID, chatID int64) error {
	_, isBuyer, err := s.requireParticipant(ctx, actorID, chatID)
	if err != nil {
		return err
	}

	// 买家读店铺消息，店铺侧读买家消息
	counterpart := model.SenderTypeUser
	if isBuyer {
		counterpart = model.SenderTypeShop
	}
	return s.chatRepo.MarkRead(ctx, chatID, counterpart)
}

// ==================== 内部方法 ====================

// requireParticipant 取会话并校验参与身份，返回操作者是否买家
func (s *ChatService) requireParticipant(ctx context.Context, actorID, chatID int64) (*model.ShopChat, bool, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, false, err
	}
	if chat == nil {
		return nil, false, ErrChatNotFound
	}

	if actorID == chat.UserID {
		return chat, true, nil
	}

	staffRole, err := s.shopRepo.GetStaffRole(ctx, chat.ShopID, actorID)
	if err != nil {
		return nil, false, err
	}
	if staffRole != "" {
		return chat, false, nil
	}
	if chat.Shop != nil && chat.Shop.OwnerID == actorID {
		return chat, false, nil
	}
	return nil, false, forbiddenErr("不是会话参与方")
}

// pushToCounterparty 推给另一方: 买家 <-> 店铺全体成员
func (s *ChatService) pushToCounterparty(ctx context.Context, chat *model.ShopChat, msg *dto.ChatMessageInfo, senderID int64, fromBuyer bool) {
	if s.pusher == nil {
		return
	}
	payload := map[string]interface{}{
		"type":    "new_message",
		"chat_id": chat.ID,
		"data":    msg,
	}

	if !fromBuyer {
		s.pusher.SendToUser(chat.UserID, payload)
		return
	}

	staff, err := s.shopRepo.GetStaff(ctx, chat.ShopID)
	if err != nil {
		return
	}
	for i := range staff {
		if staff[i].UserID == senderID {
			continue
		}
		s.pusher.SendToUser(staff[i].UserID, payload)
	}
}

// ==================== 转换函数 ====================

func toChatInfo(chat *model.ShopChat) *dto.ChatInfo {
	info := &dto.ChatInfo{
		ID:            chat.ID,
		ShopID:        chat.ShopID,
		UserID:        chat.UserID,
		LastMessageAt: chat.LastMessageAt,
		CreatedAt:     chat.CreatedAt,
	}
	if chat.Shop != nil {
		info.ShopName = chat.Shop.Name
	}
	if chat.User != nil {
		info.Username = chat.User.Username
	}
	return info
}

func toChatMessageInfo(msg *model.ShopChatMessage) *dto.ChatMessageInfo {
	return &dto.ChatMessageInfo{
		ID:         msg.ID,
		ChatID:     msg.ChatID,
		SenderID:   msg.SenderID,
		SenderType: msg.SenderType,
		Message:    msg.Message,
		IsRead:     msg.IsRead,
		CreatedAt:  msg.CreatedAt,
	}
}

// ==================== 错误定义 ====================

var ErrChatNotFound = notFoundErr("会话不存在")
