package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func newChatTestService(t *testing.T) (*ChatService, *capturePusher, *gorm.DB) {
	t.Helper()
	db := setupSvcTestDB(t)
	pusher := newCapturePusher()
	svc := NewChatService(
		repository.NewChatRepository(db),
		repository.NewShopRepository(db),
		pusher,
	)
	return svc, pusher, db
}

// seedChatFixture 买家 1/4；店 1 在营 (店主 7、副手 8、店员 9)；店 2 待审；店 3 在营但没录任职
func seedChatFixture(t *testing.T, db *gorm.DB) {
	t.Helper()
	db.Create(&testUser{ID: 1, Username: "liang", Role: "USER"})
	db.Create(&testUser{ID: 4, Username: "fang", Role: "USER"})
	db.Create(&testUser{ID: 7, Username: "owner7", Role: "USER"})
	db.Create(&testUser{ID: 8, Username: "main8", Role: "USER"})
	db.Create(&testUser{ID: 9, Username: "staff9", Role: "USER"})
	db.Create(&testUser{ID: 20, Username: "soloseller", Role: "USER"})
	db.Create(&testShop{ID: 1, Name: "山野陶社", OwnerID: 7, Status: model.ShopStatusActive})
	db.Create(&testShop{ID: 2, Name: "待审店", OwnerID: 4, Status: model.ShopStatusPending})
	db.Create(&testShop{ID: 3, Name: "独行店", OwnerID: 20, Status: model.ShopStatusActive})
	db.Create(&testStaff{ID: 1, ShopID: 1, UserID: 7, Role: "SHOP_OWNER"})
	db.Create(&testStaff{ID: 2, ShopID: 1, UserID: 8, Role: "SHOP_MAIN"})
	db.Create(&testStaff{ID: 3, ShopID: 1, UserID: 9, Role: "SHOP_STAFF"})
}

// ==================== Open 测试 ====================

func TestChatService_Open(t *testing.T) {
	svc, _, db := newChatTestService(t)
	ctx := context.Background()
	seedChatFixture(t, db)

	info, err := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if info.ShopID != 1 || info.UserID != 1 {
		t.Errorf("chat = %+v", info)
	}
	if info.ShopName != "山野陶社" {
		t.Errorf("shop_name = %q", info.ShopName)
	}

	// 同一买家对同一店铺只会有一条线程
	again, err := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 1})
	if err != nil {
		t.Fatalf("Open() 二次 error = %v", err)
	}
	if again.ID != info.ID {
		t.Errorf("重复开聊生成了新线程: %d != %d", again.ID, info.ID)
	}

	var count int64
	db.Model(&model.ShopChat{}).Count(&count)
	if count != 1 {
		t.Errorf("线程数 = %d, want 1", count)
	}
}

func TestChatService_Open_ShopGate(t *testing.T) {
	svc, _, db := newChatTestService(t)
	ctx := context.Background()
	seedChatFixture(t, db)

	if _, err := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 999}); !errors.Is(err, ErrShopNotFound) {
		t.Errorf("error = %v, want ErrShopNotFound", err)
	}
	if _, err := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 2}); !errors.Is(err, ErrShopNotActive) {
		t.Errorf("error = %v, want ErrShopNotActive", err)
	}
}

// ==================== ListMine 测试 ====================

func TestChatService_ListMine(t *testing.T) {
	svc, _, db := newChatTestService(t)
	ctx := context.Background()
	seedChatFixture(t, db)

	buyerSide, _ := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 1}) // 买家 1 找店 1
	svc.Open(ctx, 4, &dto.OpenChatRequest{ShopID: 1})                 // 买家 4 找店 1
	ownChat, _ := svc.Open(ctx, 8, &dto.OpenChatRequest{ShopID: 3})   // 店员 8 以买家身份找店 3

	t.Run("买家只见自己的线程", func(t *testing.T) {
		resp, err := svc.ListMine(ctx, 1)
		if err != nil {
			t.Fatalf("ListMine() error = %v", err)
		}
		if len(resp.List) != 1 || resp.List[0].ID != buyerSide.ID {
			t.Errorf("list = %+v", resp.List)
		}
	})

	t.Run("店员合并买家身份和任职店铺的线程", func(t *testing.T) {
		resp, err := svc.ListMine(ctx, 8)
		if err != nil {
			t.Fatalf("ListMine() error = %v", err)
		}
		// 自己开的 1 条 + 店 1 收到的 2 条
		if len(resp.List) != 3 {
			t.Fatalf("list = %d 条, want 3", len(resp.List))
		}
		seen := map[int64]bool{}
		for _, c := range resp.List {
			if seen[c.ID] {
				t.Errorf("线程 %d 重复出现", c.ID)
			}
			seen[c.ID] = true
		}
		if !seen[ownChat.ID] {
			t.Error("买家身份的线程丢了")
		}
	})

	t.Run("店员自己和本店开聊不重复计数", func(t *testing.T) {
		svc.Open(ctx, 9, &dto.OpenChatRequest{ShopID: 1})
		resp, err := svc.ListMine(ctx, 9)
		if err != nil {
			t.Fatalf("ListMine() error = %v", err)
		}
		// 自己的那条同时也在店 1 名下，去重后: 店 1 的 3 条
		if len(resp.List) != 3 {
			t.Errorf("list = %d 条, want 3", len(resp.List))
		}
	})
}

// ==================== 参与方校验测试 ====================

func TestChatService_Get_Participants(t *testing.T) {
	svc, _, db := newChatTestService(t)
	ctx := context.Background()
	seedChatFixture(t, db)

	chat, _ := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 1})

	tests := []struct {
		name    string
		actorID int64
		wantErr bool
	}{
		{"买家本人", 1, false},
		{"店主", 7, false},
		{"普通店员也算店铺侧", 9, false},
		{"无关用户", 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(ctx, tt.actorID, chat.ID)
			if tt.wantErr {
				if !errors.Is(err, ErrForbidden) {
					t.Errorf("error = %v, want 禁止类错误", err)
				}
			} else if err != nil {
				t.Errorf("Get() error = %v", err)
			}
		})
	}
}

func TestChatService_Get_OwnerFallback(t *testing.T) {
	svc, _, db := newChatTestService(t)
	ctx := context.Background()
	seedChatFixture(t, db)

	// 店 3 没录任何任职记录，店主按归属字段兜底放行
	chat, _ := svc.Open(ctx, 4, &dto.OpenChatRequest{ShopID: 3})
	if _, err := svc.Get(ctx, 20, chat.ID); err != nil {
		t.Errorf("店主兜底 error = %v", err)
	}
}

func TestChatService_Get_NotFound(t *testing.T) {
	svc, _, _ := newChatTestService(t)

	_, err := svc.Get(context.Background(), 1, 999)
	if !errors.Is(err, ErrChatNotFound) {
		t.Errorf("error = %v, want ErrChatNotFound", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ErrChatNotFound 应归入未找到类")
	}
}

// ==================== Send 测试 ====================

func TestChatService_Send(t *testing.T) {
	svc, pusher, db := newChatTestService(t)
	ctx := context.Background()
	seedChatFixture(t, db)

	chat, _ := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 1})

	// 买家发言记 USER，推给店铺全体成员
	fromBuyer, err := svc.Send(ctx, 1, chat.ID, &dto.ChatMessageRequest{Message: "茶杯还有货吗"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if fromBuyer.SenderType != model.SenderTypeUser {
		t.Errorf("sender_type = %s, want USER", fromBuyer.SenderType)
	}
	for _, staffID := range []int64{7, 8, 9} {
		if got := len(pusher.sentTo(staffID)); got != 1 {
			t.Errorf("店铺成员 %d 收到 %d 帧, want 1", staffID, got)
		}
	}
	if got := len(pusher.sentTo(1)); got != 0 {
		t.Errorf("买家自己收到 %d 帧, want 0", got)
	}

	// 店铺侧发言记 SHOP，只推给买家
	fromShop, err := svc.Send(ctx, 9, chat.ID, &dto.ChatMessageRequest{Message: "还有三只"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if fromShop.SenderType != model.SenderTypeShop {
		t.Errorf("sender_type = %s, want SHOP", fromShop.SenderType)
	}
	if got := len(pusher.sentTo(1)); got != 1 {
		t.Errorf("买家收到 %d 帧, want 1", got)
	}
	if got := len(pusher.sentTo(9)); got != 1 {
		t.Errorf("发送者收到 %d 帧, want 1 (只有买家那条)", got)
	}

	frame, ok := pusher.sentTo(1)[0].(map[string]interface{})
	if !ok {
		t.Fatalf("帧类型 = %T", pusher.sentTo(1)[0])
	}
	if frame["type"] != "new_message" || frame["chat_id"] != chat.ID {
		t.Errorf("帧 = %v", frame)
	}

	// 发消息刷新线程活跃时间
	got, _ := svc.Get(ctx, 1, chat.ID)
	if got.LastMessageAt == nil {
		t.Error("last_message_at 未刷新")
	}
}

func TestChatService_Send_Denied(t *testing.T) {
	svc, _, db := newChatTestService(t)
	ctx := context.Background()
	seedChatFixture(t, db)

	chat, _ := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 1})
	_, err := svc.Send(ctx, 4, chat.ID, &dto.ChatMessageRequest{Message: "蹭话"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("error = %v, want 禁止类错误", err)
	}
}

// ==================== Messages 测试 ====================

func TestChatService_Messages(t *testing.T) {
	svc, _, db := newChatTestService(t)
	ctx := context.Background()
	seedChatFixture(t, db)

	chat, _ := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 1})
	svc.Send(ctx, 1, chat.ID, &dto.ChatMessageRequest{Message: "第一句"})
	svc.Send(ctx, 9, chat.ID, &dto.ChatMessageRequest{Message: "第二句"})
	svc.Send(ctx, 1, chat.ID, &dto.ChatMessageRequest{Message: "第三句"})

	resp, err := svc.Messages(ctx, 1, chat.ID, &dto.ChatMessageListRequest{})
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if resp.Total != 3 || len(resp.List) != 3 {
		t.Fatalf("total = %d, list = %d, want 3", resp.Total, len(resp.List))
	}
	if resp.List[0].Message != "第一句" || resp.List[2].Message != "第三句" {
		t.Errorf("消息应按时间正序: %q ... %q", resp.List[0].Message, resp.List[2].Message)
	}

	page, err := svc.Messages(ctx, 1, chat.ID, &dto.ChatMessageListRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("Messages() 分页 error = %v", err)
	}
	if len(page.List) != 1 || page.List[0].Message != "第三句" {
		t.Errorf("第二页 = %+v", page.List)
	}

	if _, err := svc.Messages(ctx, 4, chat.ID, &dto.ChatMessageListRequest{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("旁观者 error = %v, want 禁止类错误", err)
	}
}

// ==================== MarkRead 测试 ====================

func TestChatService_MarkRead(t *testing.T) {
	svc, _, db := newChatTestService(t)
	ctx := context.Background()
	seedChatFixture(t, db)

	chat, _ := svc.Open(ctx, 1, &dto.OpenChatRequest{ShopID: 1})
	svc.Send(ctx, 1, chat.ID, &dto.ChatMessageRequest{Message: "买家的话"})
	svc.Send(ctx, 9, chat.ID, &dto.ChatMessageRequest{Message: "店铺的话"})

	// 买家已读只消掉店铺侧的未读
	if err := svc.MarkRead(ctx, 1, chat.ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	var unreadUser, unreadShop int64
	db.Model(&model.ShopChatMessage{}).Where("chat_id = ? AND sender_type = ? AND is_read = ?", chat.ID, model.SenderTypeUser, false).Count(&unreadUser)
	db.Model(&model.ShopChatMessage{}).Where("chat_id = ? AND sender_type = ? AND is_read = ?", chat.ID, model.SenderTypeShop, false).Count(&unreadShop)
	if unreadShop != 0 {
		t.Errorf("店铺消息未读数 = %d, want 0", unreadShop)
	}
	if unreadUser != 1 {
		t.Errorf("买家消息未读数 = %d, 买家已读不该动自己的消息", unreadUser)
	}

	// 店铺侧已读消掉买家的未读
	if err := svc.MarkRead(ctx, 8, chat.ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	db.Model(&model.ShopChatMessage{}).Where("chat_id = ? AND sender_type = ? AND is_read = ?", chat.ID, model.SenderTypeUser, false).Count(&unreadUser)
	if unreadUser != 0 {
		t.Errorf("买家消息未读数 = %d, want 0", unreadUser)
	}
}
