package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func newSettingTestService(t *testing.T) *SettingService {
	t.Helper()
	db := setupSvcTestDB(t)
	return NewSettingService(repository.NewSettingRepository(db))
}

// ==================== 单元测试 ====================

func TestSettingService_PutGet(t *testing.T) {
	svc := newSettingTestService(t)
	ctx := context.Background()

	info, err := svc.Put(ctx, "site_notice", &dto.PutSettingRequest{
		Value:    json.RawMessage(`{"text":"周五停机维护","level":"warning"}`),
		IsPublic: true,
	})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if info.Key != "site_notice" || !info.IsPublic {
		t.Errorf("info = %+v", info)
	}

	got, err := svc.Get(ctx, "site_notice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	var payload struct {
		Text  string `json:"text"`
		Level string `json:"level"`
	}
	if err := json.Unmarshal(got.Value, &payload); err != nil {
		t.Fatalf("值不是合法 JSON: %v", err)
	}
	if payload.Text != "周五停机维护" || payload.Level != "warning" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestSettingService_Put_Overwrites(t *testing.T) {
	svc := newSettingTestService(t)
	ctx := context.Background()

	svc.Put(ctx, "maintenance", &dto.PutSettingRequest{Value: json.RawMessage(`false`), IsPublic: true})
	if _, err := svc.Put(ctx, "maintenance", &dto.PutSettingRequest{Value: json.RawMessage(`true`)}); err != nil {
		t.Fatalf("Put() 覆盖 error = %v", err)
	}

	got, _ := svc.Get(ctx, "maintenance")
	if string(got.Value) != "true" {
		t.Errorf("value = %s, want true", got.Value)
	}
	// 覆盖连同公开标记一起生效
	if got.IsPublic {
		t.Error("is_public 未被覆盖")
	}

	list, _ := svc.List(ctx)
	if len(list) != 1 {
		t.Errorf("同键覆盖后条目 = %d, want 1", len(list))
	}
}

func TestSettingService_Put_RejectsInvalidJSON(t *testing.T) {
	svc := newSettingTestService(t)

	tests := []struct {
		name  string
		value string
	}{
		{"裸字符串", `周五维护`},
		{"残缺对象", `{"text":`},
		{"空值", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Put(context.Background(), "bad", &dto.PutSettingRequest{Value: json.RawMessage(tt.value)})
			if !errors.Is(err, ErrInvalidSettingValue) {
				t.Errorf("error = %v, want ErrInvalidSettingValue", err)
			}
		})
	}
}

func TestSettingService_Get_NotFound(t *testing.T) {
	svc := newSettingTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("error = %v, want ErrSettingNotFound", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ErrSettingNotFound 应归入未找到类")
	}
}

func TestSettingService_ListPublic(t *testing.T) {
	svc := newSettingTestService(t)
	ctx := context.Background()

	svc.Put(ctx, "site_notice", &dto.PutSettingRequest{Value: json.RawMessage(`{"text":"hi"}`), IsPublic: true})
	svc.Put(ctx, "moderation_webhook_url", &dto.PutSettingRequest{Value: json.RawMessage(`"https://hooks.internal/mod"`)})
	svc.Put(ctx, "allow_signup", &dto.PutSettingRequest{Value: json.RawMessage(`true`), IsPublic: true})

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("全量 = %d, want 3", len(all))
	}
	// key 升序
	if all[0].Key != "allow_signup" {
		t.Errorf("排序首位 = %s, want allow_signup", all[0].Key)
	}

	public, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("公开条目 = %d, want 2", len(public))
	}
	for _, s := range public {
		if s.Key == "moderation_webhook_url" {
			t.Error("内部配置泄露到了公开列表")
		}
	}
}

func TestSettingService_ListPublic_CacheInvalidation(t *testing.T) {
	svc := newSettingTestService(t)
	ctx := context.Background()

	svc.Put(ctx, "site_notice", &dto.PutSettingRequest{Value: json.RawMessage(`"v1"`), IsPublic: true})

	// 第一次读会灌缓存
	first, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(first) != 1 || string(first[0].Value) != `"v1"` {
		t.Fatalf("first = %+v", first)
	}

	// 写路径要打掉缓存，否则这里会读到 v1
	svc.Put(ctx, "site_notice", &dto.PutSettingRequest{Value: json.RawMessage(`"v2"`), IsPublic: true})
	second, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(second) != 1 || string(second[0].Value) != `"v2"` {
		t.Errorf("second = %+v, 缓存未失效", second)
	}

	// 删除同样失效
	svc.Delete(ctx, "site_notice")
	third, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(third) != 0 {
		t.Errorf("删除后公开条目 = %d, want 0", len(third))
	}
}

func TestSettingService_Delete(t *testing.T) {
	svc := newSettingTestService(t)
	ctx := context.Background()

	svc.Put(ctx, "tmp", &dto.PutSettingRequest{Value: json.RawMessage(`1`)})
	if err := svc.Delete(ctx, "tmp"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, "tmp"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("删除后 Get error = %v, want ErrSettingNotFound", err)
	}

	if err := svc.Delete(ctx, "tmp"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("删不存在的键 error = %v, want ErrSettingNotFound", err)
	}
}
