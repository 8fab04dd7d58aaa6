package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"printhub/internal/api/dto"
	"printhub/internal/model"
	"printhub/pkg/logging"
)

// ==================== 心跳与活性 ====================

func TestShopService_ListAvailable_LivenessWindow(t *testing.T) {
	env := newTestEnv(t)
	shop := env.createShop(t, "Shop1")

	// 刚发过心跳：可见
	shops, err := env.shops.ListAvailable(context.Background(), false)
	if err != nil {
		t.Fatalf("查询可用打印站失败: %v", err)
	}
	if len(shops) != 1 || shops[0].ID != shop.ID {
		t.Fatalf("可用打印站 = %v, want [%d]", shops, shop.ID)
	}

	// 61 秒无心跳：超出 60 秒列表窗口，不可见
	env.clk.Advance(61 * time.Second)
	shops, err = env.shops.ListAvailable(context.Background(), false)
	if err != nil {
		t.Fatalf("查询可用打印站失败: %v", err)
	}
	if len(shops) != 0 {
		t.Errorf("心跳过期后仍可见: %v", shops)
	}

	// 新心跳后恢复可见
	if err := env.shops.RecordHeartbeat(context.Background(), shop.ID, &dto.HeartbeatRequest{}); err != nil {
		t.Fatalf("记录心跳失败: %v", err)
	}
	shops, _ = env.shops.ListAvailable(context.Background(), false)
	if len(shops) != 1 {
		t.Errorf("心跳恢复后不可见")
	}
}

func TestShopService_ListAvailable_Capability(t *testing.T) {
	env := newTestEnv(t)
	now := env.clk.Now()

	bwOnly := &model.Shop{
		Name: "BWOnly", Credential: "s1", Status: model.ShopStatusActive,
		HasBW: true, LastHeartbeat: &now,
	}
	colorOnly := &model.Shop{
		Name: "ColorOnly", Credential: "s2", Status: model.ShopStatusActive,
		HasColorA3: true, LastHeartbeat: &now,
	}
	env.db.Create(bwOnly)
	env.db.Create(colorOnly)

	// 黑白需求：A3 彩色能力不算黑白
	shops, err := env.shops.ListAvailable(context.Background(), false)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(shops) != 1 || shops[0].ID != bwOnly.ID {
		t.Errorf("黑白需求命中 = %v, want [%d]", shops, bwOnly.ID)
	}

	// 彩色需求：A3 彩色能力算彩色
	shops, err = env.shops.ListAvailable(context.Background(), true)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(shops) != 1 || shops[0].ID != colorOnly.ID {
		t.Errorf("彩色需求命中 = %v, want [%d]", shops, colorOnly.ID)
	}
}

func TestShopService_ListAvailable_DemoWhitelist(t *testing.T) {
	env := newTestEnv(t)
	shop := env.createShop(t, "DemoShop")

	// 白名单打印站跳过活性检查
	demoSvc := NewShopService(env.shopRepo, env.orderRepo, env.clk,
		60*time.Second, []int64{shop.ID}, logging.NewNop())

	env.clk.Advance(24 * time.Hour)
	shops, err := demoSvc.ListAvailable(context.Background(), false)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(shops) != 1 {
		t.Errorf("白名单打印站心跳过期后应仍可见")
	}

	// 非白名单服务里同一打印站不可见
	shops, _ = env.shops.ListAvailable(context.Background(), false)
	if len(shops) != 0 {
		t.Errorf("非白名单服务不应跳过活性检查")
	}
}

func TestShopService_ListAvailable_QueueDepth(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "张三", "zhangsan@example.com")
	shop := env.createShop(t, "Shop1")

	env.createOrder(t, user.ID, shop.ID, model.OrderStatusQueued)
	env.createOrder(t, user.ID, shop.ID, model.OrderStatusPrinting)
	env.createOrder(t, user.ID, shop.ID, model.OrderStatusCompleted)

	shops, err := env.shops.ListAvailable(context.Background(), false)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(shops) != 1 {
		t.Fatalf("可用打印站数 = %d, want 1", len(shops))
	}
	// 只有排队/打印中计入深度
	if shops[0].QueueDepth != 2 {
		t.Errorf("queue_depth = %d, want 2", shops[0].QueueDepth)
	}
}

// ==================== 心跳能力申报 ====================

func TestShopService_RecordHeartbeat_PartialCapability(t *testing.T) {
	env := newTestEnv(t)
	shop := env.createShop(t, "Shop1") // HasBW=true, HasColor=true

	// 只申报彩色下线，黑白保持不动
	off := false
	err := env.shops.RecordHeartbeat(context.Background(), shop.ID, &dto.HeartbeatRequest{
		Capabilities: &dto.CapabilityPayload{HasColor: &off},
		Meta:         map[string]interface{}{"client_version": "1.4.2"},
	})
	if err != nil {
		t.Fatalf("记录心跳失败: %v", err)
	}

	var got model.Shop
	env.db.First(&got, shop.ID)
	if !got.HasBW {
		t.Errorf("未申报的 has_bw 被清零")
	}
	if got.HasColor {
		t.Errorf("申报下线的 has_color 未更新")
	}
	if got.LastHeartbeat == nil || !got.LastHeartbeat.Equal(env.clk.Now()) {
		t.Errorf("last_heartbeat = %v, want %v", got.LastHeartbeat, env.clk.Now())
	}
}

func TestShopService_RecordHeartbeat_UnknownShop(t *testing.T) {
	env := newTestEnv(t)
	err := env.shops.RecordHeartbeat(context.Background(), 9999, &dto.HeartbeatRequest{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ==================== 登录 ====================

func TestShopService_Login(t *testing.T) {
	env := newTestEnv(t)
	shop := env.createShop(t, "Shop1")

	got, err := env.shops.Login(context.Background(), &dto.StationLoginRequest{
		ShopID:     shop.ID,
		Credential: "secret-Shop1",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if got.ID != shop.ID {
		t.Errorf("登录返回打印站 %d, want %d", got.ID, shop.ID)
	}
	// 登录同时视作一次心跳
	if got.LastHeartbeat == nil || !got.LastHeartbeat.Equal(env.clk.Now()) {
		t.Errorf("登录未刷新 last_heartbeat")
	}
}

func TestShopService_Login_BadCredential(t *testing.T) {
	env := newTestEnv(t)
	shop := env.createShop(t, "Shop1")

	cases := []dto.StationLoginRequest{
		{ShopID: shop.ID, Credential: "wrong"},
		{ShopID: 9999, Credential: "secret-Shop1"},
	}
	for _, req := range cases {
		if _, err := env.shops.Login(context.Background(), &req); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("登录 %+v err = %v, want ErrUnauthorized", req, err)
		}
	}
}

func TestShopService_Login_Deactivated(t *testing.T) {
	env := newTestEnv(t)
	shop := env.createShop(t, "Shop1")

	if err := env.shops.Deactivate(context.Background(), shop.ID); err != nil {
		t.Fatalf("停用失败: %v", err)
	}

	_, err := env.shops.Login(context.Background(), &dto.StationLoginRequest{
		ShopID:     shop.ID,
		Credential: "secret-Shop1",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}

	// 停用后即使有新心跳也不出现在列表里
	shops, _ := env.shops.ListAvailable(context.Background(), false)
	if len(shops) != 0 {
		t.Errorf("停用打印站仍可见: %v", shops)
	}
}
