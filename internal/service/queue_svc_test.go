package service

import (
	"context"
	"errors"
	"testing"

	"printhub/internal/model"
)

// ==================== 队列位置 ====================

func TestQueueService_Position(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "张三", "zhangsan@example.com")
	shop := env.createShop(t, "Shop1")

	first := env.createOrder(t, user.ID, shop.ID, model.OrderStatusPrinting)
	second := env.createOrder(t, user.ID, shop.ID, model.OrderStatusQueued)
	third := env.createOrder(t, user.ID, shop.ID, model.OrderStatusQueued)

	for i, order := range []*model.Order{first, second, third} {
		pos, err := env.queue.Position(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("查询位置失败: %v", err)
		}
		if pos == nil || *pos != i+1 {
			t.Errorf("订单 %d 位置 = %v, want %d", order.ID, pos, i+1)
		}
	}
}

func TestQueueService_Position_ConvergesAfterCompletion(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "张三", "zhangsan@example.com")
	shop := env.createShop(t, "Shop1")

	first := env.createOrder(t, user.ID, shop.ID, model.OrderStatusQueued)
	second := env.createOrder(t, user.ID, shop.ID, model.OrderStatusQueued)

	// 队首完成后，后继订单位置立即收敛到 1，不留空洞
	if err := env.orders.MarkCompleted(context.Background(), first.ID); err != nil {
		t.Fatalf("完成订单失败: %v", err)
	}

	pos, err := env.queue.Position(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("查询位置失败: %v", err)
	}
	if pos == nil || *pos != 1 {
		t.Errorf("位置 = %v, want 1", pos)
	}

	// 完成的订单不再有位置
	pos, err = env.queue.Position(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("查询位置失败: %v", err)
	}
	if pos != nil {
		t.Errorf("终态订单位置 = %d, want nil", *pos)
	}
}

func TestQueueService_Position_PerShop(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "张三", "zhangsan@example.com")
	shop1 := env.createShop(t, "Shop1")
	shop2 := env.createShop(t, "Shop2")

	env.createOrder(t, user.ID, shop1.ID, model.OrderStatusQueued)
	other := env.createOrder(t, user.ID, shop2.ID, model.OrderStatusQueued)

	// 队列按打印站隔离：别站的在前订单不计入
	pos, err := env.queue.Position(context.Background(), other.ID)
	if err != nil {
		t.Fatalf("查询位置失败: %v", err)
	}
	if pos == nil || *pos != 1 {
		t.Errorf("位置 = %v, want 1", pos)
	}
}

func TestQueueService_Position_NotFound(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.queue.Position(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ==================== 队列视图 ====================

func TestQueueService_ListQueue(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "张三", "zhangsan@example.com")
	shop := env.createShop(t, "Shop1")

	env.createOrder(t, user.ID, shop.ID, model.OrderStatusPrinting)
	env.createOrder(t, user.ID, shop.ID, model.OrderStatusQueued)
	env.createOrder(t, user.ID, shop.ID, model.OrderStatusCompleted)

	items, err := env.queue.ListQueue(context.Background(), shop.ID)
	if err != nil {
		t.Fatalf("查询队列失败: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("队列长度 = %d, want 2", len(items))
	}
	for i, item := range items {
		if item.Position != i+1 {
			t.Errorf("第 %d 项位置 = %d, want %d", i, item.Position, i+1)
		}
		if len(item.Files) == 0 {
			t.Errorf("第 %d 项缺少文件明细", i)
		}
	}
}
