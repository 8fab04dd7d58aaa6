package task

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"printhub/internal/model"
	"printhub/internal/repository"
	"printhub/internal/service"
)

// ==================== DemoTask 演示环境脚手架 ====================

// DemoTask 演示打印站保活与自动完成
// 纯环境脚手架，不是产品规则：保证至少存在一个常在线打印站供演示，
// 并在短暂延迟后自动完成其排队订单
type DemoTask struct {
	shopRepo  repository.ShopRepository
	orderRepo repository.OrderRepository
	orderSvc  *service.OrderService
	clk       service.Clock
	cron      *cron.Cron

	shopName string
	shopIDs  []int64

	// 排队超过该时长的演示订单自动完成
	completeAfter time.Duration
}

// NewDemoTask 创建演示任务
func NewDemoTask(
	shopRepo repository.ShopRepository,
	orderRepo repository.OrderRepository,
	orderSvc *service.OrderService,
	clk service.Clock,
	shopName string,
	shopIDs []int64,
) *DemoTask {
	return &DemoTask{
		shopRepo:      shopRepo,
		orderRepo:     orderRepo,
		orderSvc:      orderSvc,
		clk:           clk,
		cron:          cron.New(cron.WithSeconds()),
		shopName:      shopName,
		shopIDs:       shopIDs,
		completeAfter: 2 * time.Minute,
	}
}

// Start 启动定时任务（每 30 秒）
func (t *DemoTask) Start() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		t.ensureDemoShop(ctx)
	}()

	_, err := t.cron.AddFunc("*/30 * * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		t.pumpHeartbeat(ctx)
		t.autoComplete(ctx)
	})
	if err != nil {
		log.Printf("[Demo] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[Demo] 演示保活任务已启动")
}

// Stop 停止任务
func (t *DemoTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[Demo] 已停止")
}

// ensureDemoShop 确保演示打印站存在
func (t *DemoTask) ensureDemoShop(ctx context.Context) {
	if _, err := t.shopRepo.GetByName(ctx, t.shopName); err == nil {
		return
	}

	now := t.clk.Now()
	shop := &model.Shop{
		Name:          t.shopName,
		Location:      "Demo Lab",
		Credential:    uuid.NewString(),
		Status:        model.ShopStatusActive,
		HasBW:         true,
		HasColor:      true,
		LastHeartbeat: &now,
	}
	if err := t.shopRepo.Create(ctx, shop); err != nil {
		log.Printf("[Demo] 创建演示打印站失败: %v", err)
		return
	}
	log.Printf("[Demo] 已创建演示打印站 %s(%d)", shop.Name, shop.ID)
}

// pumpHeartbeat 为白名单打印站泵心跳
func (t *DemoTask) pumpHeartbeat(ctx context.Context) {
	now := t.clk.Now()
	for _, id := range t.shopIDs {
		err := t.shopRepo.UpdateFields(ctx, id, map[string]interface{}{
			"last_heartbeat": now,
		})
		if err != nil {
			log.Printf("[Demo] 打印站 %d 心跳泵失败: %v", id, err)
		}
	}
}

// autoComplete 自动完成演示打印站的到期排队订单
func (t *DemoTask) autoComplete(ctx context.Context) {
	before := t.clk.Now().Add(-t.completeAfter)
	orders, err := t.orderRepo.ListQueuedAtDemoShops(ctx, t.shopIDs, before)
	if err != nil {
		log.Printf("[Demo] 查询演示订单失败: %v", err)
		return
	}
	for _, o := range orders {
		if err := t.orderSvc.MarkCompleted(ctx, o.ID); err != nil {
			log.Printf("[Demo] 订单 %d 自动完成失败: %v", o.ID, err)
		}
	}
}
