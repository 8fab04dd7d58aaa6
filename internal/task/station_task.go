package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"printhub/internal/repository"
	"printhub/internal/service"
)

// ==================== StationSweepTask 死站清扫 ====================

// StationSweepTask 死站检测
// 心跳超过死站阈值的打印站，其排队与打印中订单一并标记失败：
// 两种状态都代表欠客户的活，站已不可信，后续由退款清扫接棒
type StationSweepTask struct {
	shopRepo repository.ShopRepository
	orderSvc *service.OrderService
	shopSvc  *service.ShopService
	clk      service.Clock
	cron     *cron.Cron

	deadThreshold time.Duration
	spec          string
}

// NewStationSweepTask 创建死站清扫任务
func NewStationSweepTask(
	shopRepo repository.ShopRepository,
	orderSvc *service.OrderService,
	shopSvc *service.ShopService,
	clk service.Clock,
	deadThreshold time.Duration,
	spec string,
) *StationSweepTask {
	return &StationSweepTask{
		shopRepo:      shopRepo,
		orderSvc:      orderSvc,
		shopSvc:       shopSvc,
		clk:           clk,
		cron:          cron.New(cron.WithSeconds()),
		deadThreshold: deadThreshold,
		spec:          spec,
	}
}

// Start 启动定时任务
func (t *StationSweepTask) Start() {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.Sweep(ctx)
	})
	if err != nil {
		log.Printf("[StationSweep] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[StationSweep] 已启动")
}

// Stop 停止任务
func (t *StationSweepTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[StationSweep] 已停止")
}

// Sweep 单轮清扫
func (t *StationSweepTask) Sweep(ctx context.Context) {
	deadline := t.clk.Now().Add(-t.deadThreshold)
	shops, err := t.shopRepo.ListStale(ctx, deadline)
	if err != nil {
		log.Printf("[StationSweep] 查询死站出错: %v", err)
		return
	}

	for _, shop := range shops {
		// 演示打印站由白名单保活，不当死站处理
		if t.shopSvc.IsDemoShop(shop.ID) {
			continue
		}

		resp, err := t.orderSvc.FailAll(ctx, shop.ID, "打印站离线超时")
		if err != nil {
			log.Printf("[StationSweep] 打印站 %s(%d) 清扫失败: %v", shop.Name, shop.ID, err)
			continue
		}
		if resp.Failed > 0 {
			log.Printf("[StationSweep] 打印站 %s(%d) 离线，%d 笔订单转失败", shop.Name, shop.ID, resp.Failed)
		}
		for _, e := range resp.Errors {
			log.Printf("[StationSweep] 打印站 %s 警告: %s", shop.Name, e)
		}
	}
}
