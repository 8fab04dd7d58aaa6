package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"printhub/internal/repository"
	"printhub/internal/service"
)

// ==================== RefundSweepTask 退款清扫 ====================

// RefundSweepTask 定时退款清扫
// 只回看有限窗口内的 failed 订单；更老的订单由管理端强制失败的同步退款路径兜底
type RefundSweepTask struct {
	orderRepo repository.OrderRepository
	orderSvc  *service.OrderService
	clk       service.Clock
	cron      *cron.Cron

	lookback time.Duration
	spec     string
}

// NewRefundSweepTask 创建退款清扫任务
func NewRefundSweepTask(
	orderRepo repository.OrderRepository,
	orderSvc *service.OrderService,
	clk service.Clock,
	lookback time.Duration,
	spec string,
) *RefundSweepTask {
	return &RefundSweepTask{
		orderRepo: orderRepo,
		orderSvc:  orderSvc,
		clk:       clk,
		cron:      cron.New(cron.WithSeconds()),
		lookback:  lookback,
		spec:      spec,
	}
}

// Start 启动定时任务
func (t *RefundSweepTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[RefundSweep] 服务启动，执行首次退款清扫...")
		t.Sweep(ctx)
	}()

	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.Sweep(ctx)
	})
	if err != nil {
		log.Printf("[RefundSweep] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[RefundSweep] 已启动")
}

// Stop 停止任务
func (t *RefundSweepTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[RefundSweep] 已停止")
}

// Sweep 单轮清扫
// 单个订单失败不阻断整批；退款失败记一次重试计数，留给下一轮
func (t *RefundSweepTask) Sweep(ctx context.Context) {
	since := t.clk.Now().Add(-t.lookback)
	orders, err := t.orderRepo.ListFailedSince(ctx, since)
	if err != nil {
		log.Printf("[RefundSweep] 查询失败订单出错: %v", err)
		return
	}
	if len(orders) == 0 {
		return
	}

	log.Printf("[RefundSweep] 待退款订单 %d 笔", len(orders))

	refunded := 0
	for _, o := range orders {
		if err := t.orderSvc.Refund(ctx, o.ID, "打印失败自动退款"); err != nil {
			if incErr := t.orderRepo.IncrementRefundAttempts(ctx, o.ID); incErr != nil {
				log.Printf("[RefundSweep] 订单 %d 重试计数更新失败: %v", o.ID, incErr)
			}
			log.Printf("[RefundSweep] 订单 %d 退款失败（将于下轮重试）: %v", o.ID, err)
			continue
		}
		refunded++
	}

	log.Printf("[RefundSweep] 本轮完成: 退款 %d / %d", refunded, len(orders))
}
