package task

import (
	"context"
	"log"
	"time"

	"printhub/internal/repository"
	"printhub/internal/service"
)

// ==================== TaskManager 对账任务管理器 ====================

// TaskManager 统一管理对账清扫任务
// 管理范围：退款清扫、死站清扫、每日计提、演示脚手架
type TaskManager struct {
	refundTask  *RefundSweepTask
	stationTask *StationSweepTask
	payoutTask  *PayoutAccrualTask
	demoTask    *DemoTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	ShopRepo  repository.ShopRepository
	OrderRepo repository.OrderRepository

	OrderService  *service.OrderService
	ShopService   *service.ShopService
	PayoutService *service.PayoutService

	Clock service.Clock
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	RefundLookback  time.Duration
	RefundSweepSpec string

	DeadStationThreshold time.Duration
	StationSweepSpec     string

	AccrualSpec string

	DemoEnabled  bool
	DemoShopName string
	DemoShopIDs  []int64
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	tm := &TaskManager{}

	tm.refundTask = NewRefundSweepTask(
		deps.OrderRepo, deps.OrderService, deps.Clock,
		cfg.RefundLookback, cfg.RefundSweepSpec,
	)
	tm.stationTask = NewStationSweepTask(
		deps.ShopRepo, deps.OrderService, deps.ShopService, deps.Clock,
		cfg.DeadStationThreshold, cfg.StationSweepSpec,
	)
	tm.payoutTask = NewPayoutAccrualTask(deps.PayoutService, cfg.AccrualSpec)

	if cfg.DemoEnabled {
		tm.demoTask = NewDemoTask(
			deps.ShopRepo, deps.OrderRepo, deps.OrderService, deps.Clock,
			cfg.DemoShopName, cfg.DemoShopIDs,
		)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动对账任务...")

	tm.refundTask.Start()
	tm.stationTask.Start()
	tm.payoutTask.Start()
	if tm.demoTask != nil {
		tm.demoTask.Start()
	}

	log.Println("[TaskManager] 对账任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止对账任务...")

	tm.refundTask.Stop()
	tm.stationTask.Stop()
	tm.payoutTask.Stop()
	if tm.demoTask != nil {
		tm.demoTask.Stop()
	}

	log.Println("[TaskManager] 对账任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerRefundSweep 手动触发退款清扫
func (tm *TaskManager) TriggerRefundSweep(ctx context.Context) {
	tm.refundTask.Sweep(ctx)
}

// TriggerStationSweep 手动触发死站清扫
func (tm *TaskManager) TriggerStationSweep(ctx context.Context) {
	tm.stationTask.Sweep(ctx)
}

// TriggerAccrual 手动触发计提
func (tm *TaskManager) TriggerAccrual(ctx context.Context) {
	tm.payoutTask.Accrue(ctx)
}

// Status 任务装配状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"refund_sweep":  tm.refundTask != nil,
		"station_sweep": tm.stationTask != nil,
		"payout_accrue": tm.payoutTask != nil,
		"demo":          tm.demoTask != nil,
	}
}
