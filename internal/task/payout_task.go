package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"printhub/internal/service"
)

// ==================== PayoutAccrualTask 每日计提 ====================

// PayoutAccrualTask 每日结算计提
// 只记账不打款；同站同日幂等由服务层护栏保证，任务重复触发无副作用
type PayoutAccrualTask struct {
	payoutSvc *service.PayoutService
	cron      *cron.Cron
	spec      string
}

// NewPayoutAccrualTask 创建计提任务
func NewPayoutAccrualTask(payoutSvc *service.PayoutService, spec string) *PayoutAccrualTask {
	return &PayoutAccrualTask{
		payoutSvc: payoutSvc,
		cron:      cron.New(cron.WithSeconds()),
		spec:      spec,
	}
}

// Start 启动定时任务
func (t *PayoutAccrualTask) Start() {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.Accrue(ctx)
	})
	if err != nil {
		log.Printf("[PayoutAccrual] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[PayoutAccrual] 已启动")
}

// Stop 停止任务
func (t *PayoutAccrualTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[PayoutAccrual] 已停止")
}

// Accrue 单轮计提
func (t *PayoutAccrualTask) Accrue(ctx context.Context) {
	created, err := t.payoutSvc.AccrueDaily(ctx)
	if err != nil {
		log.Printf("[PayoutAccrual] 计提出错: %v", err)
		return
	}
	if created > 0 {
		log.Printf("[PayoutAccrual] 本轮新增结算批次 %d 条", created)
	}
}
