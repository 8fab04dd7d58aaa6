package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"printhub/internal/api/dto"
	"printhub/internal/model"
)

// payoutEnvShop 构造一个带 UPI 与已完成订单的打印站
// 黑白 10 计费页 + 彩色 4 计费页：结算额 = 10*250 + 4*800 = 5700
func payoutEnvShop(t *testing.T, env *testEnv) *model.Shop {
	user := env.createUser(t, "张三", "zhangsan@example.com")
	shop := env.createShop(t, "PayShop")
	env.db.Model(shop).Update("upi_id", "payshop@upi")

	order := &model.Order{
		BaseModel: model.BaseModel{CreatedAt: env.clk.Now()},
		UserID:    user.ID, ShopID: shop.ID,
		Status: model.OrderStatusCompleted,
		Files: []model.OrderFile{
			{FileName: "bw.pdf", PageCount: 5, Copies: 2, IsColor: false, Cost: 3000},
			{FileName: "color.pdf", PageCount: 4, Copies: 1, IsColor: true, Cost: 4000},
		},
	}
	if err := env.db.Create(order).Error; err != nil {
		t.Fatalf("创建已完成订单失败: %v", err)
	}
	return shop
}

// ==================== 每日计提 ====================

func TestPayoutService_AccrueDaily(t *testing.T) {
	env := newTestEnv(t)
	shop := payoutEnvShop(t, env)

	created, err := env.payouts.AccrueDaily(context.Background())
	if err != nil {
		t.Fatalf("计提失败: %v", err)
	}
	if created != 1 {
		t.Fatalf("计提条数 = %d, want 1", created)
	}

	var payout model.Payout
	if err := env.db.Where("shop_id = ?", shop.ID).First(&payout).Error; err != nil {
		t.Fatalf("查询结算记录失败: %v", err)
	}
	if payout.Amount != 5700 {
		t.Errorf("amount = %d, want 5700 (结算价，不是零售价)", payout.Amount)
	}
	if payout.BWPageCount != 10 || payout.ColorPageCount != 4 {
		t.Errorf("页数 = %d/%d, want 10/4", payout.BWPageCount, payout.ColorPageCount)
	}
	if payout.Status != model.PayoutStatusPending {
		t.Errorf("status = %s, want pending (计提不打款)", payout.Status)
	}
}

func TestPayoutService_AccrueDaily_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	shop := payoutEnvShop(t, env)

	if _, err := env.payouts.AccrueDaily(context.Background()); err != nil {
		t.Fatalf("首次计提失败: %v", err)
	}

	// 同一自然日重复执行不产生第二条
	env.clk.Advance(2 * time.Hour)
	created, err := env.payouts.AccrueDaily(context.Background())
	if err != nil {
		t.Fatalf("重复计提失败: %v", err)
	}
	if created != 0 {
		t.Errorf("重复计提条数 = %d, want 0", created)
	}

	var count int64
	env.db.Model(&model.Payout{}).Where("shop_id = ?", shop.ID).Count(&count)
	if count != 1 {
		t.Errorf("结算记录数 = %d, want 1", count)
	}
}

func TestPayoutService_AccrueDaily_SkipsNoUpi(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "张三", "zhangsan@example.com")
	shop := env.createShop(t, "NoUpiShop") // upi_id 为空

	order := &model.Order{
		BaseModel: model.BaseModel{CreatedAt: env.clk.Now()},
		UserID:    user.ID, ShopID: shop.ID,
		Status: model.OrderStatusCompleted,
		Files:  []model.OrderFile{{FileName: "a.pdf", PageCount: 3, Copies: 1, Cost: 900}},
	}
	env.db.Create(order)

	created, err := env.payouts.AccrueDaily(context.Background())
	if err != nil {
		t.Fatalf("计提失败: %v", err)
	}
	if created != 0 {
		t.Errorf("无 UPI 打印站被计提了 %d 条", created)
	}
}

// ==================== 打款标记 ====================

func TestPayoutService_MarkPayoutPaid(t *testing.T) {
	env := newTestEnv(t)
	payoutEnvShop(t, env)
	env.payouts.AccrueDaily(context.Background())

	var payout model.Payout
	env.db.First(&payout)

	if err := env.payouts.MarkPayoutPaid(context.Background(), payout.ID, "upi-txn-1"); err != nil {
		t.Fatalf("标记打款失败: %v", err)
	}

	var got model.Payout
	env.db.First(&got, payout.ID)
	if got.Status != model.PayoutStatusProcessed {
		t.Errorf("status = %s, want processed", got.Status)
	}
	if got.TransactionRef != "upi-txn-1" {
		t.Errorf("transaction_ref = %s, want upi-txn-1", got.TransactionRef)
	}
	if got.ProcessedAt == nil {
		t.Errorf("processed_at 未写入")
	}

	// 同流水号重复标记：幂等
	if err := env.payouts.MarkPayoutPaid(context.Background(), payout.ID, "upi-txn-1"); err != nil {
		t.Fatalf("重复标记应幂等成功: %v", err)
	}

	// 不同流水号：仅更正流水号，状态与时间不变
	if err := env.payouts.MarkPayoutPaid(context.Background(), payout.ID, "upi-txn-2"); err != nil {
		t.Fatalf("更正流水号失败: %v", err)
	}
	env.db.First(&got, payout.ID)
	if got.TransactionRef != "upi-txn-2" {
		t.Errorf("流水号未更正: %s", got.TransactionRef)
	}
}

func TestPayoutService_MarkPayoutPaid_Validation(t *testing.T) {
	env := newTestEnv(t)

	if err := env.payouts.MarkPayoutPaid(context.Background(), 1, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("空流水号 err = %v, want ErrValidation", err)
	}
	if err := env.payouts.MarkPayoutPaid(context.Background(), 9999, "txn"); !errors.Is(err, ErrNotFound) {
		t.Errorf("不存在批次 err = %v, want ErrNotFound", err)
	}
}

// ==================== 手工结算与汇总 ====================

func TestPayoutService_RecordManualPayout(t *testing.T) {
	env := newTestEnv(t)
	shop := env.createShop(t, "Shop1")

	payout, err := env.payouts.RecordManualPayout(context.Background(), &dto.ManualPayoutRequest{
		ShopID:         shop.ID,
		Amount:         1200,
		BWPages:        4,
		TransactionRef: "manual-1",
	})
	if err != nil {
		t.Fatalf("手工结算失败: %v", err)
	}
	if payout.Status != model.PayoutStatusProcessed {
		t.Errorf("status = %s, want processed", payout.Status)
	}

	// 金额为零/打印站不存在
	if _, err := env.payouts.RecordManualPayout(context.Background(), &dto.ManualPayoutRequest{
		ShopID: shop.ID, Amount: 0, TransactionRef: "x",
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("零金额 err = %v, want ErrValidation", err)
	}
	if _, err := env.payouts.RecordManualPayout(context.Background(), &dto.ManualPayoutRequest{
		ShopID: 9999, Amount: 100, TransactionRef: "x",
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("不存在打印站 err = %v, want ErrNotFound", err)
	}
}

func TestPayoutService_PendingPayoutSummary(t *testing.T) {
	env := newTestEnv(t)
	shop := payoutEnvShop(t, env)

	summary, err := env.payouts.PendingPayoutSummary(context.Background())
	if err != nil {
		t.Fatalf("查询待结算汇总失败: %v", err)
	}
	if len(summary) != 1 {
		t.Fatalf("汇总条数 = %d, want 1", len(summary))
	}
	if summary[0].ShopID != shop.ID || summary[0].Amount != 5700 {
		t.Errorf("汇总 = %+v, want shop %d amount 5700", summary[0], shop.ID)
	}

	// 打款后统计窗口前移，无新完成订单则汇总为空
	if _, err := env.payouts.RecordManualPayout(context.Background(), &dto.ManualPayoutRequest{
		ShopID: shop.ID, Amount: 5700, BWPages: 10, ColorPages: 4, TransactionRef: "settle-1",
	}); err != nil {
		t.Fatalf("结算失败: %v", err)
	}

	summary, err = env.payouts.PendingPayoutSummary(context.Background())
	if err != nil {
		t.Fatalf("查询待结算汇总失败: %v", err)
	}
	if len(summary) != 0 {
		t.Errorf("结算后汇总 = %+v, want 空", summary)
	}
}
