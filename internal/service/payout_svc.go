package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"printhub/internal/api/dto"
	"printhub/internal/model"
	"printhub/internal/repository"
)

// ==================== PayoutService 结算服务 ====================

// PayoutService 打印站结算台账
// 计提只做记账，从不触发真实打款；打款是显式的手工步骤
type PayoutService struct {
	payoutRepo repository.PayoutRepository
	orderRepo  repository.OrderRepository
	shopRepo   repository.ShopRepository
	rates      *RateTable
	clk        Clock
	log        *zap.SugaredLogger
}

// NewPayoutService 创建结算服务
func NewPayoutService(
	payoutRepo repository.PayoutRepository,
	orderRepo repository.OrderRepository,
	shopRepo repository.ShopRepository,
	rates *RateTable,
	clk Clock,
	log *zap.SugaredLogger,
) *PayoutService {
	return &PayoutService{
		payoutRepo: payoutRepo,
		orderRepo:  orderRepo,
		shopRepo:   shopRepo,
		rates:      rates,
		clk:        clk,
		log:        log,
	}
}

// ==================== 待结算汇总 ====================

// PendingPayoutSummary 各打印站待结算汇总
// 统计窗口：该站最近一次已打款结算之后（无则从纪元起）的 completed 订单；
// 应付为零的打印站不出现在结果中
func (s *PayoutService) PendingPayoutSummary(ctx context.Context) ([]dto.ShopPayoutSummary, error) {
	shops, err := s.shopRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询打印站列表失败: %w", err)
	}

	now := s.clk.Now()
	out := make([]dto.ShopPayoutSummary, 0, len(shops))
	for i := range shops {
		shop := &shops[i]

		since := time.Unix(0, 0)
		if last, err := s.payoutRepo.GetLastProcessed(ctx, shop.ID); err == nil {
			since = last.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		bw, color, err := s.orderRepo.SumCompletedPages(ctx, shop.ID, since, now)
		if err != nil {
			return nil, fmt.Errorf("统计打印站 %d 页数失败: %w", shop.ID, err)
		}

		amount := s.rates.SettleAmount(bw, color)
		if amount <= 0 {
			continue
		}
		out = append(out, dto.ShopPayoutSummary{
			ShopID:     shop.ID,
			ShopName:   shop.Name,
			UpiID:      shop.UpiID,
			BWPages:    bw,
			ColorPages: color,
			Amount:     amount,
		})
	}
	return out, nil
}

// ==================== 手工结算 ====================

// RecordManualPayout 直接入一条已打款结算（计划任务之外的临时结算）
func (s *PayoutService) RecordManualPayout(ctx context.Context, req *dto.ManualPayoutRequest) (*model.Payout, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: 金额必须为正", ErrValidation)
	}
	if _, err := s.shopRepo.GetByID(ctx, req.ShopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 打印站 %d", ErrNotFound, req.ShopID)
		}
		return nil, err
	}

	now := s.clk.Now()
	payout := &model.Payout{
		BaseModel:      model.BaseModel{CreatedAt: now},
		ShopID:         req.ShopID,
		Amount:         req.Amount,
		BWPageCount:    req.BWPages,
		ColorPageCount: req.ColorPages,
		Status:         model.PayoutStatusProcessed,
		TransactionRef: req.TransactionRef,
		ProcessedAt:    &now,
	}
	if err := s.payoutRepo.Create(ctx, payout); err != nil {
		return nil, fmt.Errorf("写入结算记录失败: %w", err)
	}
	return payout, nil
}

// MarkPayoutPaid 标记打款完成：pending → processed
// 已打款且流水号一致时幂等空操作；流水号不同则仅更正流水号（容忍 UPI 流水录错）
func (s *PayoutService) MarkPayoutPaid(ctx context.Context, payoutID int64, transactionRef string) error {
	if transactionRef == "" {
		return fmt.Errorf("%w: 打款流水号必填", ErrValidation)
	}

	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 结算批次 %d", ErrNotFound, payoutID)
		}
		return err
	}

	if payout.IsProcessed() {
		if payout.TransactionRef == transactionRef {
			return nil
		}
		return s.payoutRepo.UpdateFields(ctx, payoutID, map[string]interface{}{
			"transaction_ref": transactionRef,
		})
	}

	now := s.clk.Now()
	return s.payoutRepo.UpdateFields(ctx, payoutID, map[string]interface{}{
		"status":          model.PayoutStatusProcessed,
		"transaction_ref": transactionRef,
		"processed_at":    now,
	})
}

// ==================== 每日计提 ====================

// AccrueDaily 每日计提
// 幂等护栏：同一打印站同一自然日至多一条结算记录；
// 只为配置了 UPI 的打印站计提；单站失败不阻断整批
func (s *PayoutService) AccrueDaily(ctx context.Context) (int, error) {
	shops, err := s.shopRepo.ListWithUpi(ctx)
	if err != nil {
		return 0, fmt.Errorf("查询结算打印站失败: %w", err)
	}

	now := s.clk.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	created := 0
	for i := range shops {
		shop := &shops[i]

		exists, err := s.payoutRepo.ExistsForDay(ctx, shop.ID, dayStart, dayEnd)
		if err != nil {
			s.log.Warnw("accrual: day check failed", "shop_id", shop.ID, "err", err)
			continue
		}
		if exists {
			continue
		}

		bw, color, err := s.orderRepo.SumCompletedPages(ctx, shop.ID, dayStart, now)
		if err != nil {
			s.log.Warnw("accrual: page sum failed", "shop_id", shop.ID, "err", err)
			continue
		}
		amount := s.rates.SettleAmount(bw, color)
		if amount <= 0 {
			continue
		}

		// created_at 用注入时钟：当日幂等护栏按这个时间判天
		payout := &model.Payout{
			BaseModel:      model.BaseModel{CreatedAt: now},
			ShopID:         shop.ID,
			Amount:         amount,
			BWPageCount:    bw,
			ColorPageCount: color,
			Status:         model.PayoutStatusPending,
		}
		if err := s.payoutRepo.Create(ctx, payout); err != nil {
			s.log.Warnw("accrual: create payout failed", "shop_id", shop.ID, "err", err)
			continue
		}
		created++
	}
	return created, nil
}

// ListShopPayouts 打印站结算历史
func (s *PayoutService) ListShopPayouts(ctx context.Context, shopID int64) ([]model.Payout, error) {
	return s.payoutRepo.ListByShop(ctx, shopID)
}
