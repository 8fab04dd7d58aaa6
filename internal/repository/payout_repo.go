package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"printhub/internal/model"
)

// ==================== 接口定义 ====================

// PayoutRepository 结算仓储接口
type PayoutRepository interface {
	Create(ctx context.Context, payout *model.Payout) error
	GetByID(ctx context.Context, id int64) (*model.Payout, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	ListByShop(ctx context.Context, shopID int64) ([]model.Payout, error)

	// GetLastProcessed 打印站最近一次已打款结算，无则返回 gorm.ErrRecordNotFound
	GetLastProcessed(ctx context.Context, shopID int64) (*model.Payout, error)

	// ExistsForDay 当日是否已为该打印站计提（幂等护栏）
	ExistsForDay(ctx context.Context, shopID int64, dayStart, dayEnd time.Time) (bool, error)
}

// ==================== 仓储实现 ====================

type payoutRepo struct {
	db *gorm.DB
}

// NewPayoutRepository 创建结算仓储
func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepo{db: db}
}

func (r *payoutRepo) Create(ctx context.Context, payout *model.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *payoutRepo) GetByID(ctx context.Context, id int64) (*model.Payout, error) {
	var payout model.Payout
	if err := r.db.WithContext(ctx).First(&payout, id).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Payout{}).Where("id = ?", id).Updates(fields).Error
}

func (r *payoutRepo) ListByShop(ctx context.Context, shopID int64) ([]model.Payout, error) {
	var payouts []model.Payout
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("id DESC").
		Find(&payouts).Error
	return payouts, err
}

func (r *payoutRepo) GetLastProcessed(ctx context.Context, shopID int64) (*model.Payout, error) {
	var payout model.Payout
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Where("status = ?", model.PayoutStatusProcessed).
		Order("id DESC").
		First(&payout).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepo) ExistsForDay(ctx context.Context, shopID int64, dayStart, dayEnd time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payout{}).
		Where("shop_id = ?", shopID).
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Count(&count).Error
	return count > 0, err
}
