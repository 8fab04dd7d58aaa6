package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"printhub/internal/model"
)

// ==================== 接口定义 ====================

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByIDWithFiles(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Order, error)

	// UpdateStatusFrom 条件更新：仅当当前状态在 from 内才迁移
	// 返回受影响行数，0 行表示状态已被并发方迁移，调用方应视为 InvalidState
	UpdateStatusFrom(ctx context.Context, id int64, from []string, updates map[string]interface{}) (int64, error)

	// 队列查询（纯读，不落库）
	ListActiveByShop(ctx context.Context, shopID int64) ([]model.Order, error)
	CountActiveByShop(ctx context.Context, shopID int64) (int64, error)
	CountActiveBefore(ctx context.Context, shopID, orderID int64) (int64, error)

	// 对账清扫
	ListFailedSince(ctx context.Context, since time.Time) ([]model.Order, error)
	ListQueuedAtDemoShops(ctx context.Context, shopIDs []int64, before time.Time) ([]model.Order, error)
	IncrementRefundAttempts(ctx context.Context, id int64) error

	// 结算统计：completed 订单按黑白/彩色汇总计费页数
	SumCompletedPages(ctx context.Context, shopID int64, since, until time.Time) (bw, color int64, err error)

	// 文件引用清理（零留存策略）
	ClearFileRefs(ctx context.Context, orderID int64) error
}

// ==================== 仓储实现 ====================

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) GetByIDWithFiles(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Files").
		Preload("User").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Preload("Files").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) UpdateStatusFrom(ctx context.Context, id int64, from []string, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Where("status IN ?", from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// ==================== 队列查询 ====================

// ListActiveByShop 打印站当前队列，按 id 升序
// id 严格递增且无冲突，作为提交顺序的单调代理（创建时间毫秒级可能相撞）
func (r *orderRepo) ListActiveByShop(ctx context.Context, shopID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Where("status IN ?", model.ActiveStatuses).
		Order("id ASC").
		Preload("Files").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) CountActiveByShop(ctx context.Context, shopID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("shop_id = ?", shopID).
		Where("status IN ?", model.ActiveStatuses).
		Count(&count).Error
	return count, err
}

func (r *orderRepo) CountActiveBefore(ctx context.Context, shopID, orderID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("shop_id = ?", shopID).
		Where("status IN ?", model.ActiveStatuses).
		Where("id < ?", orderID).
		Count(&count).Error
	return count, err
}

// ==================== 对账清扫 ====================

func (r *orderRepo) ListFailedSince(ctx context.Context, since time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", model.OrderStatusFailed).
		Where("created_at >= ?", since).
		Order("id ASC").
		Preload("User").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) ListQueuedAtDemoShops(ctx context.Context, shopIDs []int64, before time.Time) ([]model.Order, error) {
	if len(shopIDs) == 0 {
		return nil, nil
	}
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("shop_id IN ?", shopIDs).
		Where("status = ?", model.OrderStatusQueued).
		Where("created_at < ?", before).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) IncrementRefundAttempts(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		UpdateColumn("refund_attempts", gorm.Expr("refund_attempts + 1")).Error
}

// ==================== 结算统计 ====================

func (r *orderRepo) SumCompletedPages(ctx context.Context, shopID int64, since, until time.Time) (int64, int64, error) {
	var result struct {
		BWPages    int64
		ColorPages int64
	}
	err := r.db.WithContext(ctx).Model(&model.OrderFile{}).
		Joins("JOIN orders ON orders.id = order_files.order_id").
		Where("orders.shop_id = ?", shopID).
		Where("orders.status = ?", model.OrderStatusCompleted).
		Where("orders.created_at > ? AND orders.created_at <= ?", since, until).
		Select(
			"COALESCE(SUM(CASE WHEN order_files.is_color THEN 0 ELSE order_files.page_count * order_files.copies END), 0) AS bw_pages, " +
				"COALESCE(SUM(CASE WHEN order_files.is_color THEN order_files.page_count * order_files.copies ELSE 0 END), 0) AS color_pages").
		Scan(&result).Error
	return result.BWPages, result.ColorPages, err
}

// ==================== 文件引用清理 ====================

func (r *orderRepo) ClearFileRefs(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Model(&model.OrderFile{}).
		Where("order_id = ?", orderID).
		Update("file_ref", "").Error
}
