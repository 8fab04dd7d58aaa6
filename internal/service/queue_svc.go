package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"printhub/internal/api/dto"
	"printhub/internal/repository"
)

// ==================== QueueService 队列位置解析 ====================

// QueueService 队列位置与队列视图
// 位置永不落库：对 (shop_id, 活跃状态, id 序) 的纯派生读，
// 订单完成/失败后位置自动收敛，不存在第二份会漂移的事实
type QueueService struct {
	orderRepo repository.OrderRepository
}

// NewQueueService 创建队列服务
func NewQueueService(orderRepo repository.OrderRepository) *QueueService {
	return &QueueService{orderRepo: orderRepo}
}

// Position 订单在其打印站队列中的位置（1 起算）
// 仅排队/打印中订单有位置，其余状态返回 nil；
// 无副作用，可承受客户端任意频率轮询
func (s *QueueService) Position(ctx context.Context, orderID int64) (*int, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 订单 %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if !order.IsActive() {
		return nil, nil
	}

	ahead, err := s.orderRepo.CountActiveBefore(ctx, order.ShopID, order.ID)
	if err != nil {
		return nil, err
	}
	pos := int(ahead) + 1
	return &pos, nil
}

// ListQueue 打印站当前队列，按提交顺序
func (s *QueueService) ListQueue(ctx context.Context, shopID int64) ([]dto.QueueItem, error) {
	orders, err := s.orderRepo.ListActiveByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("查询队列失败: %w", err)
	}

	items := make([]dto.QueueItem, len(orders))
	for i, o := range orders {
		files := make([]dto.OrderFileVO, len(o.Files))
		for j, f := range o.Files {
			files[j] = dto.OrderFileVO{
				ID:        f.ID,
				Name:      f.FileName,
				PageCount: f.PageCount,
				Copies:    f.Copies,
				IsColor:   f.IsColor,
				PaperSize: f.PaperSize,
				Cost:      f.Cost,
			}
		}
		items[i] = dto.QueueItem{
			OrderID:   o.ID,
			Status:    o.Status,
			Position:  i + 1,
			Files:     files,
			CreatedAt: o.CreatedAt,
		}
	}
	return items, nil
}
