package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"printhub/internal/api/dto"
	"printhub/internal/model"
	"printhub/internal/repository"
)

// ==================== ShopService 打印站服务 ====================

// ShopService 打印站注册与活性跟踪
type ShopService struct {
	shopRepo  repository.ShopRepository
	orderRepo repository.OrderRepository
	clk       Clock
	log       *zap.SugaredLogger

	// 客户端列表活性窗口，与死站检测窗口是独立 SLA
	listingWindow time.Duration

	// 演示打印站白名单：跳过活性检查（显式配置，不做名称匹配）
	demoShopIDs map[int64]bool
}

// Clock 注入时钟，测试可模拟时间流逝
type Clock interface {
	Now() time.Time
}

// NewShopService 创建打印站服务
func NewShopService(
	shopRepo repository.ShopRepository,
	orderRepo repository.OrderRepository,
	clk Clock,
	listingWindow time.Duration,
	demoShopIDs []int64,
	log *zap.SugaredLogger,
) *ShopService {
	demo := make(map[int64]bool, len(demoShopIDs))
	for _, id := range demoShopIDs {
		demo[id] = true
	}
	return &ShopService{
		shopRepo:      shopRepo,
		orderRepo:     orderRepo,
		clk:           clk,
		log:           log,
		listingWindow: listingWindow,
		demoShopIDs:   demo,
	}
}

// IsDemoShop 是否在演示白名单内
func (s *ShopService) IsDemoShop(shopID int64) bool {
	return s.demoShopIDs[shopID]
}

// ==================== 心跳与登录 ====================

// RecordHeartbeat 记录心跳并覆盖申报的能力标志
// 缺省标志保持原值；打印站不存在或已停用返回 NotFound
func (s *ShopService) RecordHeartbeat(ctx context.Context, shopID int64, req *dto.HeartbeatRequest) error {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 打印站 %d", ErrNotFound, shopID)
		}
		return err
	}
	if shop.Status != model.ShopStatusActive {
		return fmt.Errorf("%w: 打印站 %d 已停用", ErrNotFound, shopID)
	}

	fields := map[string]interface{}{
		"last_heartbeat": s.clk.Now(),
	}
	applyCapabilities(fields, req.Capabilities)
	if len(req.Meta) > 0 {
		fields["last_heartbeat_meta"] = datatypes.JSONMap(req.Meta)
	}

	return s.shopRepo.UpdateFields(ctx, shopID, fields)
}

// Login 打印站登录
// 凭证比对 + 状态校验，成功后等同一次心跳加能力申报
func (s *ShopService) Login(ctx context.Context, req *dto.StationLoginRequest) (*model.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, req.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 打印站不存在或凭证错误", ErrUnauthorized)
		}
		return nil, err
	}
	if shop.Status != model.ShopStatusActive || shop.Credential != req.Credential {
		return nil, fmt.Errorf("%w: 打印站不存在或凭证错误", ErrUnauthorized)
	}

	fields := map[string]interface{}{
		"last_heartbeat": s.clk.Now(),
	}
	applyCapabilities(fields, req.Capabilities)
	if err := s.shopRepo.UpdateFields(ctx, shop.ID, fields); err != nil {
		return nil, err
	}

	return s.shopRepo.GetByID(ctx, shop.ID)
}

// applyCapabilities 将申报的能力标志并入更新字段，nil 表示未申报
func applyCapabilities(fields map[string]interface{}, caps *dto.CapabilityPayload) {
	if caps == nil {
		return
	}
	if caps.HasBW != nil {
		fields["has_bw"] = *caps.HasBW
	}
	if caps.HasColor != nil {
		fields["has_color"] = *caps.HasColor
	}
	if caps.HasBWA3 != nil {
		fields["has_bw_a3"] = *caps.HasBWA3
	}
	if caps.HasColorA3 != nil {
		fields["has_color_a3"] = *caps.HasColorA3
	}
}

// ==================== 客户端列表 ====================

// ListAvailable 按需求能力列出可用打印站，带实时队列深度
// 有效能力 = 存储标志 AND 在线；白名单打印站跳过活性检查
func (s *ShopService) ListAvailable(ctx context.Context, color bool) ([]dto.AvailableShop, error) {
	shops, err := s.shopRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询打印站列表失败: %w", err)
	}

	now := s.clk.Now()
	out := make([]dto.AvailableShop, 0, len(shops))
	for i := range shops {
		shop := &shops[i]

		online := s.demoShopIDs[shop.ID] || shop.IsOnline(now, s.listingWindow)
		if !online {
			continue
		}
		var capable bool
		if color {
			capable = shop.HasColor || shop.HasColorA3
		} else {
			capable = shop.HasBW || shop.HasBWA3
		}
		if !capable {
			continue
		}

		depth, err := s.orderRepo.CountActiveByShop(ctx, shop.ID)
		if err != nil {
			s.log.Warnw("queue depth query failed", "shop_id", shop.ID, "err", err)
			depth = 0
		}

		out = append(out, dto.AvailableShop{
			ID:         shop.ID,
			Name:       shop.Name,
			Location:   shop.Location,
			QueueDepth: depth,
			HasBW:      shop.HasBW,
			HasColor:   shop.HasColor,
			HasBWA3:    shop.HasBWA3,
			HasColorA3: shop.HasColorA3,
		})
	}
	return out, nil
}

// ==================== 管理端 ====================

// CreateShop 创建打印站（管理端）
func (s *ShopService) CreateShop(ctx context.Context, req *dto.CreateShopRequest) (*model.Shop, error) {
	if req.Name == "" || req.Credential == "" {
		return nil, fmt.Errorf("%w: 名称与凭证必填", ErrValidation)
	}
	shop := &model.Shop{
		Name:       req.Name,
		Location:   req.Location,
		Credential: req.Credential,
		UpiID:      req.UpiID,
		Status:     model.ShopStatusActive,
	}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("创建打印站失败: %w", err)
	}
	return shop, nil
}

// Deactivate 停用打印站
// 不可恢复：停用后无论心跳与否都不再出现在任何列表
func (s *ShopService) Deactivate(ctx context.Context, shopID int64) error {
	_, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 打印站 %d", ErrNotFound, shopID)
		}
		return err
	}
	return s.shopRepo.UpdateStatus(ctx, shopID, model.ShopStatusInactive)
}
