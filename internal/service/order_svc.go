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

// ==================== OrderService 订单服务 ====================

// OrderService 订单生命周期
// 所有状态迁移都走条件更新（WHERE status IN ...），0 行即 InvalidState，
// 并发调用方（客户端、打印站、清扫任务）谁先提交谁赢
type OrderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	shopRepo  repository.ShopRepository

	gateway   PaymentGateway
	notifier  Notifier
	fileStore FileStore
	inspector DocumentInspector

	rates *RateTable
	clk   Clock
	log   *zap.SugaredLogger

	// 超过该订单龄的强制失败走同步退款：退款清扫只回看有限窗口，老订单它永远看不到
	staleOrderAge time.Duration
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	shopRepo repository.ShopRepository,
	gateway PaymentGateway,
	notifier Notifier,
	fileStore FileStore,
	inspector DocumentInspector,
	rates *RateTable,
	clk Clock,
	staleOrderAge time.Duration,
	log *zap.SugaredLogger,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		userRepo:      userRepo,
		shopRepo:      shopRepo,
		gateway:       gateway,
		notifier:      notifier,
		fileStore:     fileStore,
		inspector:     inspector,
		rates:         rates,
		clk:           clk,
		staleOrderAge: staleOrderAge,
		log:           log,
	}
}

// ==================== 草稿创建与计价 ====================

// CreateDraft 创建草稿订单
// 金额在此一次性计算，此后不再重算；文件离开草稿态后不可变
func (s *OrderService) CreateDraft(ctx context.Context, req *dto.CreateDraftRequest) (*model.Order, error) {
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("%w: 订单至少包含一个文件", ErrValidation)
	}

	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 用户 %d", ErrNotFound, req.UserID)
		}
		return nil, err
	}
	shop, err := s.shopRepo.GetByID(ctx, req.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 打印站 %d", ErrNotFound, req.ShopID)
		}
		return nil, err
	}
	if shop.Status != model.ShopStatusActive {
		return nil, fmt.Errorf("%w: 打印站 %d 已停用", ErrNotFound, req.ShopID)
	}

	var printAmount int64
	files := make([]model.OrderFile, 0, len(req.Files))
	for i, f := range req.Files {
		if f.Copies <= 0 {
			return nil, fmt.Errorf("%w: 文件 %d 份数必须为正", ErrValidation, i+1)
		}
		paperSize := f.PaperSize
		if paperSize == "" {
			paperSize = model.PaperSizeA4
		}

		// 页数检测失败按 1 页兜底：少计费优于卡单
		pageCount, err := s.inspector.PageCount(f.Data, f.MimeType)
		if err != nil || pageCount <= 0 {
			s.log.Warnw("page count detection failed, defaulting to 1",
				"file", f.Name, "err", err)
			pageCount = 1
		}

		ref, err := s.fileStore.Store(ctx, f.Data, f.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: 文件存储失败: %v", ErrExternalService, err)
		}

		cost := s.rates.FileCost(pageCount, f.Copies, f.IsColor, paperSize)
		printAmount += cost
		files = append(files, model.OrderFile{
			FileRef:   ref,
			FileName:  f.Name,
			PageCount: pageCount,
			Copies:    f.Copies,
			IsColor:   f.IsColor,
			PaperSize: paperSize,
			Cost:      cost,
		})
	}

	serviceCharge := s.rates.ServiceCharge(printAmount)
	order := &model.Order{
		UserID:        req.UserID,
		ShopID:        req.ShopID,
		Status:        model.OrderStatusDraft,
		PrintAmount:   printAmount,
		ServiceCharge: serviceCharge,
		TotalAmount:   printAmount + serviceCharge,
		Files:         files,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}
	return order, nil
}

// ==================== 状态迁移 ====================

// ConfirmPayment 支付确认：draft → queued
// 已是 queued 且流水号一致时幂等返回成功，不产生重复副作用
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID int64, paymentRef string) error {
	if paymentRef == "" {
		return fmt.Errorf("%w: 支付流水号必填", ErrValidation)
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == model.OrderStatusQueued && order.PaymentRef == paymentRef {
		return nil
	}

	now := s.clk.Now()
	rows, err := s.orderRepo.UpdateStatusFrom(ctx, orderID,
		[]string{model.OrderStatusDraft},
		map[string]interface{}{
			"status":      model.OrderStatusQueued,
			"payment_ref": paymentRef,
			"paid_at":     now,
		})
	if err != nil {
		return err
	}
	if rows == 0 {
		// 并发下可能刚被同一笔回调迁移过
		current, err := s.getOrder(ctx, orderID)
		if err == nil && current.Status == model.OrderStatusQueued && current.PaymentRef == paymentRef {
			return nil
		}
		return fmt.Errorf("%w: 订单 %d 当前状态 %s 不可确认支付", ErrInvalidState, orderID, order.Status)
	}

	s.notifyQueued(ctx, orderID)
	return nil
}

// MarkPrinting 打印站开始打印：queued → printing
func (s *OrderService) MarkPrinting(ctx context.Context, orderID int64) error {
	rows, err := s.orderRepo.UpdateStatusFrom(ctx, orderID,
		[]string{model.OrderStatusQueued},
		map[string]interface{}{"status": model.OrderStatusPrinting})
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: 订单 %d 不在排队中", ErrInvalidState, orderID)
	}
	return nil
}

// MarkCompleted 打印完成：queued/printing → completed
// 通知与文件清理只在迁移真正提交后执行
func (s *OrderService) MarkCompleted(ctx context.Context, orderID int64) error {
	now := s.clk.Now()
	rows, err := s.orderRepo.UpdateStatusFrom(ctx, orderID,
		model.ActiveStatuses,
		map[string]interface{}{
			"status":       model.OrderStatusCompleted,
			"completed_at": now,
		})
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: 订单 %d 不在可完成状态", ErrInvalidState, orderID)
	}

	s.notifyReady(ctx, orderID)
	s.releaseFiles(ctx, orderID)
	return nil
}

// MarkFailed 标记失败：queued/printing → failed
// failed 非终态，后续由退款清扫或管理端转入 refunded；
// 队列位置是派生读，迁移提交后该单自动不再计入任何队列深度
func (s *OrderService) MarkFailed(ctx context.Context, orderID int64, reason string) error {
	rows, err := s.orderRepo.UpdateStatusFrom(ctx, orderID,
		model.ActiveStatuses,
		map[string]interface{}{
			"status":         model.OrderStatusFailed,
			"failure_reason": reason,
		})
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: 订单 %d 不在可失败状态", ErrInvalidState, orderID)
	}

	s.releaseFiles(ctx, orderID)
	return nil
}

// Refund 退款：completed/failed → refunded
// 外部退款失败时迁移绝不提交，订单留在原状态等待重试；
// 已退款订单幂等返回成功，不再调网关
func (s *OrderService) Refund(ctx context.Context, orderID int64, reason string) error {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == model.OrderStatusRefunded {
		return nil
	}
	if !order.CanRefund() {
		return fmt.Errorf("%w: 订单 %d 当前状态 %s 不可退款", ErrInvalidState, orderID, order.Status)
	}

	// 先调网关，成功才提交迁移；网关按 reference 幂等，
	// 并发双方都调了网关也只退一笔，订单状态是唯一事实
	if err := s.gateway.Refund(ctx, order.PaymentRef); err != nil {
		return err
	}

	now := s.clk.Now()
	rows, err := s.orderRepo.UpdateStatusFrom(ctx, orderID,
		[]string{model.OrderStatusCompleted, model.OrderStatusFailed},
		map[string]interface{}{
			"status":      model.OrderStatusRefunded,
			"refunded_at": now,
		})
	if err != nil {
		return err
	}
	if rows == 0 {
		// 并发方先提交了退款，本次视为幂等成功
		return nil
	}

	s.notifyRefund(ctx, orderID, reason)
	s.releaseFiles(ctx, orderID)
	return nil
}

// ForceFail 管理端强制失败
// 订单龄超过清扫回看窗口的走同步退款（清扫永远看不到它），
// 新订单只标记失败、留给下一轮清扫。两条路径都不可省：
// 去掉前者会困死老订单，去掉后者会双重退款
func (s *OrderService) ForceFail(ctx context.Context, orderID int64, reason string) error {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsActive() {
		return fmt.Errorf("%w: 订单 %d 当前状态 %s 不可强制失败", ErrInvalidState, orderID, order.Status)
	}

	if s.clk.Now().Sub(order.CreatedAt) > s.staleOrderAge {
		// 老订单：退款成功后一步迁入 refunded，对其他读者不暴露中间的 failed 态
		if err := s.gateway.Refund(ctx, order.PaymentRef); err != nil {
			return err
		}
		now := s.clk.Now()
		rows, err := s.orderRepo.UpdateStatusFrom(ctx, orderID,
			model.ActiveStatuses,
			map[string]interface{}{
				"status":         model.OrderStatusRefunded,
				"failure_reason": reason,
				"refunded_at":    now,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: 订单 %d 已被并发迁移", ErrInvalidState, orderID)
		}
		s.notifyRefund(ctx, orderID, reason)
		s.releaseFiles(ctx, orderID)
		return nil
	}

	return s.MarkFailed(ctx, orderID, reason)
}

// Cancel 用户取消：仅 draft → cancelled
// 支付后的订单不可自助取消，防止打印站已开工后插队式撤单
func (s *OrderService) Cancel(ctx context.Context, orderID int64) error {
	rows, err := s.orderRepo.UpdateStatusFrom(ctx, orderID,
		[]string{model.OrderStatusDraft},
		map[string]interface{}{"status": model.OrderStatusCancelled})
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: 订单 %d 不是未支付草稿", ErrInvalidState, orderID)
	}

	s.releaseFiles(ctx, orderID)
	return nil
}

// FailAll 批量失败打印站全部活跃订单（死站确认后的管理端操作）
// 单个订单失败不阻断其余订单
func (s *OrderService) FailAll(ctx context.Context, shopID int64, reason string) (*dto.BatchFailResponse, error) {
	orders, err := s.orderRepo.ListActiveByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("查询打印站队列失败: %w", err)
	}

	resp := &dto.BatchFailResponse{}
	for _, o := range orders {
		if err := s.MarkFailed(ctx, o.ID, reason); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("订单 %d: %v", o.ID, err))
			continue
		}
		resp.Failed++
	}
	return resp, nil
}

// ==================== 查询 ====================

// GetOrder 订单详情（含文件与用户）
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByIDWithFiles(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 订单 %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return order, nil
}

// ListUserOrders 用户订单列表
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID, limit)
}

// ==================== 内部辅助 ====================

func (s *OrderService) getOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 订单 %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return order, nil
}

// notifyQueued 下单成功通知，失败只记日志
func (s *OrderService) notifyQueued(ctx context.Context, orderID int64) {
	order, err := s.orderRepo.GetByIDWithFiles(ctx, orderID)
	if err != nil || order.User == nil {
		s.log.Warnw("notify queued: load order failed", "order_id", orderID, "err", err)
		return
	}
	s.notifier.NotifyOrderQueued(ctx, order.User.Contact, order.ID, order.TotalAmount)
}

// notifyReady 取件通知
func (s *OrderService) notifyReady(ctx context.Context, orderID int64) {
	order, err := s.orderRepo.GetByIDWithFiles(ctx, orderID)
	if err != nil || order.User == nil {
		s.log.Warnw("notify ready: load order failed", "order_id", orderID, "err", err)
		return
	}
	shopName := ""
	if shop, err := s.shopRepo.GetByID(ctx, order.ShopID); err == nil {
		shopName = shop.Name
	}
	s.notifier.NotifyOrderReady(ctx, order.User.Contact, order.ID, shopName)
}

// notifyRefund 退款通知
func (s *OrderService) notifyRefund(ctx context.Context, orderID int64, reason string) {
	order, err := s.orderRepo.GetByIDWithFiles(ctx, orderID)
	if err != nil || order.User == nil {
		s.log.Warnw("notify refund: load order failed", "order_id", orderID, "err", err)
		return
	}
	s.notifier.NotifyRefund(ctx, order.User.Contact, order.ID, order.TotalAmount, reason)
}

// releaseFiles 零留存：订单到达失败/终态后解除文件引用
// 外部存储删除失败只记日志，引用置空保证不再可达
func (s *OrderService) releaseFiles(ctx context.Context, orderID int64) {
	order, err := s.orderRepo.GetByIDWithFiles(ctx, orderID)
	if err != nil {
		s.log.Warnw("release files: load order failed", "order_id", orderID, "err", err)
		return
	}
	for _, f := range order.Files {
		if f.FileRef == "" {
			continue
		}
		if err := s.fileStore.Delete(ctx, f.FileRef); err != nil {
			s.log.Warnw("release files: storage delete failed",
				"order_id", orderID, "file_ref", f.FileRef, "err", err)
		}
	}
	if err := s.orderRepo.ClearFileRefs(ctx, orderID); err != nil {
		s.log.Warnw("release files: clear refs failed", "order_id", orderID, "err", err)
	}
}
