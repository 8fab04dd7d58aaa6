package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"printhub/internal/api/dto"
	"printhub/internal/model"
	"printhub/internal/service"
	"printhub/internal/task"
)

// AdminController 管理端控制器
// 打印站台账、人工介入（强制失败、退款、批量失败）与结算操作
type AdminController struct {
	shopSvc   *service.ShopService
	orderSvc  *service.OrderService
	payoutSvc *service.PayoutService
	taskMgr   *task.TaskManager
}

// NewAdminController 创建管理端控制器
func NewAdminController(
	shopSvc *service.ShopService,
	orderSvc *service.OrderService,
	payoutSvc *service.PayoutService,
	taskMgr *task.TaskManager,
) *AdminController {
	return &AdminController{
		shopSvc:   shopSvc,
		orderSvc:  orderSvc,
		payoutSvc: payoutSvc,
		taskMgr:   taskMgr,
	}
}

// ==================== 打印站管理 ====================

// CreateShop 创建打印站
// POST /api/admin/shops
func (c *AdminController) CreateShop(ctx *gin.Context) {
	var req dto.CreateShopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, err := c.shopSvc.CreateShop(ctx, &req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": toShopVO(shop)})
}

// DeactivateShop 停用打印站（不可恢复）
// POST /api/admin/shops/:id/deactivate
func (c *AdminController) DeactivateShop(ctx *gin.Context) {
	shopID, ok := pathID(ctx, "无效的打印站 ID")
	if !ok {
		return
	}
	if err := c.shopSvc.Deactivate(ctx, shopID); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// FailAllOrders 批量失败打印站全部活跃订单
// POST /api/admin/shops/:id/fail-all
func (c *AdminController) FailAllOrders(ctx *gin.Context) {
	shopID, ok := pathID(ctx, "无效的打印站 ID")
	if !ok {
		return
	}

	var req dto.FailOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reason == "" {
		req.Reason = "管理端批量失败"
	}

	resp, err := c.orderSvc.FailAll(ctx, shopID, req.Reason)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": resp})
}

// ==================== 订单人工介入 ====================

// ForceFailOrder 强制失败
// POST /api/admin/orders/:id/force-fail
func (c *AdminController) ForceFailOrder(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "无效的订单 ID")
	if !ok {
		return
	}

	var req dto.FailOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reason == "" {
		req.Reason = "管理端强制失败"
	}

	if err := c.orderSvc.ForceFail(ctx, orderID, req.Reason); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// RefundOrder 人工退款
// POST /api/admin/orders/:id/refund
func (c *AdminController) RefundOrder(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "无效的订单 ID")
	if !ok {
		return
	}

	var req dto.RefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reason == "" {
		req.Reason = "管理端退款"
	}

	if err := c.orderSvc.Refund(ctx, orderID, req.Reason); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// ==================== 结算 ====================

// PendingPayouts 待结算汇总
// GET /api/admin/payouts/pending
func (c *AdminController) PendingPayouts(ctx *gin.Context) {
	summary, err := c.payoutSvc.PendingPayoutSummary(ctx)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": summary})
}

// RecordPayout 手工结算入账
// POST /api/admin/payouts
func (c *AdminController) RecordPayout(ctx *gin.Context) {
	var req dto.ManualPayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := c.payoutSvc.RecordManualPayout(ctx, &req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": toPayoutVO(payout)})
}

// MarkPayoutPaid 标记打款完成
// POST /api/admin/payouts/:id/paid
func (c *AdminController) MarkPayoutPaid(ctx *gin.Context) {
	payoutID, ok := pathID(ctx, "无效的结算批次 ID")
	if !ok {
		return
	}

	var req dto.MarkPaidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.payoutSvc.MarkPayoutPaid(ctx, payoutID, req.TransactionRef); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// ShopPayouts 打印站结算历史
// GET /api/admin/shops/:id/payouts
func (c *AdminController) ShopPayouts(ctx *gin.Context) {
	shopID, ok := pathID(ctx, "无效的打印站 ID")
	if !ok {
		return
	}

	payouts, err := c.payoutSvc.ListShopPayouts(ctx, shopID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	out := make([]*dto.PayoutVO, 0, len(payouts))
	for i := range payouts {
		out = append(out, toPayoutVO(&payouts[i]))
	}
	ctx.JSON(http.StatusOK, gin.H{"data": out})
}

// ==================== 任务运维 ====================

// TriggerSweep 手动触发对账任务，用于运维兜底
// POST /api/admin/tasks/:name/trigger
func (c *AdminController) TriggerSweep(ctx *gin.Context) {
	switch ctx.Param("name") {
	case "refund":
		c.taskMgr.TriggerRefundSweep(ctx)
	case "station":
		c.taskMgr.TriggerStationSweep(ctx)
	case "accrual":
		c.taskMgr.TriggerAccrual(ctx)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "未知任务"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// TaskStatus 任务装配状态
// GET /api/admin/tasks
func (c *AdminController) TaskStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"data": c.taskMgr.Status()})
}

// ==================== 辅助 ====================

func pathID(ctx *gin.Context, msg string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return 0, false
	}
	return id, true
}

func toPayoutVO(p *model.Payout) *dto.PayoutVO {
	return &dto.PayoutVO{
		ID:             p.ID,
		ShopID:         p.ShopID,
		Amount:         p.Amount,
		BWPages:        p.BWPageCount,
		ColorPages:     p.ColorPageCount,
		Status:         p.Status,
		TransactionRef: p.TransactionRef,
		CreatedAt:      p.CreatedAt,
		ProcessedAt:    p.ProcessedAt,
	}
}
