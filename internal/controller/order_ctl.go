package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"printhub/internal/api/dto"
	"printhub/internal/model"
	"printhub/internal/service"
)

// OrderController 订单控制器（客户端）
type OrderController struct {
	orderSvc *service.OrderService
	queueSvc *service.QueueService
}

// NewOrderController 创建订单控制器
func NewOrderController(orderSvc *service.OrderService, queueSvc *service.QueueService) *OrderController {
	return &OrderController{orderSvc: orderSvc, queueSvc: queueSvc}
}

// ==================== 草稿与支付 ====================

// CreateDraft 创建草稿订单
// POST /api/orders
func (c *OrderController) CreateDraft(ctx *gin.Context) {
	var req dto.CreateDraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := c.orderSvc.CreateDraft(ctx, &req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": toOrderVO(order, nil)})
}

// ConfirmPayment 支付确认回调
// POST /api/orders/:id/payment
func (c *OrderController) ConfirmPayment(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的订单 ID"})
		return
	}

	var req dto.ConfirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.orderSvc.ConfirmPayment(ctx, id, req.PaymentRef); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "支付已确认"})
}

// Cancel 取消未支付草稿
// POST /api/orders/:id/cancel
func (c *OrderController) Cancel(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的订单 ID"})
		return
	}

	if err := c.orderSvc.Cancel(ctx, id); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "订单已取消"})
}

// ==================== 状态轮询 ====================

// GetStatus 订单实时状态 + 队列位置
// GET /api/orders/:id
// 该端点承接客户端轮询，位置为派生读，允许显示瞬间即过期
func (c *OrderController) GetStatus(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的订单 ID"})
		return
	}

	order, err := c.orderSvc.GetOrder(ctx, id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	pos, err := c.queueSvc.Position(ctx, id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": toOrderVO(order, pos)})
}

// ListByUser 用户订单列表
// GET /api/users/:id/orders
func (c *OrderController) ListByUser(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户 ID"})
		return
	}

	orders, err := c.orderSvc.ListUserOrders(ctx, userID, 50)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	list := make([]*dto.OrderVO, len(orders))
	for i := range orders {
		list[i] = toOrderVO(&orders[i], nil)
	}
	ctx.JSON(http.StatusOK, gin.H{"data": list})
}

// ==================== VO 转换 ====================

func toOrderVO(order *model.Order, pos *int) *dto.OrderVO {
	files := make([]dto.OrderFileVO, len(order.Files))
	for i, f := range order.Files {
		files[i] = dto.OrderFileVO{
			ID:        f.ID,
			Name:      f.FileName,
			PageCount: f.PageCount,
			Copies:    f.Copies,
			IsColor:   f.IsColor,
			PaperSize: f.PaperSize,
			Cost:      f.Cost,
		}
	}
	return &dto.OrderVO{
		ID:            order.ID,
		UserID:        order.UserID,
		ShopID:        order.ShopID,
		Status:        order.Status,
		PrintAmount:   order.PrintAmount,
		ServiceCharge: order.ServiceCharge,
		TotalAmount:   order.TotalAmount,
		PaymentRef:    order.PaymentRef,
		FailureReason: order.FailureReason,
		CreatedAt:     order.CreatedAt,
		PaidAt:        order.PaidAt,
		CompletedAt:   order.CompletedAt,
		RefundedAt:    order.RefundedAt,
		Files:         files,
		QueuePosition: pos,
	}
}
