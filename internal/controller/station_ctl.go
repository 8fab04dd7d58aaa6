package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"printhub/internal/api/dto"
	"printhub/internal/middleware"
	"printhub/internal/model"
	"printhub/internal/service"
)

// StationController 打印站侧控制器
// 登录后所有操作以 Token 内的 shop_id 为准，打印站只能动自己的队列
type StationController struct {
	shopSvc  *service.ShopService
	orderSvc *service.OrderService
	queueSvc *service.QueueService
}

// NewStationController 创建打印站控制器
func NewStationController(
	shopSvc *service.ShopService,
	orderSvc *service.OrderService,
	queueSvc *service.QueueService,
) *StationController {
	return &StationController{shopSvc: shopSvc, orderSvc: orderSvc, queueSvc: queueSvc}
}

// ==================== 登录与心跳 ====================

// Login 打印站登录
// POST /api/station/login
func (c *StationController) Login(ctx *gin.Context) {
	var req dto.StationLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, err := c.shopSvc.Login(ctx, &req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	token, err := middleware.GenerateStationToken(shop.ID, shop.Name)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "签发 Token 失败"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": dto.StationLoginResponse{
			Token: token,
			Shop:  toShopVO(shop),
		},
	})
}

// Heartbeat 心跳 + 能力申报
// POST /api/station/heartbeat
func (c *StationController) Heartbeat(ctx *gin.Context) {
	var req dto.HeartbeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shopID := middleware.GetShopID(ctx)
	if err := c.shopSvc.RecordHeartbeat(ctx, shopID, &req); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// ==================== 队列作业 ====================

// GetQueue 当前队列
// GET /api/station/queue
func (c *StationController) GetQueue(ctx *gin.Context) {
	shopID := middleware.GetShopID(ctx)
	items, err := c.queueSvc.ListQueue(ctx, shopID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": items})
}

// StartPrinting 开始打印
// POST /api/station/orders/:id/printing
func (c *StationController) StartPrinting(ctx *gin.Context) {
	orderID, ok := c.ownOrderID(ctx)
	if !ok {
		return
	}
	if err := c.orderSvc.MarkPrinting(ctx, orderID); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// Complete 打印完成
// POST /api/station/orders/:id/complete
func (c *StationController) Complete(ctx *gin.Context) {
	orderID, ok := c.ownOrderID(ctx)
	if !ok {
		return
	}
	if err := c.orderSvc.MarkCompleted(ctx, orderID); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// Fail 打印失败
// POST /api/station/orders/:id/fail
func (c *StationController) Fail(ctx *gin.Context) {
	orderID, ok := c.ownOrderID(ctx)
	if !ok {
		return
	}

	var req dto.FailOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reason == "" {
		req.Reason = "打印站上报失败"
	}

	if err := c.orderSvc.MarkFailed(ctx, orderID, req.Reason); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// ownOrderID 解析路径订单 ID 并校验归属
func (c *StationController) ownOrderID(ctx *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的订单 ID"})
		return 0, false
	}

	order, err := c.orderSvc.GetOrder(ctx, orderID)
	if err != nil {
		abortWithError(ctx, err)
		return 0, false
	}
	if order.ShopID != middleware.GetShopID(ctx) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "订单不属于当前打印站"})
		return 0, false
	}
	return orderID, true
}

// ==================== VO 转换 ====================

func toShopVO(shop *model.Shop) *dto.ShopVO {
	return &dto.ShopVO{
		ID:         shop.ID,
		Name:       shop.Name,
		Location:   shop.Location,
		Status:     shop.Status,
		HasBW:      shop.HasBW,
		HasColor:   shop.HasColor,
		HasBWA3:    shop.HasBWA3,
		HasColorA3: shop.HasColorA3,
		UpiID:      shop.UpiID,
		LastSeen:   shop.LastHeartbeat,
	}
}
