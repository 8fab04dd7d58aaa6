package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printhub/internal/service"
)

// ShopController 打印站列表控制器（客户端）
type ShopController struct {
	shopSvc *service.ShopService
}

// NewShopController 创建打印站控制器
func NewShopController(shopSvc *service.ShopService) *ShopController {
	return &ShopController{shopSvc: shopSvc}
}

// ListAvailable 按需求能力列出可用打印站
// GET /api/shops?capability=color|bw
func (c *ShopController) ListAvailable(ctx *gin.Context) {
	capability := ctx.DefaultQuery("capability", "bw")
	if capability != "bw" && capability != "color" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "capability 只支持 bw / color"})
		return
	}

	shops, err := c.shopSvc.ListAvailable(ctx, capability == "color")
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": shops})
}
