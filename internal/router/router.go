package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"printhub/internal/controller"
	"printhub/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	userCtl *controller.UserController,
	shopCtl *controller.ShopController,
	orderCtl *controller.OrderController,
	stationCtl *controller.StationController,
	adminCtl *controller.AdminController,
	heartbeatCooldown time.Duration) {

	limiter := middleware.NewCooldownLimiter()

	api := r.Group("/api")
	{
		// users 用户
		users := api.Group("/users")
		{
			// POST /api/users
			users.POST("", userCtl.Register)
			users.GET("/:id", userCtl.Get)
			users.PUT("/:id/name", userCtl.Rename)

			// GET /api/users/:id/orders
			users.GET("/:id/orders", orderCtl.ListByUser)
		}

		// shops 客户端打印站列表
		shops := api.Group("/shops")
		{
			// GET /api/shops?capability=bw|color
			shops.GET("", shopCtl.ListAvailable)
		}

		// orders 客户端订单
		orders := api.Group("/orders")
		{
			orders.POST("", orderCtl.CreateDraft)
			orders.GET("/:id", orderCtl.GetStatus)

			// POST /api/orders/:id/payment 支付回调
			orders.POST("/:id/payment", orderCtl.ConfirmPayment)
			orders.POST("/:id/cancel", orderCtl.Cancel)
		}

		// station 打印站侧，登录后 JWT 鉴权
		station := api.Group("/station")
		{
			station.POST("/login", stationCtl.Login)

			authed := station.Group("", middleware.StationAuth())
			{
				// 心跳有冷却限流，防止客户端重试风暴压垮活性更新
				authed.POST("/heartbeat",
					middleware.HeartbeatCooldown(limiter, heartbeatCooldown),
					stationCtl.Heartbeat)

				authed.GET("/queue", stationCtl.GetQueue)
				authed.POST("/orders/:id/printing", stationCtl.StartPrinting)
				authed.POST("/orders/:id/complete", stationCtl.Complete)
				authed.POST("/orders/:id/fail", stationCtl.Fail)
			}
		}

		// admin 管理端
		admin := api.Group("/admin")
		{
			admin.POST("/shops", adminCtl.CreateShop)
			admin.POST("/shops/:id/deactivate", adminCtl.DeactivateShop)
			admin.POST("/shops/:id/fail-all", adminCtl.FailAllOrders)
			admin.GET("/shops/:id/payouts", adminCtl.ShopPayouts)

			admin.POST("/orders/:id/force-fail", adminCtl.ForceFailOrder)
			admin.POST("/orders/:id/refund", adminCtl.RefundOrder)

			admin.GET("/payouts/pending", adminCtl.PendingPayouts)
			admin.POST("/payouts", adminCtl.RecordPayout)
			admin.POST("/payouts/:id/paid", adminCtl.MarkPayoutPaid)

			admin.GET("/tasks", adminCtl.TaskStatus)
			admin.POST("/tasks/:name/trigger", adminCtl.TriggerSweep)
		}
	}
}
