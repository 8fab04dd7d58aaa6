package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"printhub/internal/config"
	"printhub/internal/controller"
	"printhub/internal/middleware"
	"printhub/internal/model"
	"printhub/internal/repository"
	"printhub/internal/router"
	"printhub/internal/service"
	"printhub/internal/task"
	"printhub/pkg/clock"
	"printhub/pkg/database"
	"printhub/pkg/logging"
)

func main() {
	// 1. 读取配置
	cfg := config.Load()

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(cfg, db)

	// 4. 启动对账任务
	deps.Tasks.Start()
	defer deps.Tasks.Stop()

	// 5. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		deps.Controllers.User,
		deps.Controllers.Shop,
		deps.Controllers.Order,
		deps.Controllers.Station,
		deps.Controllers.Admin,
		cfg.HeartbeatCooldown,
	)

	// 6. 启动服务
	startServer(r, cfg.ServerPort)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Log         *zap.SugaredLogger
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	Tasks       *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	User   repository.UserRepository
	Shop   repository.ShopRepository
	Order  repository.OrderRepository
	Payout repository.PayoutRepository
}

// Services 服务集合
type Services struct {
	User   *service.UserService
	Shop   *service.ShopService
	Order  *service.OrderService
	Queue  *service.QueueService
	Payout *service.PayoutService
}

// Controllers 控制器集合
type Controllers struct {
	User    *controller.UserController
	Shop    *controller.ShopController
	Order   *controller.OrderController
	Station *controller.StationController
	Admin   *controller.AdminController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.DatabaseDSN,
		&model.User{},
		&model.Shop{},
		&model.Order{}, &model.OrderFile{},
		&model.Payout{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	logger := logging.NewSugaredLogger()
	clk := clock.Real{}

	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey: cfg.JWTSecret,
		TokenTTL:  cfg.JWTTokenTTL,
		Issuer:    "printhub",
	})

	// -------- Repo 层 --------
	repos := &Repositories{
		User:   repository.NewUserRepository(db),
		Shop:   repository.NewShopRepository(db),
		Order:  repository.NewOrderRepository(db),
		Payout: repository.NewPayoutRepository(db),
	}

	// -------- 外部协作方 --------
	gateway := service.NewRestyPaymentGateway(cfg.GatewayBaseURL, cfg.GatewayTimeout)
	notifier := service.NewLogNotifier(logger)

	rates := &service.RateTable{
		RetailBW:           cfg.RetailBWRate,
		RetailColor:        cfg.RetailColorRate,
		RetailBWA3:         cfg.RetailBWA3Rate,
		RetailColorA3:      cfg.RetailColorA3Rate,
		SettleBW:           cfg.SettleBWRate,
		SettleColor:        cfg.SettleColorRate,
		ServiceChargeRatio: cfg.ServiceChargeRatio,
		MaxServiceCharge:   cfg.MaxServiceCharge,
	}

	// -------- 业务服务 --------
	services := &Services{
		User: service.NewUserService(repos.User),
		Shop: service.NewShopService(
			repos.Shop, repos.Order, clk,
			cfg.ListingLivenessWindow, cfg.DemoShopIDs, logger,
		),
		Queue: service.NewQueueService(repos.Order),
	}
	services.Order = service.NewOrderService(
		repos.Order, repos.User, repos.Shop,
		gateway, notifier, service.NoopFileStore{}, service.HeuristicInspector{},
		rates, clk, cfg.StaleOrderAge, logger,
	)
	services.Payout = service.NewPayoutService(
		repos.Payout, repos.Order, repos.Shop, rates, clk, logger,
	)

	// -------- 对账任务 --------
	tasks := task.NewTaskManager(
		&task.TaskManagerDeps{
			ShopRepo:      repos.Shop,
			OrderRepo:     repos.Order,
			OrderService:  services.Order,
			ShopService:   services.Shop,
			PayoutService: services.Payout,
			Clock:         clk,
		},
		&task.TaskManagerConfig{
			RefundLookback:       cfg.RefundLookback,
			RefundSweepSpec:      cfg.RefundSweepSpec,
			DeadStationThreshold: cfg.DeadStationThreshold,
			StationSweepSpec:     cfg.StationSweepSpec,
			AccrualSpec:          cfg.AccrualSpec,
			DemoEnabled:          cfg.DemoEnabled,
			DemoShopName:         cfg.DemoShopName,
			DemoShopIDs:          cfg.DemoShopIDs,
		},
	)

	// -------- Controller 层 --------
	controllers := &Controllers{
		User:    controller.NewUserController(services.User),
		Shop:    controller.NewShopController(services.Shop),
		Order:   controller.NewOrderController(services.Order, services.Queue),
		Station: controller.NewStationController(services.Shop, services.Order, services.Queue),
		Admin:   controller.NewAdminController(services.Shop, services.Order, services.Payout, tasks),
	}

	return &Dependencies{
		DB:          db,
		Log:         logger,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Tasks:       tasks,
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
