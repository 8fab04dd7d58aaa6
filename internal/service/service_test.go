package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"printhub/internal/model"
	"printhub/internal/repository"
	"printhub/pkg/clock"
	"printhub/pkg/logging"
)

// ==================== 测试辅助 ====================

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{}, &model.Shop{},
		&model.Order{}, &model.OrderFile{},
		&model.Payout{},
	); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return db
}

func testRates() *RateTable {
	return &RateTable{
		RetailBW:           300,
		RetailColor:        1000,
		RetailBWA3:         600,
		RetailColorA3:      2000,
		SettleBW:           250,
		SettleColor:        800,
		ServiceChargeRatio: 0.25,
		MaxServiceCharge:   2000,
	}
}

// ==================== 协作方桩实现 ====================

type fakeGateway struct {
	refunds []string
	err     error
}

func (g *fakeGateway) Refund(_ context.Context, paymentRef string) error {
	if g.err != nil {
		return g.err
	}
	g.refunds = append(g.refunds, paymentRef)
	return nil
}

type fakeNotifier struct {
	queued  int
	ready   int
	refunds int
}

func (n *fakeNotifier) NotifyOrderQueued(_ context.Context, _ string, _, _ int64) { n.queued++ }
func (n *fakeNotifier) NotifyOrderReady(_ context.Context, _ string, _ int64, _ string) {
	n.ready++
}
func (n *fakeNotifier) NotifyRefund(_ context.Context, _ string, _, _ int64, _ string) {
	n.refunds++
}

// namedInspector 按文件内容查表返回页数，未预设的返回 1
type namedInspector struct {
	pages map[string]int
}

func (i *namedInspector) PageCount(data []byte, _ string) (int, error) {
	if n, ok := i.pages[string(data)]; ok {
		return n, nil
	}
	return 1, nil
}

// ==================== 测试环境 ====================

type testEnv struct {
	db *gorm.DB

	userRepo   repository.UserRepository
	shopRepo   repository.ShopRepository
	orderRepo  repository.OrderRepository
	payoutRepo repository.PayoutRepository

	clk       *clock.Fixed
	gateway   *fakeGateway
	notifier  *fakeNotifier
	inspector *namedInspector

	users   *UserService
	shops   *ShopService
	orders  *OrderService
	queue   *QueueService
	payouts *PayoutService
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	log := logging.NewNop()

	env := &testEnv{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		shopRepo:   repository.NewShopRepository(db),
		orderRepo:  repository.NewOrderRepository(db),
		payoutRepo: repository.NewPayoutRepository(db),
		clk:        &clock.Fixed{T: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)},
		gateway:    &fakeGateway{},
		notifier:   &fakeNotifier{},
		inspector:  &namedInspector{pages: map[string]int{}},
	}

	rates := testRates()
	env.users = NewUserService(env.userRepo)
	env.shops = NewShopService(env.shopRepo, env.orderRepo, env.clk, 60*time.Second, nil, log)
	env.orders = NewOrderService(
		env.orderRepo, env.userRepo, env.shopRepo,
		env.gateway, env.notifier, NoopFileStore{}, env.inspector,
		rates, env.clk, 72*time.Hour, log,
	)
	env.queue = NewQueueService(env.orderRepo)
	env.payouts = NewPayoutService(env.payoutRepo, env.orderRepo, env.shopRepo, rates, env.clk, log)
	return env
}

// ==================== 数据构造 ====================

func (env *testEnv) createUser(t *testing.T, name, contact string) *model.User {
	user := &model.User{Name: name, Contact: contact}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

func (env *testEnv) createShop(t *testing.T, name string) *model.Shop {
	now := env.clk.Now()
	shop := &model.Shop{
		Name:          name,
		Credential:    "secret-" + name,
		Status:        model.ShopStatusActive,
		HasBW:         true,
		HasColor:      true,
		LastHeartbeat: &now,
	}
	if err := env.db.Create(shop).Error; err != nil {
		t.Fatalf("创建测试打印站失败: %v", err)
	}
	return shop
}

// createOrder 直接落库一条指定状态的订单
// CreatedAt 对齐注入时钟，订单龄相关的断言才可控
func (env *testEnv) createOrder(t *testing.T, userID, shopID int64, status string) *model.Order {
	order := &model.Order{
		BaseModel:     model.BaseModel{CreatedAt: env.clk.Now()},
		UserID:        userID,
		ShopID:        shopID,
		Status:        status,
		PrintAmount:   3000,
		ServiceCharge: 750,
		TotalAmount:   3750,
		PaymentRef:    "pay-ref",
		Files: []model.OrderFile{
			{FileRef: "ref-1", FileName: "doc.pdf", PageCount: 10, Copies: 1, Cost: 3000},
		},
	}
	if err := env.db.Create(order).Error; err != nil {
		t.Fatalf("创建测试订单失败: %v", err)
	}
	return order
}

func (env *testEnv) orderStatus(t *testing.T, orderID int64) string {
	var order model.Order
	if err := env.db.First(&order, orderID).Error; err != nil {
		t.Fatalf("查询订单失败: %v", err)
	}
	return order.Status
}
