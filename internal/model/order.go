package model

import (
	"time"
)

// ==================== 订单状态常量 ====================

// OrderStatus 订单状态
const (
	OrderStatusDraft     = "draft"     // 草稿（已计价，未支付）
	OrderStatusQueued    = "queued"    // 已支付，排队中
	OrderStatusPrinting  = "printing"  // 打印中
	OrderStatusCompleted = "completed" // 已完成（终态）
	OrderStatusFailed    = "failed"    // 已失败（非终态，等待退款）
	OrderStatusRefunded  = "refunded"  // 已退款（终态）
	OrderStatusCancelled = "cancelled" // 已取消（终态，仅草稿可取消）
)

// ActiveStatuses 占用队列位置的状态
var ActiveStatuses = []string{OrderStatusQueued, OrderStatusPrinting}

// 纸张规格常量
const (
	PaperSizeA4 = "A4"
	PaperSizeA3 = "A3"
)

// ==================== Order 订单主表 ====================

// Order 打印订单
// 离开草稿态后文件不可变；队列位置不落库，读取时按 (shop_id, 活跃状态, id) 推导
type Order struct {
	BaseModel
	UserID int64 `gorm:"index;not null"`
	ShopID int64 `gorm:"index;not null"`

	Status string `gorm:"size:32;index;default:draft"`

	// 金额（以分为单位），草稿创建时一次性计算，之后不再重算
	PrintAmount   int64 // 各文件打印费之和
	ServiceCharge int64
	TotalAmount   int64

	// 支付
	PaymentRef string `gorm:"size:64;index"` // 外部支付网关流水号
	PaidAt     *time.Time

	// 失败与退款
	FailureReason  string `gorm:"size:255"`
	RefundAttempts int    `gorm:"default:0"` // 退款清扫重试次数，便于发现长期退款失败
	RefundedAt     *time.Time

	CompletedAt *time.Time

	// 关联
	User  *User       `gorm:"foreignKey:UserID"`
	Shop  *Shop       `gorm:"foreignKey:ShopID"`
	Files []OrderFile `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// IsActive 是否占用队列位置
func (o *Order) IsActive() bool {
	return o.Status == OrderStatusQueued || o.Status == OrderStatusPrinting
}

// IsTerminal 是否为终态
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusRefunded, OrderStatusCancelled:
		return true
	}
	return false
}

// CanConfirmPayment 是否可确认支付
func (o *Order) CanConfirmPayment() bool {
	return o.Status == OrderStatusDraft
}

// CanRefund 是否可退款
func (o *Order) CanRefund() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusFailed
}

// CanCancel 是否可取消（仅未支付的草稿）
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusDraft
}

// ==================== OrderFile 订单文件 ====================

// OrderFile 订单内的单个打印文件
// page_count 为源文档页数（与份数无关），计费页数 = page_count * copies
type OrderFile struct {
	BaseModel
	OrderID int64 `gorm:"index;not null"`

	FileRef   string `gorm:"size:255"` // 外部存储中的引用，终态后置空
	FileName  string `gorm:"size:255"`
	PageCount int    `gorm:"not null;default:1"`
	Copies    int    `gorm:"not null;default:1"`
	IsColor   bool   `gorm:"default:false"`
	PaperSize string `gorm:"size:8;default:A4"`

	Cost int64 // 该文件打印费（分）
}

func (*OrderFile) TableName() string {
	return "order_files"
}

// BillablePages 计费页数
func (f *OrderFile) BillablePages() int {
	return f.PageCount * f.Copies
}
