package model

import "time"

// Payout 结算状态常量
const (
	PayoutStatusPending   = "pending"   // 已计提，待打款
	PayoutStatusProcessed = "processed" // 已打款
)

// Payout 打印站结算批次
// 定时计提任务保证同一打印站同一自然日至多一条
type Payout struct {
	BaseModel
	ShopID int64 `gorm:"index;not null"`

	Amount         int64 // 应付金额（分），按结算价计算，区别于用户零售价
	BWPageCount    int64
	ColorPageCount int64

	Status         string `gorm:"size:16;index;default:pending"`
	TransactionRef string `gorm:"size:100"` // UPI 打款流水号
	ProcessedAt    *time.Time
}

func (*Payout) TableName() string {
	return "payouts"
}

// IsProcessed 是否已打款
func (p *Payout) IsProcessed() bool {
	return p.Status == PayoutStatusProcessed
}
