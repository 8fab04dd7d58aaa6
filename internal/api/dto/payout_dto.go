package dto

import "time"

// ==================== 结算请求 ====================

// ManualPayoutRequest 手工结算入账
type ManualPayoutRequest struct {
	ShopID         int64  `json:"shop_id" binding:"required"`
	Amount         int64  `json:"amount" binding:"required"`
	BWPages        int64  `json:"bw_pages"`
	ColorPages     int64  `json:"color_pages"`
	TransactionRef string `json:"transaction_ref" binding:"required"`
}

// MarkPaidRequest 标记打款完成
type MarkPaidRequest struct {
	TransactionRef string `json:"transaction_ref" binding:"required"`
}

// ==================== 结算响应 ====================

// ShopPayoutSummary 单个打印站待结算汇总
type ShopPayoutSummary struct {
	ShopID     int64  `json:"shop_id"`
	ShopName   string `json:"shop_name"`
	UpiID      string `json:"upi_id"`
	BWPages    int64  `json:"bw_pages"`
	ColorPages int64  `json:"color_pages"`
	Amount     int64  `json:"amount"`
}

// PayoutVO 结算批次
type PayoutVO struct {
	ID             int64      `json:"id"`
	ShopID         int64      `json:"shop_id"`
	Amount         int64      `json:"amount"`
	BWPages        int64      `json:"bw_pages"`
	ColorPages     int64      `json:"color_pages"`
	Status         string     `json:"status"`
	TransactionRef string     `json:"transaction_ref,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
}
