package dto

import "time"

// ==================== 订单请求 ====================

// CreateDraftRequest 创建草稿订单
type CreateDraftRequest struct {
	UserID int64            `json:"user_id" binding:"required"`
	ShopID int64            `json:"shop_id" binding:"required"`
	Files  []DraftFileInput `json:"files" binding:"required"`
}

// DraftFileInput 草稿文件
// Data 为 base64 编码的文件内容，核心只透传给存储协作方
type DraftFileInput struct {
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	Data      []byte `json:"data"`
	Copies    int    `json:"copies"`
	IsColor   bool   `json:"is_color"`
	PaperSize string `json:"paper_size"`
}

// ConfirmPaymentRequest 支付确认回调
type ConfirmPaymentRequest struct {
	PaymentRef string `json:"payment_ref" binding:"required"`
}

// FailOrderRequest 标记失败
type FailOrderRequest struct {
	Reason string `json:"reason"`
}

// RefundRequest 退款
type RefundRequest struct {
	Reason string `json:"reason"`
}

// ==================== 订单响应 ====================

// OrderVO 订单信息
type OrderVO struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	ShopID        int64      `json:"shop_id"`
	Status        string     `json:"status"`
	PrintAmount   int64      `json:"print_amount"`
	ServiceCharge int64      `json:"service_charge"`
	TotalAmount   int64      `json:"total_amount"`
	PaymentRef    string     `json:"payment_ref,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`

	Files []OrderFileVO `json:"files,omitempty"`

	// 队列位置：1 起算，仅排队/打印中订单有值
	QueuePosition *int `json:"queue_position,omitempty"`
}

// OrderFileVO 订单文件
type OrderFileVO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PageCount int    `json:"page_count"`
	Copies    int    `json:"copies"`
	IsColor   bool   `json:"is_color"`
	PaperSize string `json:"paper_size"`
	Cost      int64  `json:"cost"`
}

// QueueItem 打印站队列条目
type QueueItem struct {
	OrderID   int64         `json:"order_id"`
	Status    string        `json:"status"`
	Position  int           `json:"position"`
	Files     []OrderFileVO `json:"files"`
	CreatedAt time.Time     `json:"created_at"`
}

// BatchFailResponse 批量失败结果
type BatchFailResponse struct {
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}
