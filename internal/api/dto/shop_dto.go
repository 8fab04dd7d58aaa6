package dto

import "time"

// ==================== 打印站请求 ====================

// StationLoginRequest 打印站登录
// 能力标志为可选：登录同时视作一次心跳加能力申报
type StationLoginRequest struct {
	ShopID     int64  `json:"shop_id" binding:"required"`
	Credential string `json:"credential" binding:"required"`

	Capabilities *CapabilityPayload `json:"capabilities"`
}

// HeartbeatRequest 心跳
// 缺省的能力标志保持原值不清零，允许部分更新
type HeartbeatRequest struct {
	Capabilities *CapabilityPayload     `json:"capabilities"`
	Meta         map[string]interface{} `json:"meta"` // 客户端版本、打印机型号等
}

// CapabilityPayload 能力申报（指针区分"未申报"与"申报为 false"）
type CapabilityPayload struct {
	HasBW      *bool `json:"has_bw"`
	HasColor   *bool `json:"has_color"`
	HasBWA3    *bool `json:"has_bw_a3"`
	HasColorA3 *bool `json:"has_color_a3"`
}

// CreateShopRequest 管理端创建打印站
type CreateShopRequest struct {
	Name       string `json:"name" binding:"required"`
	Location   string `json:"location"`
	Credential string `json:"credential" binding:"required"`
	UpiID      string `json:"upi_id"`
}

// ==================== 打印站响应 ====================

// StationLoginResponse 登录响应
type StationLoginResponse struct {
	Token string  `json:"token"`
	Shop  *ShopVO `json:"shop"`
}

// ShopVO 打印站信息
type ShopVO struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Location   string     `json:"location"`
	Status     int        `json:"status"`
	HasBW      bool       `json:"has_bw"`
	HasColor   bool       `json:"has_color"`
	HasBWA3    bool       `json:"has_bw_a3"`
	HasColorA3 bool       `json:"has_color_a3"`
	UpiID      string     `json:"upi_id,omitempty"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
}

// AvailableShop 客户端可选打印站（带实时队列深度）
type AvailableShop struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	QueueDepth int64  `json:"queue_depth"`
	HasBW      bool   `json:"has_bw"`
	HasColor   bool   `json:"has_color"`
	HasBWA3    bool   `json:"has_bw_a3"`
	HasColorA3 bool   `json:"has_color_a3"`
}
