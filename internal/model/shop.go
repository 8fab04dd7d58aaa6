package model

import (
	"time"

	"gorm.io/datatypes"
)

// Shop 打印站状态常量
const (
	ShopStatusActive   = 1 // 正常
	ShopStatusInactive = 0 // 已停用（管理端操作，不可恢复）
)

// Shop 打印站
// 能力标志与 last_heartbeat 只允许打印站自身的 login/heartbeat 更新
type Shop struct {
	BaseModel
	Name     string `gorm:"size:100;uniqueIndex;not null"`
	Location string `gorm:"size:255"`

	// 登录凭证（明文比对，兼容存量打印站，见 DESIGN.md）
	Credential string `gorm:"size:255;not null"`

	// 结算账号（UPI），为空则不参与每日计提
	UpiID string `gorm:"size:100"`

	Status int `gorm:"default:1;index;comment:状态 0-已停用 1-正常"`

	// 打印能力标志，以最近一次心跳申报为准
	HasBW      bool `gorm:"default:false"`
	HasColor   bool `gorm:"default:false"`
	HasBWA3    bool `gorm:"default:false"`
	HasColorA3 bool `gorm:"default:false"`

	// 心跳
	LastHeartbeat     *time.Time        `gorm:"index"`
	LastHeartbeatMeta datatypes.JSONMap `gorm:"type:jsonb"` // 客户端版本、打印机型号等诊断信息

	// 关联
	Orders  []Order  `gorm:"foreignKey:ShopID"`
	Payouts []Payout `gorm:"foreignKey:ShopID"`
}

func (*Shop) TableName() string {
	return "shops"
}

// IsOnline 判断打印站是否在线
// window 由调用方传入：客户端列表用短窗口，死站检测用长窗口
func (s *Shop) IsOnline(now time.Time, window time.Duration) bool {
	if s.LastHeartbeat == nil {
		return false
	}
	return now.Sub(*s.LastHeartbeat) < window
}

// EffectiveCapability 有效能力 = 存储标志 AND 在线
// 心跳过期后即使库里标志仍为 true 也视为不可用
func (s *Shop) EffectiveCapability(color bool, now time.Time, window time.Duration) bool {
	if !s.IsOnline(now, window) {
		return false
	}
	if color {
		return s.HasColor || s.HasColorA3
	}
	return s.HasBW || s.HasBWA3
}
