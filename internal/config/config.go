package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ==================== Config 运行时配置 ====================

// Config 聚合运行时配置，优先读环境变量，缺省用默认值
type Config struct {
	ServerPort  string
	DatabaseDSN string

	JWTSecret   string
	JWTTokenTTL time.Duration

	// 支付网关
	GatewayBaseURL string
	GatewayTimeout time.Duration

	// 心跳活性窗口
	// 两个窗口刻意独立：列表新鲜度和死站检测是不同的 SLA
	ListingLivenessWindow time.Duration
	DeadStationThreshold  time.Duration

	// 退款清扫只回看该窗口内的失败订单，更老的订单走管理端强制失败的同步退款路径
	RefundLookback   time.Duration
	StaleOrderAge    time.Duration
	RefundSweepSpec  string
	StationSweepSpec string
	AccrualSpec      string

	// 价格表（分/页）：零售价用于用户计价，结算价用于打印站分账，两套价格不可合并
	RetailBWRate       int64
	RetailColorRate    int64
	RetailBWA3Rate     int64
	RetailColorA3Rate  int64
	SettleBWRate       int64
	SettleColorRate    int64
	ServiceChargeRatio float64
	MaxServiceCharge   int64
	HeartbeatCooldown  time.Duration

	// 演示打印站：跳过活性检查的白名单（显式配置，不做名称匹配）
	DemoShopIDs  []int64
	DemoEnabled  bool
	DemoShopName string
}

// Load 读取配置
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DATABASE_DSN", "host=localhost user=printhub password=printhub dbname=printhub port=5432 sslmode=disable")

	v.SetDefault("JWT_SECRET", "printhub-dev-secret")
	v.SetDefault("JWT_TOKEN_TTL", "24h")

	v.SetDefault("GATEWAY_BASE_URL", "http://localhost:9090")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")

	v.SetDefault("LISTING_LIVENESS_WINDOW", "60s")
	v.SetDefault("DEAD_STATION_THRESHOLD", "15m")

	v.SetDefault("REFUND_LOOKBACK", "72h")
	v.SetDefault("STALE_ORDER_AGE", "72h")
	v.SetDefault("REFUND_SWEEP_SPEC", "0 * * * * *")      // 每分钟
	v.SetDefault("STATION_SWEEP_SPEC", "0 */5 * * * *")   // 每5分钟
	v.SetDefault("ACCRUAL_SPEC", "0 30 0 * * *")          // 每天 00:30

	v.SetDefault("RETAIL_BW_RATE", 300)
	v.SetDefault("RETAIL_COLOR_RATE", 1000)
	v.SetDefault("RETAIL_BW_A3_RATE", 600)
	v.SetDefault("RETAIL_COLOR_A3_RATE", 2000)
	v.SetDefault("SETTLE_BW_RATE", 250)
	v.SetDefault("SETTLE_COLOR_RATE", 800)
	v.SetDefault("SERVICE_CHARGE_RATIO", 0.25)
	v.SetDefault("MAX_SERVICE_CHARGE", 2000)
	v.SetDefault("HEARTBEAT_COOLDOWN", "5s")

	v.SetDefault("DEMO_SHOP_IDS", "")
	v.SetDefault("DEMO_ENABLED", false)
	v.SetDefault("DEMO_SHOP_NAME", "Demo Station")

	return &Config{
		ServerPort:  v.GetString("SERVER_PORT"),
		DatabaseDSN: v.GetString("DATABASE_DSN"),

		JWTSecret:   v.GetString("JWT_SECRET"),
		JWTTokenTTL: v.GetDuration("JWT_TOKEN_TTL"),

		GatewayBaseURL: v.GetString("GATEWAY_BASE_URL"),
		GatewayTimeout: v.GetDuration("GATEWAY_TIMEOUT"),

		ListingLivenessWindow: v.GetDuration("LISTING_LIVENESS_WINDOW"),
		DeadStationThreshold:  v.GetDuration("DEAD_STATION_THRESHOLD"),

		RefundLookback:   v.GetDuration("REFUND_LOOKBACK"),
		StaleOrderAge:    v.GetDuration("STALE_ORDER_AGE"),
		RefundSweepSpec:  v.GetString("REFUND_SWEEP_SPEC"),
		StationSweepSpec: v.GetString("STATION_SWEEP_SPEC"),
		AccrualSpec:      v.GetString("ACCRUAL_SPEC"),

		RetailBWRate:       v.GetInt64("RETAIL_BW_RATE"),
		RetailColorRate:    v.GetInt64("RETAIL_COLOR_RATE"),
		RetailBWA3Rate:     v.GetInt64("RETAIL_BW_A3_RATE"),
		RetailColorA3Rate:  v.GetInt64("RETAIL_COLOR_A3_RATE"),
		SettleBWRate:       v.GetInt64("SETTLE_BW_RATE"),
		SettleColorRate:    v.GetInt64("SETTLE_COLOR_RATE"),
		ServiceChargeRatio: v.GetFloat64("SERVICE_CHARGE_RATIO"),
		MaxServiceCharge:   v.GetInt64("MAX_SERVICE_CHARGE"),
		HeartbeatCooldown:  v.GetDuration("HEARTBEAT_COOLDOWN"),

		DemoShopIDs:  parseIDList(v.GetString("DEMO_SHOP_IDS")),
		DemoEnabled:  v.GetBool("DEMO_ENABLED"),
		DemoShopName: v.GetString("DEMO_SHOP_NAME"),
	}
}

// parseIDList 解析逗号分隔的 ID 列表
func parseIDList(value string) []int64 {
	parts := strings.Split(value, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}
