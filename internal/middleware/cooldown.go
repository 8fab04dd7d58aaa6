package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 按 key 的最小间隔限流
// 用于心跳端点：客户端异常时可能每秒狂发心跳，数据库不需要这么新鲜
type CooldownLimiter struct {
	locks sync.Map // key -> *cooldownEntry
}

type cooldownEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建冷却限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Check 检查是否允许执行，允许则同时记下执行时间
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &cooldownEntry{})
	entry := actual.(*cooldownEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)
	if elapsed < interval {
		return CheckResult{Allowed: false, RetryAfter: interval - elapsed}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Gin 中间件 ====================

// HeartbeatCooldown 心跳冷却中间件，按打印站维度限流
func HeartbeatCooldown(limiter *CooldownLimiter, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		shopID := GetShopID(c)
		if shopID == 0 {
			c.Next()
			return
		}

		result := limiter.Check(fmt.Sprintf("heartbeat:%d", shopID), interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":        429,
				"message":     "心跳过于频繁",
				"retry_after": result.RetryAfter.Seconds(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
