package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 按 key 限制操作频率
// 防止运营侧频繁清空缓存导致配置库被打穿
type CooldownLimiter struct {
	locks sync.Map // key -> *cooldownEntry
	now   func() time.Time
}

type cooldownEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建限流器；now 为空时使用 time.Now
func NewCooldownLimiter(now func() time.Time) *CooldownLimiter {
	if now == nil {
		now = time.Now
	}
	return &CooldownLimiter{now: now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并在允许时记录本次执行
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &cooldownEntry{})
	entry := actual.(*cooldownEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	if !entry.lastTime.IsZero() {
		if elapsed := now.Sub(entry.lastTime); elapsed < interval {
			return CheckResult{Allowed: false, RetryAfter: interval - elapsed}
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== 中间件 ====================

// Cooldown 对整个路由做冷却限流；interval <= 0 时不限制
//
// 使用示例:
//
//	admin.POST("/cache/flush",
//	    middleware.Cooldown(limiter, "cache_flush", 30*time.Second),
//	    configCtl.FlushCache,
//	)
func Cooldown(limiter *CooldownLimiter, key string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if interval <= 0 {
			c.Next()
			return
		}

		result := limiter.Check(key, interval)
		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfterSeconds(result.RetryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       formatRetryMessage(result.RetryAfter),
				"retry_after": retryAfterSeconds(result.RetryAfter),
			})
			return
		}

		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := retryAfterSeconds(d)
	if seconds < 60 {
		return fmt.Sprintf("操作冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60
	if remainingSeconds == 0 {
		return fmt.Sprintf("操作冷却中，请 %d 分钟后重试", minutes)
	}
	return fmt.Sprintf("操作冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
