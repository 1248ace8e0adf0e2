// Package aquamiddleware file: internal/aquamiddleware/limiter.go
package aquamiddleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterEntry 存储限制器和最后访问时间，供清理循环判断是否淘汰
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 管理只读 API 的速率限制：一个全局限制器兜底，
// 外加按客户端 IP 的独立限制器。公开数据 API 不做认证，
// IP 维度是唯一可用的配额单位。
type IPRateLimiter struct {
	globalLimiter *rate.Limiter

	ipLimiters map[string]*limiterEntry
	ipMu       sync.Mutex
	ipRate     rate.Limit
	ipBurst    int
}

// NewIPRateLimiter 创建速率限制器并启动后台清理循环。
func NewIPRateLimiter(globalRate float64, globalBurst int, ipRate float64, ipBurst int) *IPRateLimiter {
	l := &IPRateLimiter{
		globalLimiter: rate.NewLimiter(rate.Limit(globalRate), globalBurst),
		ipLimiters:    make(map[string]*limiterEntry),
		ipRate:        rate.Limit(ipRate),
		ipBurst:       ipBurst,
	}
	go l.cleanupIPs()

	slog.Info("速率限制器初始化完成",
		"global_rate", globalRate, "global_burst", globalBurst,
		"ip_rate", ipRate, "ip_burst", ipBurst)
	return l
}

// cleanupIPs 定期清理不活跃的 IP 条目
func (l *IPRateLimiter) cleanupIPs() {
	for {
		time.Sleep(10 * time.Minute)
		l.ipMu.Lock()
		for ip, entry := range l.ipLimiters {
			if time.Since(entry.lastSeen) > 15*time.Minute {
				delete(l.ipLimiters, ip)
			}
		}
		l.ipMu.Unlock()
	}
}

func (l *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.ipMu.Lock()
	defer l.ipMu.Unlock()
	entry, ok := l.ipLimiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.ipRate, l.ipBurst)}
		l.ipLimiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// Middleware 返回执行限流的 gin 中间件。
// 全局配额先于 IP 配额判定，两者任一耗尽都返回 429。
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.globalLimiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "服务繁忙，请稍后重试"})
			return
		}
		if !l.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "请求过于频繁，请稍后重试"})
			return
		}
		c.Next()
	}
}
