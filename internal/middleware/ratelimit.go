package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold 超过该数量才清理空闲条目
	cleanupThreshold = 500
	// maxIdleAge 空闲超过该时长的IP可被清理
	maxIdleAge = 10 * time.Minute
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 按IP限流，访问时顺带清理空闲条目
type IPRateLimiter struct {
	mu  sync.Mutex
	ips map[string]*ipEntry
	r   rate.Limit
	b   int
	now func() time.Time
}

// NewIPRateLimiter 每分钟 perMinute 次，突发 burst
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &IPRateLimiter{
		ips: make(map[string]*ipEntry),
		r:   rate.Limit(float64(perMinute) / 60.0),
		b:   burst,
		now: time.Now,
	}
}

// GetLimiter 获取IP对应的限流器
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.ips) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for k, e := range l.ips {
			if e.lastSeen.Before(cutoff) {
				delete(l.ips, k)
			}
		}
	}

	e, ok := l.ips[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.ips[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Size 当前跟踪的IP数量
func (l *IPRateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ips)
}

// RateLimit 限流中间件，onReject 可为空
func RateLimit(limiter *IPRateLimiter, onReject func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			if onReject != nil {
				onReject()
			}
			c.Header("Retry-After", "60")
			AbortWithError(c, apperrors.New(apperrors.ErrRateLimitExceeded))
			return
		}
		c.Next()
	}
}
