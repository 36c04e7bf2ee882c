// File: internal/middleware/ratelimit.go
package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"pawmart_web/internal/common"
	"pawmart_web/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client IP. Idle buckets are
// dropped after an hour.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets *cache.Cache
}

// NewRateLimiter builds a limiter from AUTH_RATE_LIMIT_PER_MINUTE and
// AUTH_RATE_LIMIT_BURST. A non-positive rate disables limiting.
func NewRateLimiter(cfg *config.Config) *RateLimiter {
	limit := rate.Inf
	if cfg.AuthRateLimitPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.AuthRateLimitPerMinute))
	}
	burst := cfg.AuthRateLimitBurst
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		buckets: cache.New(time.Hour, 10*time.Minute),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, found := l.buckets.Get(key); found {
		lim := v.(*rate.Limiter)
		l.buckets.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.buckets.SetDefault(key, lim)
	return lim
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (l *RateLimiter) Middleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := l.limiter(c.ClientIP())
		reservation := lim.Reserve()
		if !reservation.OK() {
			common.RespondWithError(c, common.ErrTooManyRequests)
			return
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			logger.Warn("Sign-in rate limit exceeded", zap.String("ip", c.ClientIP()), zap.String("path", c.Request.URL.Path))
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			common.RespondWithError(c, common.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
