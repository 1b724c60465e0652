package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"salonbook/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// clientIP resolves the caller's address. Proxy headers win over the raw
// remote address since the server runs behind a load balancer.
func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}

// rateLimiterStore keeps one token bucket per client address.
type rateLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newRateLimiterStore(perMinute int) *rateLimiterStore {
	return &rateLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (s *rateLimiterStore) limiterFor(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[ip]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[ip] = l
	}
	return l
}

func (s *rateLimiterStore) allow(c *gin.Context) bool {
	ip := clientIP(c)
	if s.limiterFor(ip).Allow() {
		return true
	}
	zap.L().Warn("request rate limited", zap.String("ip", ip), zap.String("path", c.FullPath()))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
	return false
}

func limitWith(store *rateLimiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store.allow(c) {
			c.Next()
		}
	}
}

var (
	globalOnce  sync.Once
	globalStore *rateLimiterStore
)

// RateLimitMiddleware limits requests per IP address. The per-minute budget
// comes from configuration, read on first use so LoadConfig has run.
func RateLimitMiddleware() gin.HandlerFunc {
	globalOnce.Do(func() {
		perMinute := config.AppConfig.MaxRequestsPerMin
		if perMinute <= 0 {
			perMinute = 100
		}
		globalStore = newRateLimiterStore(perMinute)
	})
	return limitWith(globalStore)
}

// Payment endpoints get a much tighter limiter: 10 requests per 15 minutes.
var paymentStore = &rateLimiterStore{
	limiters: make(map[string]*rate.Limiter),
	limit:    rate.Every(15 * time.Minute / 10),
	burst:    10,
}

// PaymentRateLimitMiddleware limits payment requests per IP address.
func PaymentRateLimitMiddleware() gin.HandlerFunc {
	return limitWith(paymentStore)
}
