package http

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khoahotran/skillpath/pkg/apperror"
	"github.com/khoahotran/skillpath/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LimiterManager keeps one token bucket per client key and forgets keys that
// have been idle for a cleanup interval.
type LimiterManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	done     chan struct{}
	once     sync.Once
	logger   logger.Logger
}

// NewLimiterManager allows requestsPerMin per key with the given burst.
func NewLimiterManager(requestsPerMin, burst int, log logger.Logger) *LimiterManager {
	m := &LimiterManager{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
		done:     make(chan struct{}),
		logger:   log,
	}
	go m.cleanupRoutine(10 * time.Minute)
	return m
}

func (m *LimiterManager) limiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[key]
	if !ok {
		l = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = l
	}
	m.lastSeen[key] = time.Now()
	return l
}

func (m *LimiterManager) Allow(key string) bool {
	return m.limiter(key).Allow()
}

func (m *LimiterManager) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.cleanup(interval)
		case <-m.done:
			return
		}
	}
}

func (m *LimiterManager) cleanup(maxIdle time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, seen := range m.lastSeen {
		if now.Sub(seen) > maxIdle {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}
	m.logger.Debug("Rate limiter cleanup completed", zap.Int("remaining_limiters", len(m.limiters)))
}

func (m *LimiterManager) Close() {
	m.once.Do(func() { close(m.done) })
}

// RateLimitMiddleware limits by client IP. A nil manager disables limiting.
func RateLimitMiddleware(m *LimiterManager, log logger.Logger) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !m.Allow("ip:" + ip) {
			log.Info("Rate limit exceeded", zap.String("client_ip", ip), zap.String("path", c.FullPath()))
			c.Error(apperror.NewRateLimited("too many requests from " + ip))
			c.Abort()
			return
		}
		c.Next()
	}
}
