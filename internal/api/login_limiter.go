package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	defaultLoginAttemptsPerMinute = 8
	loginLimiterIdleTTL           = 15 * time.Minute
	loginLimiterSweepSize         = 1024
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginLimiter keeps one token bucket per client key. Idle buckets are dropped
// once the map grows past loginLimiterSweepSize.
type loginLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func newLoginLimiter(perMinute int) *loginLimiter {
	if perMinute <= 0 {
		perMinute = defaultLoginAttemptsPerMinute
	}
	return &loginLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		now:     time.Now,
	}
}

func (limiter *loginLimiter) allow(key string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	if len(limiter.entries) >= loginLimiterSweepSize {
		limiter.pruneLocked(now)
	}

	entry, ok := limiter.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (limiter *loginLimiter) pruneLocked(now time.Time) {
	threshold := now.Add(-loginLimiterIdleTTL)
	for key, entry := range limiter.entries {
		if entry.lastSeen.Before(threshold) {
			delete(limiter.entries, key)
		}
	}
}

func (handler *Handler) LoginRateLimit(c *fiber.Ctx) error {
	if !handler.loginLimiter.allow(requestLimiterKey(c)) {
		handler.log.WithField("ip", c.IP()).Warn("login rate limit exceeded")
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}
	return c.Next()
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
