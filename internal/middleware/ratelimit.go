package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetquote/internal/response"
)

// Limiter counts hits per key inside a fixed window.
type Limiter interface {
	// Allow records a hit for key and reports whether it is within max, and
	// how many hits remain.
	Allow(ctx context.Context, key string, max int64, window time.Duration) (bool, int64, error)
}

// RedisLimiter keeps counters in Redis so limits hold across instances.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
}

func NewRedisLimiter(client redis.Cmdable) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "ratelimit"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, max int64, window time.Duration) (bool, int64, error) {
	k := fmt.Sprintf("%s:%s", l.prefix, key)

	// The expiry is set in the same transaction as the increment, and NX
	// keeps later hits from extending the window.
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to count request: %w", err)
	}
	count := incr.Val()

	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= max, remaining, nil
}

// MemoryLimiter is a single-process Limiter used when Redis is not
// configured. It counts hits per key in fixed windows, like RedisLimiter.
type MemoryLimiter struct {
	mu        sync.Mutex
	windows   map[string]*memoryWindow
	nextSweep time.Time
	now       func() time.Time
}

type memoryWindow struct {
	count   int64
	expires time.Time
}

// memorySweepInterval bounds how often Allow scans for expired keys.
const memorySweepInterval = time.Minute

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*memoryWindow), now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, max int64, window time.Duration) (bool, int64, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.nextSweep) {
		l.sweep(now)
	}

	w, ok := l.windows[key]
	if !ok || !now.Before(w.expires) {
		w = &memoryWindow{expires: now.Add(window)}
		l.windows[key] = w
	}
	w.count++

	remaining := max - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= max, remaining, nil
}

// sweep drops every expired window. The caller holds mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.expires) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(memorySweepInterval)
}

// RateLimit rejects clients exceeding max requests per window under scope.
// Limiter failures are logged and let the request through.
func RateLimit(limiter Limiter, scope string, max int64, window time.Duration, logger log.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()

		ok, remaining, err := limiter.Allow(c.Request.Context(), key, max, window)
		if err != nil {
			logger.WithFields(log.Fields{"scope": scope, "error": err}).Warn("Rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !ok {
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
