// Package ratelimiter はキー単位のトークンバケット制限とGinミドルウェアを提供します。
package ratelimiter

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc extracts the limiting key from a request. An empty key skips limiting.
type KeyFunc func(c *gin.Context) string

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter は、キー（ユーザーID・IPなど）ごとに操作の頻度を制限します。
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	entries   map[string]*entry
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter は毎秒 rps 回・最大 burst 回のバーストを許す RateLimiter を生成します。
// idleTTL の間使われなかったキーは破棄されます。
func NewRateLimiter(rps float64, burst int, idleTTL time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow reports whether one more event for key may happen now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	if rl.idleTTL > 0 && now.Sub(rl.lastSweep) >= rl.idleTTL {
		for k, e := range rl.entries {
			if now.Sub(e.lastSeen) >= rl.idleTTL {
				delete(rl.entries, k)
			}
		}
		rl.lastSweep = now
	}
	e, ok := rl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = e
	}
	e.lastSeen = now
	rl.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.entries)
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if k != "" && !rl.Allow(k) {
			slog.Warn("rate limit exceeded", "key", k, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
