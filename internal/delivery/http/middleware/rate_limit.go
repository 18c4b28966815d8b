package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-recruiter-backend/internal/delivery/http/response"
	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/audit"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for one limited route group
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Key prefix, also used to keep route groups apart in the fallback store
	KeyPrefix string
	// Custom key extractor (default: user id, then client IP)
	KeyFunc func(*gin.Context) string
	// Whether to fail closed (reject) when Redis is unavailable
	FailClosed bool
}

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
var rateLimitScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`)

// RateLimiter counts requests in Redis when a client is configured and in
// process memory otherwise or when Redis errors.
type RateLimiter struct {
	client goredis.UniversalClient
	store  sync.Map
	audit  *audit.Logger
	log    *slog.Logger
	now    func() time.Time
}

func NewRateLimiter(client goredis.UniversalClient, auditLog *audit.Logger, log *slog.Logger) *RateLimiter {
	return &RateLimiter{client: client, audit: auditLog, log: log, now: time.Now}
}

// UserOrIPKey limits authenticated callers by uid and everyone else by IP.
func UserOrIPKey(c *gin.Context) string {
	if uid := c.GetString(string(domain.KeyUserID)); uid != "" {
		return "uid:" + uid
	}
	return "ip:" + c.ClientIP()
}

// Limit returns a middleware enforcing config.
func (rl *RateLimiter) Limit(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = UserOrIPKey
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)

		var (
			count   int
			resetAt time.Time
			err     error
		)
		if rl.client != nil {
			count, resetAt, err = rl.checkRedis(c.Request.Context(), fullKey, config)
			if err != nil {
				rl.log.Warn("rate limit store unavailable", "key_prefix", config.KeyPrefix, "error", err)
				if config.FailClosed {
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = rl.checkInMemory(fullKey, config)
			}
		} else {
			count, resetAt = rl.checkInMemory(fullKey, config)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(resetAt.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			rl.audit.Log(c.Request.Context(), audit.Event{
				Type:         audit.EventRateLimitTriggered,
				SubjectType:  "ip",
				SubjectValue: c.ClientIP(),
				RequestID:    c.GetString(string(domain.KeyRequestID)),
				Details:      map[string]any{"endpoint": c.FullPath(), "limit": config.Limit},
			})

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

// checkRedis checks rate limit using Redis with atomic Lua script
func (rl *RateLimiter) checkRedis(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	vals, err := rateLimitScript.Run(ctx, rl.client, []string{key}, ttlSeconds).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	if len(vals) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	return int(vals[0]), rl.now().Add(time.Duration(vals[1]) * time.Second), nil
}

// checkInMemory checks rate limit using the in-memory store (fallback)
func (rl *RateLimiter) checkInMemory(key string, config RateLimitConfig) (int, time.Time) {
	now := rl.now()
	entryI, _ := rl.store.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(config.Window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(config.Window)
	}
	entry.count++

	return entry.count, entry.resetAt
}

// RunCleanup drops expired in-memory entries every interval until ctx ends.
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *RateLimiter) prune() {
	now := rl.now()
	rl.store.Range(func(key, value any) bool {
		entry := value.(*rateLimitEntry)
		entry.mu.Lock()
		if now.After(entry.resetAt) {
			rl.store.Delete(key)
		}
		entry.mu.Unlock()
		return true
	})
}
