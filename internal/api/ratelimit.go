package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/attribution-engine/internal/pkg/httputil"
)

// RateLimiter applies a fixed-window per-client limit to the attribution
// endpoints using an atomic Redis Lua script. Attribution calculations are
// expensive, so admission control lives here rather than in the service.
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	script *redis.Script
}

// The script increments the window counter and sets its expiry on first use,
// avoiding the GET-check-INCR race.
const windowLimitLuaScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local current = redis.call("INCR", key)
if current == 1 then
    redis.call("EXPIRE", key, ttl)
end
if current > limit then
    return 0
end
return 1
`

// NewRateLimiter creates a limiter allowing limit requests per window per
// client IP.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  client,
		limit:  limit,
		window: window,
		script: redis.NewScript(windowLimitLuaScript),
	}
}

// Middleware enforces the limit. Redis outages fail open: an unreachable
// limiter must not take the attribution API down with it.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("ratelimit:attribution:%s:%d",
			r.RemoteAddr, time.Now().Unix()/int64(rl.window.Seconds()))

		allowed, err := rl.script.Run(r.Context(), rl.redis,
			[]string{key}, rl.limit, int(rl.window.Seconds())).Int()
		if err != nil {
			log.Printf("[api] rate limiter unavailable, failing open: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if allowed == 0 {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
