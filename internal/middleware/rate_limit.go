package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/common"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
	"github.com/maosdefada/cakeshop-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	Requests  int           `yaml:"requests"`
	Window    time.Duration `yaml:"window"`
	KeyPrefix string        `yaml:"key_prefix"`
}

// DefaultRateLimitConfig five submissions a minute per shopper
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests:  5,
		Window:    time.Minute,
		KeyPrefix: "ratelimit:orders:",
	}
}

// rateLimitScript is an atomic Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local window_start = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, math.ceil(window / 1000) + 1)
    return {1, limit - count - 1, 0}
else
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local reset_at = 0
    if #oldest >= 2 then
        reset_at = tonumber(oldest[2]) + window
    end
    return {0, 0, reset_at}
end
`)

// RateLimit sliding-window limiter keyed by shopper id (client IP when the
// shopper is unknown). Redis errors let the request through.
func RateLimit(client redis.Scripter, cfg RateLimitConfig, bundle *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		subject := GetShopperID(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		key := cfg.KeyPrefix + subject

		now := time.Now().UnixMilli()
		windowMs := cfg.Window.Milliseconds()

		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key},
			cfg.Requests, windowMs, now,
		).Int64Slice()
		if err != nil || len(result) < 3 {
			logger.GetLogger().Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		allowed := result[0] == 1
		remaining := result[1]
		resetAt := result[2]

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			retryAfter := (resetAt - now) / 1000
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt/1000))
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			msg := "too many requests"
			if bundle != nil {
				msg = bundle.T(GetLocale(c), "error.too_many_requests")
			}
			common.ErrorResponse(c, http.StatusTooManyRequests, msg, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
