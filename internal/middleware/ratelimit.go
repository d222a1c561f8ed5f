package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/model"
	"storefront/internal/response"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts hits per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a fixed-window counter. A key that exceeds the limit is blocked
// for the block duration, independent of the window.
type RedisLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	block  time.Duration
}

// NewRedisLimiter creates a limiter allowing limit hits per window.
func NewRedisLimiter(rdb redis.Cmdable, limit int, window, block time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, block: block}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	blockKey := key + ":blocked"

	ttl, err := l.rdb.TTL(ctx, blockKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read block: %w", err)
	}
	if ttl > 0 {
		return Decision{Limit: l.limit, RetryAfter: ttl}, nil
	}

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count hit: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("failed to set window: %w", err)
		}
	}

	if count > int64(l.limit) {
		if err := l.rdb.Set(ctx, blockKey, "1", l.block).Err(); err != nil {
			return Decision{}, fmt.Errorf("failed to set block: %w", err)
		}
		return Decision{Limit: l.limit, RetryAfter: l.block}, nil
	}

	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - int(count)}, nil
}

// RateLimit limits requests per client IP under prefix. A nil limiter disables it.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, prefix string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + prefix + ":ip:" + clientIP(r)

			d, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			if !d.Allowed {
				retry := int(d.RetryAfter.Round(time.Second).Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				logger.Info().Str("key", key).Int("retry_after", retry).Msg("rate limit exceeded")
				response.Error(w, http.StatusTooManyRequests, model.ErrCodeRateLimited,
					"Too many attempts, try again in "+d.RetryAfter.Round(time.Second).String())
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. chi's RealIP runs earlier in the chain.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
