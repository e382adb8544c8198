// Package resilience supplies the rate limiting, circuit breaking, and
// retry infrastructure shared by the Walk-Forward Executor's backend
// dispatch and the persona/rationale LLM dispatch (spec §5 and §6).
package resilience

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
	"golang.org/x/time/rate"
)

// Limiter bounds the rate of calls to a single external resource (a
// backtest backend or an LLM provider). Wait blocks until a token is
// available or ctx is done.
type Limiter interface {
	Wait(ctx context.Context) error
}

// memoryLimiter wraps golang.org/x/time/rate for the single-process
// default (internal/config.RateLimit.Store == "memory").
type memoryLimiter struct {
	limiter *rate.Limiter
}

// NewMemoryLimiter builds a token-bucket limiter local to this process.
func NewMemoryLimiter(ratePerSecond float64, burst int) Limiter {
	return &memoryLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (m *memoryLimiter) Wait(ctx context.Context) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeRateLimit, "waiting for rate limit token")
	}
	return nil
}

// redisLimiter shares a fixed-window counter across worker processes,
// for deployments where multiple researchkit processes dispatch against
// the same backend or LLM quota. Each window is 1/ratePerSecond
// seconds wide (one second when ratePerSecond <= 0), holding up to
// burst requests; INCR's atomicity is what makes sharing
// the counter across processes safe without a Lua script.
type redisLimiter struct {
	client        redis.Cmdable
	key           string
	ratePerSecond float64
	burst         int
}

// NewRedisLimiter builds a limiter sharing its bucket state in Redis
// under key, for internal/config.RateLimit.Store == "redis".
func NewRedisLimiter(client redis.Cmdable, key string, ratePerSecond float64, burst int) Limiter {
	return &redisLimiter{client: client, key: key, ratePerSecond: ratePerSecond, burst: burst}
}

func (r *redisLimiter) Wait(ctx context.Context) error {
	windowsPerSecond := r.ratePerSecond
	if windowsPerSecond <= 0 {
		windowsPerSecond = 1
	}
	window := time.Duration(float64(time.Second) / windowsPerSecond)
	if window <= 0 {
		window = time.Millisecond
	}

	for {
		windowKey := r.key + ":" + formatWindow(time.Now(), window)
		count, err := r.client.Incr(ctx, windowKey).Result()
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrorTypeRateLimit, "incrementing redis rate-limit window")
		}
		if count == 1 {
			r.client.PExpire(ctx, windowKey, window*2)
		}
		if int(count) <= r.burst {
			return nil
		}

		select {
		case <-ctx.Done():
			return apperrors.Wrap(ctx.Err(), apperrors.ErrorTypeRateLimit, "context canceled waiting for redis rate limit")
		case <-time.After(window):
		}
	}
}

// formatWindow buckets now into a window-wide slot id, shared by every
// process racing for the same key within the same window.
func formatWindow(now time.Time, window time.Duration) string {
	slot := now.UnixNano() / window.Nanoseconds()
	return strconv.FormatInt(slot, 10)
}
