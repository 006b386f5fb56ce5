package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

const defaultPerMinute = 600

// RateLimiter allows PerWindow requests per token subject in fixed windows.
// Requests without a subject are not limited; Auth rejects them first.
type RateLimiter struct {
	perWindow int
	window    time.Duration

	mu      sync.Mutex
	buckets *cache.Cache

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	used    int
	resetAt time.Time
}

// NewRateLimiter builds a limiter; a non-positive perWindow falls back to
// 600 and a zero window to one minute.
func NewRateLimiter(perWindow int, window time.Duration) *RateLimiter {
	if perWindow <= 0 {
		perWindow = defaultPerMinute
	}
	if window <= 0 {
		window = time.Minute
	}

	rl := &RateLimiter{
		perWindow: perWindow,
		window:    window,
		buckets:   cache.New(window, cache.NoExpiration),
		stop:      make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Handler returns the Fiber middleware.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject, _ := c.Locals(LocalSubject).(string)
		if subject == "" {
			return c.Next()
		}

		b := rl.take(subject, time.Now())
		remaining := rl.perWindow - b.used
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.perWindow))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", b.resetAt.UTC().Format(time.RFC3339))

		if b.used > rl.perWindow {
			retry := int(time.Until(b.resetAt).Seconds()) + 1
			c.Set("Retry-After", strconv.Itoa(retry))
			return domain.ErrRateLimitExceeded
		}
		return c.Next()
	}
}

// take counts one request for subject and returns a copy of its bucket.
func (rl *RateLimiter) take(subject string, now time.Time) bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.buckets.Get(subject); ok {
		b := v.(*bucket)
		if now.Before(b.resetAt) {
			b.used++
			return *b
		}
	}

	b := &bucket{used: 1, resetAt: now.Add(rl.window)}
	rl.buckets.Set(subject, b, rl.window)
	return *b
}

// sweep evicts expired buckets until Stop.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(2 * rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.buckets.DeleteExpired()
		}
	}
}
