package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
)

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// MaxKeys bounds the number of tracked clients. Idle buckets are
	// evicted after IdleTTL or when the cache is full.
	MaxKeys int
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns sensible defaults: 100 req/s with a burst
// of 200.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
		MaxKeys:           10000,
		IdleTTL:           10 * time.Minute,
	}
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
}

func newTokenBucket(rate float64, burst int, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: now,
	}
}

// take reports whether a token was available and, if not, how many
// seconds until one will be.
func (b *tokenBucket) take(now time.Time) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Refill for the time elapsed since the last request, capped at burst.
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.refillRate <= 0 {
		return false, 1
	}
	// Whole seconds until the bucket holds one token again.
	wait := int(math.Ceil((1 - b.tokens) / b.refillRate))
	if wait < 1 {
		wait = 1
	}
	return false, wait
}

type bucketStore struct {
	mu      sync.Mutex
	buckets *expirable.LRU[string, *tokenBucket]
	cfg     RateLimitConfig
	now     func() time.Time
}

func newBucketStore(cfg RateLimitConfig) *bucketStore {
	def := DefaultRateLimitConfig()
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = def.MaxKeys
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	return &bucketStore{
		buckets: expirable.NewLRU[string, *tokenBucket](cfg.MaxKeys, nil, cfg.IdleTTL),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *bucketStore) bucket(key string) *tokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets.Get(key); ok {
		return b
	}
	b := newTokenBucket(s.cfg.RequestsPerSecond, s.cfg.BurstSize, s.now())
	s.buckets.Add(key, b)
	return b
}

// RateLimit limits requests per client IP within a tenant.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return rateLimit(newBucketStore(cfg))
}

func rateLimit(store *bucketStore) echo.MiddlewareFunc {
	limit := strconv.FormatFloat(store.cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Clients behind the same NAT may use several tenants; keep
			// their budgets apart.
			key := c.RealIP()
			if tenantID, ok := c.Get("tenant_id").(string); ok && tenantID != "" {
				key = tenantID + ":" + key
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)

			ok, retryAfter := store.bucket(key).take(store.now())
			if !ok {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "Request was throttled.")
			}
			return next(c)
		}
	}
}
