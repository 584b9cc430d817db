package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careloop/medassist/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Token bucket limiter
// ─────────────────────────────────────────────────────────────────────────────

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter is an in-memory per-key token bucket. Stale buckets are
// swept on a background interval so the map does not grow unbounded.
type TokenBucketLimiter struct {
	rate      float64
	burstSize int

	mu      sync.RWMutex
	buckets map[string]*tokenBucket

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewTokenBucketLimiter builds a limiter refilling rate tokens per second up
// to burstSize, sweeping idle buckets every cleanupInterval (0 disables the
// sweep).
func NewTokenBucketLimiter(rate float64, burstSize int, cleanupInterval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		rate:        rate,
		burstSize:   burstSize,
		buckets:     make(map[string]*tokenBucket),
		stopCleanup: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop(cleanupInterval)
	}
	return l
}

// Allow consumes one token for key, reporting whether the request may
// proceed and how many tokens remain.
func (l *TokenBucketLimiter) Allow(key string) (bool, int) {
	now := time.Now()

	l.mu.RLock()
	bucket, ok := l.buckets[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		bucket, ok = l.buckets[key]
		if !ok {
			bucket = &tokenBucket{tokens: float64(l.burstSize), lastRefill: now}
			l.buckets[key] = bucket
		}
		l.mu.Unlock()
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens += elapsed * l.rate
	if bucket.tokens > float64(l.burstSize) {
		bucket.tokens = float64(l.burstSize)
	}
	bucket.lastRefill = now

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		return true, int(bucket.tokens)
	}
	return false, 0
}

// Close stops the background sweep.
func (l *TokenBucketLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

func (l *TokenBucketLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(interval)
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *TokenBucketLimiter) cleanup(maxIdle time.Duration) {
	threshold := time.Now().Add(-maxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		bucket.mu.Lock()
		idle := bucket.lastRefill.Before(threshold)
		bucket.mu.Unlock()
		if idle {
			delete(l.buckets, key)
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// RateLimit limits requests per client IP using the given limiter. Paths in
// skip bypass the limit (health probes, metrics scrapes).
func RateLimit(limiter *TokenBucketLimiter, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		allowed, remaining := limiter.Allow(c.ClientIP())
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.burstSize))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    string(errors.ErrCodeTooManyRequests),
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
