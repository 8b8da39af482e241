package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// TokenBucket allows bursts up to capacity while holding an average rate.
// Each request takes one token; tokens are earned back at refillRate per
// second.
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a full bucket. refillRate is in tokens per second.
func NewTokenBucket(capacity int64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Take consumes one token. It returns false and the wait until the next
// token when the bucket is empty.
func (tb *TokenBucket) Take() (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked(time.Now())

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}
	if tb.refillRate <= 0 {
		return false, 0
	}

	// Time left until the partially earned token completes.
	perToken := time.Duration(float64(time.Second) / tb.refillRate)
	wait := perToken - time.Since(tb.lastRefill)
	if wait < 0 {
		wait = 0
	}
	return false, wait
}

// Remaining returns the tokens currently available.
func (tb *TokenBucket) Remaining() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refillLocked(time.Now())
	return tb.tokens
}

// refillLocked adds the tokens earned since lastRefill. lastRefill only
// moves when at least one whole token was added, so fractions accumulate.
func (tb *TokenBucket) refillLocked(now time.Time) {
	earned := int64(now.Sub(tb.lastRefill).Seconds() * tb.refillRate)
	if earned <= 0 {
		return
	}
	tb.tokens += earned
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

// RateLimit answers 429 with a Retry-After header once bucket is empty.
// A nil bucket disables the limit.
func RateLimit(bucket *TokenBucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if bucket == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := bucket.Take()
			if !ok {
				seconds := int(math.Ceil(wait.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
