package middleware

import (
	"net/http"
	"sync"
	"time"
)

// sweepEvery bounds how often the limiter scans its bucket map for idle
// entries. Sweeping inline on Allow keeps the limiter goroutine-free.
const sweepEvery = 10 * time.Minute

// RateLimiter provides per-IP rate limiting using a token bucket algorithm.
// The tracking beacon fires on every page navigation, so the public tracking
// route carries one of these.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      float64 // tokens per second
	burst     float64
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter creates a rate limiter allowing rate requests/sec with the
// given burst size per IP.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets:   make(map[string]*bucket),
		rate:      rate,
		burst:     float64(burst),
		lastSweep: time.Now(),
	}
}

// Allow reports whether a request from ip fits within the limit right now.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweep(now)

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.burst}
		rl.buckets[ip] = b
	} else {
		b.tokens += now.Sub(b.seen).Seconds() * rl.rate
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets idle long enough to have refilled to full anyway.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < sweepEvery {
		return
	}
	rl.lastSweep = now
	for ip, b := range rl.buckets {
		if now.Sub(b.seen) > sweepEvery {
			delete(rl.buckets, ip)
		}
	}
}

// RateLimit returns an HTTP middleware that rejects requests exceeding the
// configured rate with 429 Too Many Requests.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// Prefer X-Real-Ip set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
