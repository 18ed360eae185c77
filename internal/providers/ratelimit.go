package providers

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket refilled continuously at a per-minute rate.
type RateLimiter struct {
	mu         sync.Mutex
	perMinute  int
	tokens     float64
	lastUpdate time.Time
}

// NewRateLimiter creates a full bucket allowing requestsPerMinute calls.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &RateLimiter{
		perMinute:  requestsPerMinute,
		tokens:     float64(requestsPerMinute),
		lastUpdate: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens >= 1.0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		wait := time.Duration((1.0 - r.tokens) / r.rate() * float64(time.Second))
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// TryConsume takes a token without blocking.
func (r *RateLimiter) TryConsume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	if r.tokens >= 1.0 {
		r.tokens--
		return true
	}
	return false
}

// tokens per second
func (r *RateLimiter) rate() float64 {
	return float64(r.perMinute) / 60.0
}

// refill must be called with the lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastUpdate).Seconds() * r.rate()
	r.lastUpdate = now
	if r.tokens > float64(r.perMinute) {
		r.tokens = float64(r.perMinute)
	}
}

type rateLimited struct {
	next    Transport
	limiter *RateLimiter
}

// RateLimited wraps t so every call first takes a token from limiter.
func RateLimited(t Transport, limiter *RateLimiter) Transport {
	return &rateLimited{next: t, limiter: limiter}
}

func (r *rateLimited) Complete(ctx context.Context, req *ChatRequest) (*ChatCompletion, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Err: err}
	}
	return r.next.Complete(ctx, req)
}
