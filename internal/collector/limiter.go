package collector

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	minBackoff = 100 * time.Millisecond
	maxBackoff = 2 * time.Minute
)

// Limiter paces outbound quote requests and backs off after a 429.
type Limiter struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	backoff time.Duration
	penalty time.Time
}

// NewLimiter allows perMinute requests per minute. Zero or less disables pacing.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1), backoff: minBackoff}
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	if burst > 5 {
		burst = 5
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
		backoff: minBackoff,
	}
}

// Wait blocks until a token is available, any active penalty has expired,
// or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	until := time.Until(l.penalty)
	l.mu.Unlock()
	if until > 0 {
		t := time.NewTimer(until)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return l.limiter.Wait(ctx)
}

// SignalRateLimited doubles the backoff and holds new requests for it.
func (l *Limiter) SignalRateLimited() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.penalty = time.Now().Add(l.backoff)
	l.backoff *= 2
	if l.backoff > maxBackoff {
		l.backoff = maxBackoff
	}
}

// ResetBackoff is called after a successful request.
func (l *Limiter) ResetBackoff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backoff = minBackoff
}

// Backoff returns the penalty the next 429 would impose.
func (l *Limiter) Backoff() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backoff
}
