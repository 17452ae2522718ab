package throttle

import (
	"context"
	"sync"
	"time"
)

// LimiterConfig configures the token bucket.
type LimiterConfig struct {
	// Rate is the sustained number of operations allowed per second.
	// Default: 1 (the polite ceiling for public biodiversity APIs).
	Rate float64

	// Burst is the maximum burst size.
	// Default: 3
	Burst int
}

// Limiter is a token-bucket rate limiter shared across concurrent remote
// fetches. The zero value is not usable; construct with NewLimiter.
type Limiter struct {
	config LimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewLimiter creates a limiter with the given configuration.
func NewLimiter(config LimiterConfig) *Limiter {
	// Apply defaults
	if config.Rate <= 0 {
		config.Rate = 1
	}
	if config.Burst <= 0 {
		config.Burst = 3
	}
	return &Limiter{
		config:     config,
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}
}

// Allow reports whether one operation may proceed immediately.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or the context is done. Unlike a
// per-call sleep, waiters queue against the one shared budget, so N
// concurrent fetches spread out at the configured rate.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		l.mu.Lock()
		l.refillLocked()
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) / l.config.Rate * float64(time.Second))
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked()
	return l.tokens
}

func (l *Limiter) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(l.lastRefill)
	l.lastRefill = now

	l.tokens += elapsed.Seconds() * l.config.Rate
	if l.tokens > float64(l.config.Burst) {
		l.tokens = float64(l.config.Burst)
	}
}
