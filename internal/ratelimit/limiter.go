// Package ratelimit paces outbound catalog API calls with a token bucket.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RateLimiter implements a token bucket rate limiter.
// It allows bursts up to maxTokens, then refills at refillRate tokens/second.
// A cooldown (set after the server answers 429) blocks all callers until it expires.
type RateLimiter struct {
	tokens        float64
	maxTokens     float64
	refillRate    float64
	lastRefill    time.Time
	cooldownUntil time.Time
	lastWarnTime  time.Time
	logger        zerolog.Logger
	mu            sync.Mutex
}

// NewRateLimiter creates a new rate limiter that starts with a full bucket.
//
// Parameters:
//   - tokensPerSecond: Rate at which tokens are added
//   - burstSize: Maximum tokens that can accumulate
func NewRateLimiter(tokensPerSecond float64, burstSize float64) *RateLimiter {
	return &RateLimiter{
		tokens:     burstSize,
		maxTokens:  burstSize,
		refillRate: tokensPerSecond,
		lastRefill: time.Now(),
		logger:     zerolog.Nop(),
	}
}

// SetLogger routes wait warnings to the given logger.
func (rl *RateLimiter) SetLogger(l zerolog.Logger) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.logger = l
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	startTime := time.Now()

	if rl.CooldownRemaining() == 0 && rl.tryAcquire() {
		return nil
	}

	rl.warnIfSlow()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if cooldown := rl.CooldownRemaining(); cooldown > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cooldown):
			}
			continue
		}

		if rl.tryAcquire() {
			if waited := time.Since(startTime); waited > 5*time.Second {
				rl.logger.Info().Dur("waited", waited).Msg("Rate limit wait completed")
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.timeUntilNextToken()):
		}
	}
}

func (rl *RateLimiter) warnIfSlow() {
	wait := rl.timeUntilNextToken()
	if c := rl.CooldownRemaining(); c > wait {
		wait = c
	}
	if wait <= 2*time.Second {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	// At most one warning every 10 seconds
	if time.Since(rl.lastWarnTime) > 10*time.Second {
		rl.logger.Warn().Msgf("Rate limited: waiting ~%.1fs for API capacity", wait.Seconds())
		rl.lastWarnTime = time.Now()
	}
}

// tryAcquire attempts to take one token without blocking.
func (rl *RateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked(time.Now())

	if rl.tokens >= 1.0 {
		rl.tokens -= 1.0
		return true
	}
	return false
}

func (rl *RateLimiter) refillLocked(now time.Time) {
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}

// timeUntilNextToken calculates how long until at least one token is available.
func (rl *RateLimiter) timeUntilNextToken() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	tokensNeeded := 1.0 - rl.tokens
	if tokensNeeded <= 0 {
		return 0
	}
	return time.Duration(tokensNeeded / rl.refillRate * float64(time.Second))
}

// Drain empties the bucket so the next caller waits for a refill.
func (rl *RateLimiter) Drain() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = 0
	rl.lastRefill = time.Now()
}

// SetCooldown blocks Wait for d. A shorter cooldown never cuts an active one short.
func (rl *RateLimiter) SetCooldown(d time.Duration) {
	if d <= 0 {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	until := time.Now().Add(d)
	if until.After(rl.cooldownUntil) {
		rl.cooldownUntil = until
	}
}

// CooldownRemaining returns how long the active cooldown lasts, or 0.
func (rl *RateLimiter) CooldownRemaining() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	remaining := time.Until(rl.cooldownUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetCurrentTokens returns the current number of tokens (for testing/debugging).
func (rl *RateLimiter) GetCurrentTokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	elapsed := time.Since(rl.lastRefill).Seconds()
	tokens := rl.tokens + elapsed*rl.refillRate
	if tokens > rl.maxTokens {
		tokens = rl.maxTokens
	}
	return tokens
}
