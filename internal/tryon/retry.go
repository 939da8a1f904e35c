package tryon

import (
	"context"
	"strings"
	"time"

	"fitroom/internal/domain"
)

// Policy drives the rate-limit retry loop around generation calls. Sleep is
// injectable so tests can count induced delays without waiting them out.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy mirrors the service defaults: 3 attempts, 16s between them.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 16 * time.Second}
}

var rateLimitSignals = []string{"quota", "429", "rate limit"}

// IsRateLimited reports whether err carries a rate-limit signal from the
// generation service. It is a pure classifier; the retry driver decides what
// to do with the answer.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, signal := range rateLimitSignals {
		if strings.Contains(msg, signal) {
			return true
		}
	}
	return false
}

// run invokes fn up to MaxAttempts times, sleeping Delay between attempts
// that failed with a rate-limit signal. Any other error is terminal and
// returned as-is. Exhausted retries surface the last rate-limit error
// classified as rate_limited.
func (p Policy) run(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRateLimited(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		if err := p.sleep(ctx); err != nil {
			return err
		}
	}
	return domain.Wrap(domain.KindRateLimited,
		"the generation service is throttling requests, try again later", lastErr)
}

func (p Policy) sleep(ctx context.Context) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Delay)
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
