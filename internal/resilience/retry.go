// Package resilience guards calls to external providers with retries and
// circuit breakers.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls retries with exponential backoff and jitter.
type Policy struct {
	Attempts  int           // total tries including the first; default 3
	BaseDelay time.Duration // delay before the first retry; default 250ms
	MaxDelay  time.Duration // backoff cap; default 5s
	Jitter    float64       // ±fraction of the delay; default 0.2

	// Retryable overrides IsTransient.
	Retryable func(error) bool
}

// DefaultPolicy suits interactive request paths: few attempts, short waits.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Jitter:    0.2,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.Attempts <= 0 {
		p.Attempts = d.Attempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Retryable == nil {
		p.Retryable = IsTransient
	}
	return p
}

// delay returns the backoff before retry number n (0-based).
func (p Policy) delay(n int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(2, float64(n))
	d = math.Min(d, float64(p.MaxDelay))
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	return time.Duration(math.Max(d, 0))
}

// Retry runs fn until it succeeds, returns a non-retryable error, the
// attempts run out, or ctx is done. op names the call in retry logs.
func Retry[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	var err error
	for attempt := 1; ; attempt++ {
		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !p.Retryable(err) || attempt >= p.Attempts {
			return zero, err
		}

		zap.L().Warn("resilience: retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		t := time.NewTimer(p.delay(attempt - 1))
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, err
		case <-t.C:
		}
	}
}
