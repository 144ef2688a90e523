// Package backoff computes retry delays with decorrelated jitter.
package backoff

import (
	"context"
	rand "math/rand/v2"
	"time"
)

// Jitter returns the next delay after prev using decorrelated jitter with a cap.
//
//	next = min(cap, base + rand(prev*mult - base))
//
// Behavior:
//   - prev <= 0 starts from base
//   - mult < 1.0 is treated as 1.0
//   - capDur > 0 bounds every result
//
// A nil rng uses the package-level generator.
func Jitter(prev, base time.Duration, mult float64, capDur time.Duration, rng *rand.Rand) time.Duration {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if mult < 1.0 {
		mult = 1.0
	}
	if capDur > 0 && capDur < base {
		return capDur
	}
	if prev <= 0 {
		return base
	}

	spread := time.Duration(float64(prev)*mult) - base
	if spread <= 0 {
		spread = base
	}

	var jitter int64
	if rng != nil {
		jitter = rng.Int64N(int64(spread))
	} else {
		jitter = rand.Int64N(int64(spread)) //nolint:gosec // non-crypto backoff jitter
	}

	next := base + time.Duration(jitter)
	if capDur > 0 && next > capDur {
		return capDur
	}

	return next
}

// NewRNG returns a deterministic generator for a non-zero seed, or nil.
//
//nolint:gosec
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	s1 := uint64(seed)

	return rand.New(rand.NewPCG(s1, s1^0x9e3779b97f4a7c15))
}

// Policy describes a bounded retry loop.
type Policy struct {
	Attempts   int
	Base       time.Duration
	Multiplier float64
	Cap        time.Duration
	RNG        *rand.Rand
}

// DefaultPolicy retries three times between 50ms and 1s.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Base: 50 * time.Millisecond, Multiplier: 3.0, Cap: time.Second}
}

// Retry calls fn until it succeeds, the attempts run out or ctx ends.
//
// Returns the last error from fn, or the context error when ctx ends first.
func Retry(ctx context.Context, p Policy, fn func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		err   error
		delay time.Duration
	)
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= attempts {
			return err
		}

		delay = Jitter(delay, p.Base, p.Multiplier, p.Cap, p.RNG)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
