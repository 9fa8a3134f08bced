package source

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"time"

	"github.com/arloliu/grouper/types"
)

// Retry defaults.
const (
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = 100 * time.Millisecond
	DefaultRetryMaxDelay  = 2 * time.Second
	retryMultiplier       = 3.0
)

// RetryConfig controls Retry.
type RetryConfig struct {
	// Attempts is the total number of calls, including the first one.
	Attempts int
	// BaseDelay is the first delay and the lower bound of every delay.
	BaseDelay time.Duration
	// MaxDelay caps a single delay.
	MaxDelay time.Duration
	// Seed makes the jitter deterministic when non-zero.
	Seed uint64
}

// Retry wraps a roster provider and retries failed loads with decorrelated
// jitter backoff.
//
// Errors that cannot go away by retrying are returned immediately: invalid
// rows (types.ErrInvalidPerson), invalid configuration, a missing roster
// file, and context cancellation.
type Retry struct {
	provider types.RosterProvider
	cfg      RetryConfig
	rng      jitterSource
}

type jitterSource interface {
	Int64N(n int64) int64
}

type globalRand struct{}

func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) } //nolint:gosec // non-crypto backoff jitter

var _ types.RosterProvider = (*Retry)(nil)

// NewRetry creates a retrying roster provider.
//
// Parameters:
//   - provider: Underlying provider
//   - cfg: Attempts and delays; zero values take the defaults
//
// Returns:
//   - *Retry: Retrying provider
//
// Example:
//
//	src := source.NewRetry(notion, source.RetryConfig{Attempts: 5})
func NewRetry(provider types.RosterProvider, cfg RetryConfig) *Retry {
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultRetryAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultRetryBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultRetryMaxDelay
	}

	r := &Retry{provider: provider, cfg: cfg, rng: globalRand{}}
	if cfg.Seed != 0 {
		r.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec
	}

	return r
}

// ListPeople calls the wrapped provider until it succeeds, the error is
// permanent, the attempts run out or ctx is done. The last error is returned.
func (r *Retry) ListPeople(ctx context.Context) ([]types.Person, error) {
	var (
		delay time.Duration
		err   error
	)

	for attempt := 1; ; attempt++ {
		var people []types.Person
		people, err = r.provider.ListPeople(ctx)
		if err == nil {
			return people, nil
		}
		if attempt >= r.cfg.Attempts || !retryable(err) {
			return nil, err
		}

		delay = r.next(delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

// Invalidate forwards to the wrapped provider when it caches.
func (r *Retry) Invalidate() {
	if inv, ok := r.provider.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
}

// Unwrap returns the wrapped provider.
func (r *Retry) Unwrap() types.RosterProvider {
	return r.provider
}

// next computes the delay after prev:
//
//	next = min(max, base + rand[0, prev*multiplier-base))
//
// The first delay is base.
func (r *Retry) next(prev time.Duration) time.Duration {
	base, capDur := r.cfg.BaseDelay, r.cfg.MaxDelay
	if capDur < base {
		return capDur
	}
	if prev <= 0 {
		return base
	}

	span := time.Duration(float64(prev)*retryMultiplier) - base
	if span <= 0 {
		span = base
	}

	next := base + time.Duration(r.rng.Int64N(int64(span)))
	if next > capDur {
		return capDur
	}

	return next
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, types.ErrInvalidPerson), errors.Is(err, types.ErrInvalidConfig):
		return false
	case errors.Is(err, os.ErrNotExist):
		return false
	default:
		return true
	}
}
