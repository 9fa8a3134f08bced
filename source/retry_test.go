package source

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/grouper/types"
)

// flakyProvider fails a fixed number of times before succeeding.
type flakyProvider struct {
	calls    atomic.Int32
	failures int32
	err      error
}

func (p *flakyProvider) ListPeople(_ context.Context) ([]types.Person, error) {
	if p.calls.Add(1) <= p.failures {
		return nil, p.err
	}

	return DefaultRoster(), nil
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{Attempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Seed: 42}
}

func TestRetry_ListPeople(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		inner := &flakyProvider{failures: 2, err: types.ErrConnectivity}
		src := NewRetry(inner, fastRetry(3))

		people, err := src.ListPeople(ctx)
		require.NoError(t, err)
		require.Len(t, people, 12)
		require.Equal(t, int32(3), inner.calls.Load())
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		boom := errors.New("503 from upstream")
		inner := &flakyProvider{failures: 10, err: boom}
		src := NewRetry(inner, fastRetry(4))

		_, err := src.ListPeople(ctx)
		require.ErrorIs(t, err, boom)
		require.Equal(t, int32(4), inner.calls.Load())
	})

	t.Run("single attempt never retries", func(t *testing.T) {
		inner := &flakyProvider{failures: 1, err: types.ErrConnectivity}
		src := NewRetry(inner, fastRetry(1))

		_, err := src.ListPeople(ctx)
		require.Error(t, err)
		require.Equal(t, int32(1), inner.calls.Load())
	})

	permanent := []error{
		fmt.Errorf("row 3: %w", types.ErrInvalidPerson),
		fmt.Errorf("open roster: %w", os.ErrNotExist),
		types.ErrInvalidConfig,
		context.Canceled,
	}
	for _, perm := range permanent {
		t.Run("does not retry "+perm.Error(), func(t *testing.T) {
			inner := &flakyProvider{failures: 10, err: perm}
			src := NewRetry(inner, fastRetry(5))

			_, err := src.ListPeople(ctx)
			require.ErrorIs(t, err, perm)
			require.Equal(t, int32(1), inner.calls.Load())
		})
	}

	t.Run("stops waiting when the context ends", func(t *testing.T) {
		inner := &flakyProvider{failures: 10, err: types.ErrConnectivity}
		src := NewRetry(inner, RetryConfig{Attempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour})

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err := src.ListPeople(cctx)
		require.ErrorIs(t, err, types.ErrConnectivity)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Equal(t, int32(1), inner.calls.Load())
	})
}

func TestRetry_Backoff(t *testing.T) {
	src := NewRetry(&flakyProvider{}, RetryConfig{
		BaseDelay: 10 * time.Millisecond,
		MaxDelay:  200 * time.Millisecond,
	})
	src.rng = rand.New(rand.NewPCG(1, 2))

	require.Equal(t, 10*time.Millisecond, src.next(0))

	prev := time.Duration(0)
	for range 50 {
		d := src.next(prev)
		require.GreaterOrEqual(t, d, 10*time.Millisecond)
		require.LessOrEqual(t, d, 200*time.Millisecond)
		prev = d
	}

	t.Run("cap below base", func(t *testing.T) {
		r := NewRetry(&flakyProvider{}, RetryConfig{BaseDelay: time.Second, MaxDelay: time.Millisecond})
		require.Equal(t, time.Millisecond, r.next(0))
	})
}

func TestRetry_Invalidate(t *testing.T) {
	inner := &countingProvider{people: DefaultRoster()}
	cached := NewCached(inner, time.Hour)
	src := NewRetry(cached, RetryConfig{})

	_, err := src.ListPeople(context.Background())
	require.NoError(t, err)
	src.Invalidate()
	_, err = src.ListPeople(context.Background())
	require.NoError(t, err)

	require.Equal(t, int32(2), inner.calls.Load())
	require.Same(t, cached, src.Unwrap())
}
