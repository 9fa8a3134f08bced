package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/grouper/types"
)

// pollInterval is how often state is sampled while waiting.
const pollInterval = 10 * time.Millisecond

// StateReader defines the subset of Service methods needed for waiting.
// This allows the helper to work with both real services and test doubles.
type StateReader interface {
	// State returns the current roster state.
	State() types.RosterState
}

// WaitState polls r until it reports the expected state.
//
// Parameters:
//   - ctx: Context for cancellation
//   - r: Service to watch
//   - expected: Target roster state
//   - timeout: Maximum time to wait
//
// Returns:
//   - error: nil once the state is reached, a timeout or context error otherwise
func WaitState(ctx context.Context, r StateReader, expected types.RosterState, timeout time.Duration) error {
	if r.State() == expected {
		return nil
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("timed out after %v waiting for %s, last state %s", timeout, expected, r.State())
		case <-ticker.C:
			if r.State() == expected {
				return nil
			}
		}
	}
}

// WaitAllState waits for all services to reach the expected state.
//
// If any service fails to reach the state within the timeout, the function
// returns the first error encountered and stops the other waits. If the
// context is canceled, all waits are abandoned and the context error is
// returned.
//
// Example:
//
//	err := testutil.WaitAllState(ctx, []testutil.StateReader{svc1, svc2}, types.RosterStateLoaded, 5*time.Second)
//	require.NoError(t, err, "every service should load the shared roster")
func WaitAllState(ctx context.Context, readers []StateReader, expected types.RosterState, timeout time.Duration) error {
	if len(readers) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(len(readers))
	for i, r := range readers {
		go func(index int, r StateReader) {
			defer wg.Done()

			if err := WaitState(waitCtx, r, expected, timeout); err != nil && !errors.Is(err, context.Canceled) {
				errOnce.Do(func() {
					firstErr = fmt.Errorf("service[%d]: %w", index, err)
					cancel()
				})
			}
		}(i, r)
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	return ctx.Err()
}
