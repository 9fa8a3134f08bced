// Package kvutil opens the JetStream KV bucket that holds a shared roster.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// DefaultOpenAttempts is used when callers pass a non-positive attempt count.
	DefaultOpenAttempts = 3

	openRetryDelay    = 25 * time.Millisecond
	openRetryMaxDelay = 500 * time.Millisecond
)

// RosterBucket returns the bucket configuration for a roster: one value per
// person and no history, since only the current roster is ever read.
func RosterBucket(name string) jetstream.KeyValueConfig {
	return jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "grouper roster",
		History:     1,
	}
}

// OpenRosterBucket binds to the named roster bucket, creating it when missing.
//
// Instances started together may race to create the bucket; the loser binds
// to the winner's bucket. Transient failures are retried with a doubling
// delay capped at 500ms.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - name: Bucket name
//   - attempts: Maximum number of attempts (DefaultOpenAttempts if <= 0)
//
// Returns:
//   - jetstream.KeyValue: The roster bucket
//   - error: The last failure, joined with the context error when cancelled
//
// Example:
//
//	kv, err := kvutil.OpenRosterBucket(ctx, js, "grouper-roster", 0)
func OpenRosterBucket(ctx context.Context, js jetstream.JetStream, name string, attempts int) (jetstream.KeyValue, error) {
	if attempts <= 0 {
		attempts = DefaultOpenAttempts
	}

	cfg := RosterBucket(name)
	delay := openRetryDelay

	for attempt := 1; ; attempt++ {
		kv, err := bindOrCreate(ctx, js, cfg)
		if err == nil {
			return kv, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("roster bucket %q: %w", name, errors.Join(err, ctx.Err()))
		}
		if attempt == attempts {
			return nil, fmt.Errorf("roster bucket %q unavailable after %d attempt(s): %w", name, attempts, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("roster bucket %q: %w", name, errors.Join(err, ctx.Err()))
		case <-timer.C:
		}
		delay = min(2*delay, openRetryMaxDelay)
	}
}

func bindOrCreate(ctx context.Context, js jetstream.JetStream, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, cfg.Bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}

	kv, err = js.CreateKeyValue(ctx, cfg)
	if errors.Is(err, jetstream.ErrBucketExists) {
		return js.KeyValue(ctx, cfg.Bucket)
	}

	return kv, err
}
