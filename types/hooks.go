package types

import "context"

// Hooks defines callbacks for Service lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// so a slow hook never delays a shuffle or an HTTP response. Hooks receive the
// service's lifecycle context which is cancelled during shutdown.
//
// Hook execution behavior:
//   - Hooks may still be running when Stop() returns
//   - Hook errors are logged but never fail service operations
//
// Example:
//
//	hooks := &grouper.Hooks{
//	    OnGroupsFormed: func(ctx context.Context, groups []grouper.Group) error {
//	        return audit.Record(ctx, groups)
//	    },
//	}
type Hooks struct {
	// OnRosterLoaded is called after every successful roster load.
	OnRosterLoaded func(ctx context.Context, people []Person) error

	// OnGroupsFormed is called after every partition pass.
	OnGroupsFormed func(ctx context.Context, groups []Group) error

	// OnError is called when a roster load fails.
	OnError func(ctx context.Context, err error) error
}
