package hooks

import (
	"context"

	"github.com/arloliu/grouper/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, []types.Person) error = (*NopHooks)(nil).OnRosterLoaded
	_ func(context.Context, []types.Group) error  = (*NopHooks)(nil).OnGroupsFormed
	_ func(context.Context, error) error          = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnRosterLoaded: h.OnRosterLoaded,
		OnGroupsFormed: h.OnGroupsFormed,
		OnError:        h.OnError,
	}
}

// FillDefaults returns a copy of hooks with every nil callback replaced by a no-op.
func FillDefaults(h *types.Hooks) types.Hooks {
	out := NewNop()
	if h == nil {
		return out
	}
	if h.OnRosterLoaded != nil {
		out.OnRosterLoaded = h.OnRosterLoaded
	}
	if h.OnGroupsFormed != nil {
		out.OnGroupsFormed = h.OnGroupsFormed
	}
	if h.OnError != nil {
		out.OnError = h.OnError
	}

	return out
}

// OnRosterLoaded is a no-op implementation.
func (h *NopHooks) OnRosterLoaded(ctx context.Context, people []types.Person) error {
	return nil
}

// OnGroupsFormed is a no-op implementation.
func (h *NopHooks) OnGroupsFormed(ctx context.Context, groups []types.Group) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(ctx context.Context, err error) error {
	return nil
}
