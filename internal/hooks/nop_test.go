package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/grouper/types"
)

func TestNewNop(t *testing.T) {
	hooks := NewNop()

	require.NotNil(t, hooks.OnRosterLoaded)
	require.NotNil(t, hooks.OnGroupsFormed)
	require.NotNil(t, hooks.OnError)
}

func TestNopHooks_Callbacks(t *testing.T) {
	hooks := NewNop()
	ctx := context.Background()

	people := []types.Person{{Name: "a", Job: "j", Department: "d"}}

	require.NoError(t, hooks.OnRosterLoaded(ctx, people))
	require.NoError(t, hooks.OnGroupsFormed(ctx, []types.Group{people}))
	require.NoError(t, hooks.OnError(ctx, context.Canceled))
}

func TestFillDefaults(t *testing.T) {
	t.Run("nil hooks become no-ops", func(t *testing.T) {
		hooks := FillDefaults(nil)

		require.NotNil(t, hooks.OnRosterLoaded)
		require.NotNil(t, hooks.OnGroupsFormed)
		require.NotNil(t, hooks.OnError)
	})

	t.Run("custom callbacks are kept", func(t *testing.T) {
		sentinel := errors.New("custom")
		hooks := FillDefaults(&types.Hooks{
			OnError: func(context.Context, error) error { return sentinel },
		})

		require.ErrorIs(t, hooks.OnError(context.Background(), nil), sentinel)
		require.NoError(t, hooks.OnGroupsFormed(context.Background(), nil))
	})
}
