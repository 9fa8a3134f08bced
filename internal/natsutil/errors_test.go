package natsutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/grouper/types"
)

func TestIsConnectivityError(t *testing.T) {
	require.False(t, IsConnectivityError(nil))
	require.False(t, IsConnectivityError(errors.New("bad json")))

	require.True(t, IsConnectivityError(nats.ErrTimeout))
	require.True(t, IsConnectivityError(fmt.Errorf("list keys: %w", nats.ErrNoServers)))
	require.True(t, IsConnectivityError(types.ErrConnectivity))
	require.True(t, IsConnectivityError(context.DeadlineExceeded))
	require.True(t, IsConnectivityError(errors.New("dial tcp 127.0.0.1:4222: connect: connection refused")))
}

func TestIsNoKeysFound(t *testing.T) {
	require.False(t, IsNoKeysFound(nil))
	require.False(t, IsNoKeysFound(errors.New("other")))

	require.True(t, IsNoKeysFound(jetstream.ErrNoKeysFound))
	require.True(t, IsNoKeysFound(fmt.Errorf("failed to list KV keys: %w", jetstream.ErrNoKeysFound)))
	require.True(t, IsNoKeysFound(errors.New("nats: no keys found")))
}
