package grouper

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/grouper/source"
	"github.com/arloliu/grouper/strategy"
	"github.com/arloliu/grouper/test/testutil"
	groupertest "github.com/arloliu/grouper/testing"
)

type funcProvider func(ctx context.Context) ([]Person, error)

func (f funcProvider) ListPeople(ctx context.Context) ([]Person, error) {
	return f(ctx)
}

func startService(t *testing.T, provider RosterProvider, opts ...Option) *Service {
	t.Helper()

	cfg := TestConfig()
	opts = append([]Option{WithLogger(groupertest.NewTestLogger(t))}, opts...)

	svc, err := NewService(&cfg, provider, opts...)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })

	return svc
}

func waitLoaded(t *testing.T, svc *Service) RosterSnapshot {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := svc.WaitLoaded(ctx)
	require.NoError(t, err)

	return snap
}

func TestNewService(t *testing.T) {
	t.Run("rejects nil config", func(t *testing.T) {
		_, err := NewService(nil, source.NewStatic(nil))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects nil provider", func(t *testing.T) {
		cfg := TestConfig()
		_, err := NewService(&cfg, nil)
		require.ErrorIs(t, err, ErrRosterProviderRequired)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := TestConfig()
		cfg.Grouping.Strategy = "alphabetical"
		_, err := NewService(&cfg, source.NewStatic(nil))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("fills defaults", func(t *testing.T) {
		cfg := Config{}
		svc, err := NewService(&cfg, source.NewStatic(nil))
		require.NoError(t, err)
		require.Equal(t, "balanced", svc.DefaultStrategy())
		require.Equal(t, 2, svc.Config().Grouping.DefaultGroupCount)
		require.Equal(t, []string{"balanced", "consistent-hash", "round-robin"}, svc.Strategies())
	})
}

func TestService_Lifecycle(t *testing.T) {
	cfg := TestConfig()
	svc, err := NewService(&cfg, source.NewStatic(source.DefaultRoster()))
	require.NoError(t, err)

	require.Equal(t, RosterStateLoading, svc.State())
	require.ErrorIs(t, svc.Stop(context.Background()), ErrNotStarted)
	require.ErrorIs(t, svc.Refresh(context.Background()), ErrNotStarted)

	require.NoError(t, svc.Start(context.Background()))
	require.ErrorIs(t, svc.Start(context.Background()), ErrAlreadyStarted)

	snap := waitLoaded(t, svc)
	require.Equal(t, RosterStateLoaded, snap.State)
	require.Len(t, snap.People, 12)
	require.True(t, svc.Ready())

	require.NoError(t, svc.Stop(context.Background()))
	require.ErrorIs(t, svc.Stop(context.Background()), ErrNotStarted)
}

func TestService_Shuffle(t *testing.T) {
	t.Run("forms groups from loaded roster", func(t *testing.T) {
		svc := startService(t, source.NewStatic(source.DefaultRoster()))
		snap := waitLoaded(t, svc)

		groups, err := svc.Shuffle(2)
		require.NoError(t, err)
		testutil.AssertGroupsConsistent(t, snap.People, groups, 2)
	})

	t.Run("reports loading until the roster arrives", func(t *testing.T) {
		release := make(chan struct{})
		svc := startService(t, funcProvider(func(ctx context.Context) ([]Person, error) {
			select {
			case <-release:
				return source.DefaultRoster(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}))

		_, err := svc.Shuffle(2)
		require.ErrorIs(t, err, ErrRosterLoading)
		require.False(t, svc.Ready())

		close(release)
		waitLoaded(t, svc)

		groups, err := svc.Shuffle(2)
		require.NoError(t, err)
		require.Len(t, groups, 2)
	})

	t.Run("reports unavailable after failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		svc := startService(t, funcProvider(func(context.Context) ([]Person, error) {
			return nil, boom
		}))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snap, err := svc.WaitLoaded(ctx)
		require.ErrorIs(t, err, ErrRosterUnavailable)
		require.Equal(t, RosterStateFailed, snap.State)

		_, err = svc.Shuffle(2)
		require.ErrorIs(t, err, ErrRosterUnavailable)
		require.ErrorIs(t, err, boom)
	})

	t.Run("degenerate counts yield empty groups", func(t *testing.T) {
		svc := startService(t, source.NewStatic(source.DefaultRoster()))
		waitLoaded(t, svc)

		for _, n := range []int{0, -3} {
			groups, err := svc.Shuffle(n)
			require.NoError(t, err)
			require.NotNil(t, groups)
			require.Empty(t, groups)
		}
	})

	t.Run("empty roster yields empty groups", func(t *testing.T) {
		svc := startService(t, source.NewStatic(nil))
		waitLoaded(t, svc)

		groups, err := svc.Shuffle(3)
		require.NoError(t, err)
		require.Empty(t, groups)
	})

	t.Run("seeded rand is reproducible", func(t *testing.T) {
		a := startService(t, source.NewStatic(source.DefaultRoster()), WithRand(rand.New(rand.NewPCG(7, 11))))
		b := startService(t, source.NewStatic(source.DefaultRoster()), WithRand(rand.New(rand.NewPCG(7, 11))))
		waitLoaded(t, a)
		waitLoaded(t, b)

		for range 5 {
			ga, err := a.Shuffle(3)
			require.NoError(t, err)
			gb, err := b.Shuffle(3)
			require.NoError(t, err)
			require.Equal(t, ga, gb)
		}
	})

	t.Run("concurrent shuffles are safe", func(t *testing.T) {
		svc := startService(t, source.NewStatic(source.DefaultRoster()), WithRand(rand.New(rand.NewPCG(1, 2))))
		snap := waitLoaded(t, svc)

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 50 {
					groups, err := svc.Shuffle(4)
					if err != nil {
						t.Error(err)
						return
					}
					testutil.AssertGroupsConsistent(t, snap.People, groups, 4)
				}
			}()
		}
		wg.Wait()
	})
}

func TestService_ShuffleWith(t *testing.T) {
	svc := startService(t, source.NewStatic(source.DefaultRoster()))
	snap := waitLoaded(t, svc)

	for _, name := range StrategyNames() {
		t.Run(name, func(t *testing.T) {
			groups, err := svc.ShuffleWith(name, 3)
			require.NoError(t, err)
			testutil.AssertGroupsConsistent(t, snap.People, groups, 3)
		})
	}

	t.Run("empty name uses the default", func(t *testing.T) {
		groups, err := svc.ShuffleWith("", 2)
		require.NoError(t, err)
		require.Len(t, groups, 2)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := svc.ShuffleWith("alphabetical", 2)
		require.ErrorIs(t, err, ErrUnknownStrategy)
	})

	t.Run("round-robin keeps roster order", func(t *testing.T) {
		groups, err := svc.ShuffleWith(strategy.NameRoundRobin, 2)
		require.NoError(t, err)
		require.Equal(t, snap.People[0], groups[0][0])
		require.Equal(t, snap.People[1], groups[1][0])
	})
}

type reverseStrategy struct{}

func (reverseStrategy) Name() string { return "reverse" }

func (reverseStrategy) Group(people []Person, groupCount int) []Group {
	if groupCount <= 0 || len(people) == 0 {
		return []Group{}
	}
	g := make(Group, 0, len(people))
	for i := len(people) - 1; i >= 0; i-- {
		g = append(g, people[i])
	}

	return []Group{g}
}

func TestService_CustomStrategy(t *testing.T) {
	svc := startService(t, source.NewStatic(source.DefaultRoster()), WithStrategy(reverseStrategy{}))
	snap := waitLoaded(t, svc)

	require.Contains(t, svc.Strategies(), "reverse")

	groups, err := svc.ShuffleWith("reverse", 2)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, snap.People[len(snap.People)-1], groups[0][0])
}

func TestService_Partition(t *testing.T) {
	cfg := TestConfig()
	svc, err := NewService(&cfg, source.NewStatic(nil))
	require.NoError(t, err)

	roster := testutil.GenerateRoster([]string{"a", "b"}, []string{"x", "y"}, 3)
	groups := svc.Partition(roster, 4)
	testutil.AssertGroupsConsistent(t, roster, groups, 4)
}

func TestService_Refresh(t *testing.T) {
	src := source.NewStatic([]Person{{Name: "a"}})
	svc := startService(t, src)
	require.Len(t, waitLoaded(t, svc).People, 1)

	src.Update(source.DefaultRoster())
	require.NoError(t, svc.Refresh(context.Background()))

	require.Eventually(t, func() bool {
		snap := svc.Snapshot()
		return snap.State == RosterStateLoaded && len(snap.People) == 12
	}, 5*time.Second, 5*time.Millisecond)
}

func TestService_Load(t *testing.T) {
	cfg := TestConfig()
	svc, err := NewService(&cfg, source.NewStatic(source.DefaultRoster()))
	require.NoError(t, err)

	snap := svc.Load(context.Background())
	require.Equal(t, RosterStateLoaded, snap.State)

	groups, err := svc.Shuffle(2)
	require.NoError(t, err)
	require.Len(t, groups, 2)
}

func TestService_Hooks(t *testing.T) {
	var (
		loaded atomic.Int32
		formed atomic.Int32
		failed atomic.Int32
	)
	hooks := &Hooks{
		OnRosterLoaded: func(_ context.Context, people []Person) error {
			loaded.Store(int32(len(people)))
			return nil
		},
		OnGroupsFormed: func(_ context.Context, groups []Group) error {
			formed.Store(int32(len(groups)))
			return nil
		},
	}

	svc := startService(t, source.NewStatic(source.DefaultRoster()), WithHooks(hooks))
	waitLoaded(t, svc)
	require.Eventually(t, func() bool { return loaded.Load() == 12 }, time.Second, 5*time.Millisecond)

	_, err := svc.Shuffle(3)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return formed.Load() == 3 }, time.Second, 5*time.Millisecond)

	errHooks := &Hooks{
		OnError: func(_ context.Context, err error) error {
			if errors.Is(err, ErrRosterUnavailable) {
				failed.Add(1)
			}
			return nil
		},
	}
	failing := startService(t, funcProvider(func(context.Context) ([]Person, error) {
		return nil, errors.New("down")
	}), WithHooks(errHooks))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = failing.WaitLoaded(ctx)
	require.Eventually(t, func() bool { return failed.Load() == 1 }, time.Second, 5*time.Millisecond)
}

type countingMetrics struct {
	mu        sync.Mutex
	groupings map[string]int
	loads     int
}

func (m *countingMetrics) RecordRosterLoad(string, float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
}

func (m *countingMetrics) RecordRosterSize(int) {}

func (m *countingMetrics) RecordGrouping(strategy string, _, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groupings[strategy]++
}

func (m *countingMetrics) RecordHTTPRequest(string, int, float64) {}

func TestService_Metrics(t *testing.T) {
	m := &countingMetrics{groupings: make(map[string]int)}
	svc := startService(t, source.NewStatic(source.DefaultRoster()), WithMetrics(m))
	waitLoaded(t, svc)

	_, err := svc.Shuffle(2)
	require.NoError(t, err)
	_, err = svc.ShuffleWith(strategy.NameRoundRobin, 2)
	require.NoError(t, err)

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Equal(t, 1, m.loads)
	require.Equal(t, 1, m.groupings["balanced"])
	require.Equal(t, 1, m.groupings["round-robin"])
}
