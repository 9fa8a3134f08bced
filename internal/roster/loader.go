package roster

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/grouper/internal/logging"
	"github.com/arloliu/grouper/internal/metrics"
	"github.com/arloliu/grouper/types"
)

// Snapshot is a point-in-time view of the roster.
type Snapshot struct {
	// State is the load state. People is only set when State is Loaded and
	// Err is only set when State is Failed.
	State types.RosterState
	// People is the loaded roster in provider order.
	People []types.Person
	// Err wraps types.ErrRosterUnavailable around the provider error.
	Err error
	// LoadedAt is when the current state was reached; zero while loading.
	LoadedAt time.Time
	// Generation counts load cycles started so far.
	Generation uint64
}

// Invalidator is implemented by providers that cache results (source.Cached).
// Refresh invalidates them so an explicit reload reaches the real source.
type Invalidator interface {
	Invalidate()
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics sets the roster metrics collector.
func WithMetrics(m types.RosterMetrics) Option {
	return func(l *Loader) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithSourceName sets the source label used in logs and metrics.
func WithSourceName(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.source = name
		}
	}
}

// WithTimeout bounds every provider call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithOnLoaded registers a callback invoked after each successful load.
func WithOnLoaded(fn func(ctx context.Context, people []types.Person)) Option {
	return func(l *Loader) {
		l.onLoaded = fn
	}
}

// WithOnError registers a callback invoked after each failed load.
func WithOnError(fn func(ctx context.Context, err error)) Option {
	return func(l *Loader) {
		l.onError = fn
	}
}

// Loader loads the roster in the background and tracks its state.
//
// The roster is fetched once on Start and again only on Refresh; there is no
// periodic reload. When loads overlap, only the most recently started one
// may publish its result.
//
// Thread Safety:
//   - All methods are safe for concurrent use
type Loader struct {
	provider types.RosterProvider
	source   string
	timeout  time.Duration
	logger   types.Logger
	metrics  types.RosterMetrics
	onLoaded func(ctx context.Context, people []types.Person)
	onError  func(ctx context.Context, err error)

	mu   sync.RWMutex
	snap Snapshot

	subscribers      *xsync.Map[uint64, *subscriber]
	nextSubscriberID atomic.Uint64

	lifeMu  sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool
	stopped atomic.Bool
}

// NewLoader creates a loader in the Loading state.
//
// Parameters:
//   - provider: Roster provider (must not be nil)
//   - opts: Optional configuration
//
// Returns:
//   - *Loader: New loader; call Start to begin the first load
func NewLoader(provider types.RosterProvider, opts ...Option) *Loader {
	l := &Loader{
		provider:    provider,
		source:      "custom",
		logger:      logging.NewNop(),
		metrics:     metrics.NewNop(),
		subscribers: xsync.NewMap[uint64, *subscriber](),
		snap:        Snapshot{State: types.RosterStateLoading},
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Source returns the source label.
func (l *Loader) Source() string {
	return l.source
}

// Start begins the initial background load and returns immediately.
//
// Returns:
//   - error: types.ErrAlreadyStarted on a second call
func (l *Loader) Start(_ context.Context) error {
	l.lifeMu.Lock()
	defer l.lifeMu.Unlock()

	if !l.started.CompareAndSwap(false, true) {
		return types.ErrAlreadyStarted
	}

	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.loadAsync()

	return nil
}

// Refresh moves the roster back to Loading and starts a new background load.
//
// Returns:
//   - error: types.ErrNotStarted if the loader is not running
func (l *Loader) Refresh(_ context.Context) error {
	l.lifeMu.Lock()
	defer l.lifeMu.Unlock()

	if !l.started.Load() || l.stopped.Load() {
		return types.ErrNotStarted
	}

	if inv, ok := l.provider.(Invalidator); ok {
		inv.Invalidate()
	}

	l.loadAsync()

	return nil
}

// Load fetches the roster synchronously and returns the resulting snapshot.
//
// Load does not require Start; command-line tools use it for one-shot runs.
func (l *Loader) Load(ctx context.Context) Snapshot {
	gen := l.begin()

	return l.run(ctx, gen)
}

// Snapshot returns the current roster view. People is a copy.
func (l *Loader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := l.snap
	if snap.People != nil {
		snap.People = append([]types.Person(nil), snap.People...)
	}

	return snap
}

// Subscribe returns a channel that receives a snapshot on every state change.
//
// The channel is buffered and receives the current snapshot immediately.
// Slow readers may miss intermediate snapshots; call Snapshot after a
// receive to read the latest state.
//
// Returns:
//   - <-chan Snapshot: Snapshot notifications, closed on Stop or unsubscribe
//   - func(): Unsubscribe function
//
// Example:
//
//	ch, unsubscribe := loader.Subscribe()
//	defer unsubscribe()
//	for snap := range ch {
//	    fmt.Println(snap.State)
//	}
func (l *Loader) Subscribe() (<-chan Snapshot, func()) {
	id := l.nextSubscriberID.Add(1)
	sub := &subscriber{ch: make(chan Snapshot, 4)}
	l.subscribers.Store(id, sub)

	if l.stopped.Load() {
		l.removeSubscriber(id)
		return sub.ch, func() {}
	}

	sub.trySend(l.Snapshot())

	return sub.ch, func() { l.removeSubscriber(id) }
}

// Wait blocks until the roster is no longer loading.
//
// Returns:
//   - Snapshot: The settled snapshot (Loaded or Failed)
//   - error: Context error, or types.ErrNotStarted if the loader stopped first
func (l *Loader) Wait(ctx context.Context) (Snapshot, error) {
	ch, unsubscribe := l.Subscribe()
	defer unsubscribe()

	for {
		if snap := l.Snapshot(); snap.State != types.RosterStateLoading {
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return l.Snapshot(), ctx.Err()
		case _, ok := <-ch:
			if !ok {
				if snap := l.Snapshot(); snap.State != types.RosterStateLoading {
					return snap, nil
				}

				return l.Snapshot(), types.ErrNotStarted
			}
		}
	}
}

// Stop cancels in-flight loads and waits for them to exit.
//
// Returns:
//   - error: types.ErrNotStarted if never started or already stopped; ctx error on timeout
func (l *Loader) Stop(ctx context.Context) error {
	l.lifeMu.Lock()
	if !l.started.Load() || !l.stopped.CompareAndSwap(false, true) {
		l.lifeMu.Unlock()
		return types.ErrNotStarted
	}
	l.cancel()
	l.lifeMu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	l.subscribers.Range(func(id uint64, _ *subscriber) bool {
		l.removeSubscriber(id)
		return true
	})

	return err
}

func (l *Loader) loadAsync() {
	gen := l.begin()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(l.ctx, gen)
	}()
}

// begin starts a new load cycle and publishes the Loading state.
func (l *Loader) begin() uint64 {
	l.mu.Lock()
	l.snap = Snapshot{
		State:      types.RosterStateLoading,
		Generation: l.snap.Generation + 1,
	}
	snap := l.snap
	l.mu.Unlock()

	l.publish(snap)

	return snap.Generation
}

func (l *Loader) run(ctx context.Context, gen uint64) Snapshot {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	l.logger.Debug("loading roster", "source", l.source, "generation", gen)

	start := time.Now()
	people, err := l.provider.ListPeople(ctx)
	elapsed := time.Since(start)

	l.metrics.RecordRosterLoad(l.source, elapsed.Seconds(), err == nil)

	next := Snapshot{Generation: gen, LoadedAt: time.Now()}
	if err != nil {
		next.State = types.RosterStateFailed
		next.Err = fmt.Errorf("%w: %w", types.ErrRosterUnavailable, err)
		l.logger.Error("roster load failed", "source", l.source, "duration", elapsed, "error", err)
	} else {
		if people == nil {
			people = []types.Person{}
		}
		next.State = types.RosterStateLoaded
		next.People = people
		l.metrics.RecordRosterSize(len(people))
		l.logger.Info("roster loaded", "source", l.source, "people", len(people), "duration", elapsed)
	}

	l.mu.Lock()
	if l.snap.Generation != gen {
		l.mu.Unlock()
		l.logger.Debug("discarding superseded roster load", "source", l.source, "generation", gen)

		return next
	}
	l.snap = next
	l.mu.Unlock()

	l.publish(next)

	if err != nil {
		if l.onError != nil {
			l.onError(ctx, next.Err)
		}
	} else if l.onLoaded != nil {
		l.onLoaded(ctx, people)
	}

	return next
}

func (l *Loader) publish(snap Snapshot) {
	l.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		sub.trySend(snap)
		return true
	})
}

func (l *Loader) removeSubscriber(id uint64) {
	if sub, ok := l.subscribers.LoadAndDelete(id); ok {
		sub.close()
	}
}
