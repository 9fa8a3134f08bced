package grouper

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/arloliu/grouper/internal/hooks"
	"github.com/arloliu/grouper/internal/logging"
	"github.com/arloliu/grouper/internal/metrics"
	"github.com/arloliu/grouper/internal/roster"
)

// RosterSnapshot is a point-in-time view of the roster: its load state, the
// loaded people and the last load error.
type RosterSnapshot = roster.Snapshot

// Service serves a roster and forms groups from it on demand.
//
// Service is the main entry point of the grouper library. It handles:
//   - Loading the roster from a RosterProvider in the background
//   - Tracking the Loading, Failed and Loaded roster states
//   - Forming groups with a configurable strategy
//   - Reloading the roster when asked (never automatically)
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Returned groups and snapshots are never shared with other callers
//
// Lifecycle:
//   - Create with NewService()
//   - Call Start() to begin loading the roster
//   - Call Shuffle() once the roster is loaded
//   - Call Stop() for graceful shutdown
type Service struct {
	cfg      Config
	provider RosterProvider
	loader   *roster.Loader

	strategies      map[string]GroupingStrategy
	defaultStrategy string

	hooks   Hooks
	metrics MetricsCollector
	logger  Logger

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates a new Service with the provided configuration.
//
// Parameters:
//   - cfg: Configuration; missing values are filled with defaults
//   - provider: Roster provider (see OpenRosterProvider and the source package)
//   - opts: Optional configuration (logger, metrics, hooks, rand, strategies)
//
// Returns:
//   - *Service: Initialized service; call Start to load the roster
//   - error: ErrInvalidConfig or ErrRosterProviderRequired
//
// Example:
//
//	cfg := grouper.DefaultConfig()
//	svc, err := grouper.NewService(&cfg, source.NewStatic(source.DefaultRoster()))
//	if err != nil {
//	    return err
//	}
//	if err := svc.Start(ctx); err != nil {
//	    return err
//	}
//	defer svc.Stop(context.Background())
func NewService(cfg *Config, provider RosterProvider, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if provider == nil {
		return nil, ErrRosterProviderRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	s := &Service{
		cfg:             *cfg,
		provider:        provider,
		strategies:      make(map[string]GroupingStrategy),
		defaultStrategy: cfg.Grouping.Strategy,
		hooks:           hooks.FillDefaults(options.hooks),
		metrics:         metricsCollector,
		logger:          loggerInstance,
		ctx:             context.Background(),
	}

	for _, name := range StrategyNames() {
		st, err := NewStrategy(name, cfg.Grouping, options.rng)
		if err != nil {
			return nil, err
		}
		s.strategies[name] = st
	}
	for _, st := range options.strategies {
		s.strategies[st.Name()] = st
	}

	sourceName := options.sourceName
	if sourceName == "" {
		sourceName = cfg.Roster.Source
	}

	s.loader = roster.NewLoader(provider,
		roster.WithLogger(loggerInstance),
		roster.WithMetrics(metricsCollector),
		roster.WithSourceName(sourceName),
		roster.WithTimeout(cfg.Roster.LoadTimeout),
		roster.WithOnLoaded(s.onRosterLoaded),
		roster.WithOnError(s.onRosterError),
	)

	return s, nil
}

// Start begins loading the roster in the background and returns immediately.
//
// Until the load completes the roster is in the Loading state and Shuffle
// returns ErrRosterLoading.
//
// Parameters:
//   - ctx: Context for the call (the load itself runs on the service lifecycle)
//
// Returns:
//   - error: ErrAlreadyStarted if called twice
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	if err := s.loader.Start(ctx); err != nil {
		s.cancel()
		return err
	}

	s.logger.Info("service started",
		"source", s.loader.Source(),
		"strategy", s.defaultStrategy,
		"defaultGroupCount", s.cfg.Grouping.DefaultGroupCount,
	)

	return nil
}

// Stop cancels any in-flight roster load and waits for it to exit.
//
// Hooks already running are not waited for.
//
// Parameters:
//   - ctx: Context bounding the wait
//
// Returns:
//   - error: ErrNotStarted if not running, or the context error on timeout
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	cancel := s.cancel
	s.mu.Unlock()

	err := s.loader.Stop(ctx)
	cancel()

	if err != nil {
		s.logger.Error("service stop incomplete", "error", err)
		return err
	}

	s.logger.Info("service stopped")

	return nil
}

// Snapshot returns the current roster view.
func (s *Service) Snapshot() RosterSnapshot {
	return s.loader.Snapshot()
}

// State returns the current roster state.
func (s *Service) State() RosterState {
	return s.loader.Snapshot().State
}

// Ready reports whether the roster is loaded.
func (s *Service) Ready() bool {
	return s.State() == RosterStateLoaded
}

// Refresh reloads the roster in the background.
//
// The roster returns to the Loading state until the reload finishes. Caching
// providers are invalidated first so the reload reaches the source.
//
// Returns:
//   - error: ErrNotStarted if the service is not running
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.loader.Refresh(ctx); err != nil {
		return err
	}

	s.logger.Info("roster refresh requested", "source", s.loader.Source())

	return nil
}

// Load fetches the roster synchronously without starting the service.
//
// Load is meant for one-shot use such as the command line: it loads once,
// updates the snapshot and returns it.
func (s *Service) Load(ctx context.Context) RosterSnapshot {
	return s.loader.Load(ctx)
}

// WaitLoaded blocks until the roster leaves the Loading state.
//
// Returns:
//   - RosterSnapshot: The settled snapshot
//   - error: Context error, or the load error when the roster failed to load
func (s *Service) WaitLoaded(ctx context.Context) (RosterSnapshot, error) {
	snap, err := s.loader.Wait(ctx)
	if err != nil {
		return snap, err
	}

	return snap, snap.Err
}

// Shuffle forms groups from the loaded roster with the default strategy.
//
// Parameters:
//   - groupCount: Requested number of groups
//
// Returns:
//   - []Group: Formed groups (empty when groupCount <= 0 or the roster is empty)
//   - error: ErrRosterLoading while loading, ErrRosterUnavailable after a failed load
func (s *Service) Shuffle(groupCount int) ([]Group, error) {
	return s.ShuffleWith(s.defaultStrategy, groupCount)
}

// ShuffleWith forms groups from the loaded roster with the named strategy.
//
// Parameters:
//   - name: Strategy name; empty selects the default strategy
//   - groupCount: Requested number of groups
//
// Returns:
//   - []Group: Formed groups
//   - error: ErrUnknownStrategy, ErrRosterLoading or ErrRosterUnavailable
func (s *Service) ShuffleWith(name string, groupCount int) ([]Group, error) {
	if name == "" {
		name = s.defaultStrategy
	}

	st, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}

	snap := s.loader.Snapshot()
	switch snap.State {
	case RosterStateLoading:
		return nil, ErrRosterLoading
	case RosterStateFailed:
		return nil, snap.Err
	}

	return s.partition(st, snap.People, groupCount), nil
}

// Partition forms groups from an arbitrary roster with the default strategy.
//
// Unlike Shuffle it does not depend on the loaded roster.
func (s *Service) Partition(people []Person, groupCount int) []Group {
	return s.partition(s.strategies[s.defaultStrategy], people, groupCount)
}

// Strategies returns the registered strategy names in sorted order.
func (s *Service) Strategies() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// DefaultStrategy returns the name of the default strategy.
func (s *Service) DefaultStrategy() string {
	return s.defaultStrategy
}

// Config returns a copy of the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) partition(st GroupingStrategy, people []Person, groupCount int) []Group {
	groups := st.Group(people, groupCount)

	s.metrics.RecordGrouping(st.Name(), groupCount, len(groups))
	s.logger.Debug("groups formed",
		"strategy", st.Name(),
		"requested", groupCount,
		"effective", len(groups),
		"people", len(people),
	)

	hookGroups := cloneGroups(groups)
	ctx := s.lifecycleContext()
	go func() {
		if err := s.hooks.OnGroupsFormed(ctx, hookGroups); err != nil {
			s.logger.Error("groups formed hook error", "error", err)
		}
	}()

	return groups
}

func (s *Service) onRosterLoaded(_ context.Context, people []Person) {
	ctx := s.lifecycleContext()
	hookPeople := slices.Clone(people)

	go func() {
		if err := s.hooks.OnRosterLoaded(ctx, hookPeople); err != nil {
			s.logger.Error("roster loaded hook error", "error", err)
		}
	}()
}

func (s *Service) onRosterError(_ context.Context, loadErr error) {
	ctx := s.lifecycleContext()

	go func() {
		if err := s.hooks.OnError(ctx, loadErr); err != nil {
			s.logger.Error("error hook error", "error", err)
		}
	}()
}

func (s *Service) lifecycleContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ctx
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = slices.Clone(g)
	}

	return out
}

func nopLogger() Logger {
	return logging.NewNop()
}
