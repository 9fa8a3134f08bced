package grouper

import "github.com/arloliu/grouper/strategy"

// Option configures a Service with optional dependencies.
type Option func(*serviceOptions)

// serviceOptions holds optional Service configuration.
type serviceOptions struct {
	hooks      *Hooks
	metrics    MetricsCollector
	logger     Logger
	rng        strategy.Rand
	strategies []GroupingStrategy
	sourceName string
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewService
//
// Example:
//
//	hooks := &grouper.Hooks{
//	    OnGroupsFormed: func(ctx context.Context, groups []grouper.Group) error {
//	        return notifyChannel(ctx, groups)
//	    },
//	}
//	svc, err := grouper.NewService(&cfg, src, grouper.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *serviceOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewService
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *serviceOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewService
//
// Example:
//
//	logger, _ := logging.New("debug", "text", os.Stderr)
//	svc, err := grouper.NewService(&cfg, src, grouper.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithRand sets the randomness source of the balanced strategy.
//
// A seeded generator makes shuffles reproducible, which is mainly useful in
// tests. The source does not need to be safe for concurrent use.
//
// Example:
//
//	svc, err := grouper.NewService(&cfg, src, grouper.WithRand(rand.New(rand.NewPCG(1, 2))))
func WithRand(rng strategy.Rand) Option {
	return func(o *serviceOptions) {
		o.rng = rng
	}
}

// WithStrategy registers a custom grouping strategy under its Name().
//
// A custom strategy with a built-in name replaces the built-in one. Other
// names are reachable through Service.ShuffleWith and the strategy query
// parameter; the default strategy is always a built-in name.
func WithStrategy(s GroupingStrategy) Option {
	return func(o *serviceOptions) {
		if s != nil {
			o.strategies = append(o.strategies, s)
		}
	}
}

// WithSourceName sets the roster source label used in logs and metrics.
// OpenRosterProvider callers pass cfg.Roster.Source.
func WithSourceName(name string) Option {
	return func(o *serviceOptions) {
		o.sourceName = name
	}
}
