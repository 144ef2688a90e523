package solo

import "time"

// Option configures a Manager with optional dependencies.
type Option func(*managerOptions)

// managerOptions holds optional Manager configuration.
type managerOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	clock   func() time.Time
	token   func() string
}

// WithHooks sets lifecycle event hooks.
//
// Example:
//
//	hooks := &solo.Hooks{
//	    OnStateChanged: func(ctx context.Context, from, to solo.State) error {
//	        log.Printf("%s -> %s", from, to)
//	        return nil
//	    },
//	}
//	mgr, _ := solo.NewManager(&cfg, store, g, solo.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *managerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "jobs")
//	mgr, _ := solo.NewManager(&cfg, store, g, solo.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *managerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
func WithLogger(logger Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithClock overrides the time source used for heartbeats and expiry checks.
//
// Intended for tests; production code should keep the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *managerOptions) {
		o.clock = now
	}
}

// WithTokenGenerator overrides how the per-process lease token is generated.
// The default is a random UUID.
func WithTokenGenerator(gen func() string) Option {
	return func(o *managerOptions) {
		o.token = gen
	}
}
