package funcreg

import "log/slog"

// managerConfig holds configuration for a Manager.
type managerConfig struct {
	logger      *slog.Logger
	metrics     bool
	tracing     bool
	modules     *ModuleTable
	moduleNames bool
}

// Option configures a Manager.
type Option func(*managerConfig)

// WithLogger sets the logger for registry events.
// A nil logger (the default) disables logging.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	m := funcreg.New[http.HandlerFunc](funcreg.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for registrations and imports.
// Metrics use the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *managerConfig) {
		c.metrics = enabled
	}
}

// WithTracing enables OpenTelemetry spans around ImportModules.
// Spans use the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *managerConfig) {
		c.tracing = enabled
	}
}

// WithModules sets the module table ImportModules resolves specs against.
// Default: DefaultModules.
func WithModules(t *ModuleTable) Option {
	return func(c *managerConfig) {
		if t != nil {
			c.modules = t
		}
	}
}

// WithModuleNames qualifies derived handler names with the package path
// of the function, e.g. "example.com/app/handlers.ping" instead of "ping".
// Explicit names and Namer implementations are never qualified.
func WithModuleNames(enabled bool) Option {
	return func(c *managerConfig) {
		c.moduleNames = enabled
	}
}

// registerConfig holds per-call options for Register and Unregister.
type registerConfig struct {
	name        string
	label       string
	related     string
	position    int
	hasPosition bool
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerConfig)

// WithName sets the handler name instead of deriving it.
func WithName(name string) RegisterOption {
	return func(c *registerConfig) {
		c.name = name
	}
}

// WithLabel sets the human-readable label shown in listings.
func WithLabel(label string) RegisterOption {
	return func(c *registerConfig) {
		c.label = label
	}
}

// WithRelated nests the handler under a related key.
// Unregister uses it to select the related scope.
func WithRelated(related string) RegisterOption {
	return func(c *registerConfig) {
		c.related = related
	}
}

// WithPosition sets the ordering position. A non-zero position re-sorts
// the whole scope by position; ties keep insertion order.
// It overrides Positioner.
func WithPosition(position int) RegisterOption {
	return func(c *registerConfig) {
		c.position = position
		c.hasPosition = true
	}
}

func applyRegisterOptions(opts []RegisterOption) registerConfig {
	var cfg registerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
