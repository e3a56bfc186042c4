package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/application/dispatcher"
	"github.com/garyjia/trip-expenses/internal/application/port"
	"github.com/garyjia/trip-expenses/internal/infrastructure/worker"
	httpapi "github.com/garyjia/trip-expenses/internal/interfaces/http"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	backend  *BackendBundle
	sessions *SessionBundle
	metrics  *MetricsBundle

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Interfaces
	server *httpapi.Server

	// Workers
	workers *worker.Manager

	// Lifecycle
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components and begins background work:
// 1. Persistence backend
// 2. Session store
// 3. Event dispatcher and metrics
// 4. AI completer and application services
// 5. HTTP server (when enabled)
// 6. Workers
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	backend, err := ProvideBackend(c.ctx, c.config, c.logger)
	if err != nil {
		return c.abort(fmt.Errorf("failed to initialize backend: %w", err))
	}
	c.backend = backend
	c.logger.Info("Backend initialized", zap.String("driver", c.config.Persistence.Driver))

	sessions, err := ProvideSessionStore(c.ctx, &c.config.Sessions, c.logger)
	if err != nil {
		return c.abort(fmt.Errorf("failed to initialize session store: %w", err))
	}
	c.sessions = sessions
	c.logger.Info("Session store initialized", zap.String("driver", c.config.Sessions.Driver))

	disp, err := ProvideDispatcher(c.logger)
	if err != nil {
		return c.abort(err)
	}
	c.dispatcher = disp
	c.metrics = ProvideMetrics(disp)
	c.logger.Info("Dispatcher and metrics initialized")

	completer, userTemplate, err := ProvideCompleter(&c.config.OpenAI, c.logger)
	if err != nil {
		return c.abort(fmt.Errorf("failed to initialize AI completer: %w", err))
	}

	services, err := ProvideServices(&ServiceDeps{
		Backend:      backend.Backend,
		Sessions:     sessions.Store,
		Completer:    completer,
		UserTemplate: userTemplate,
		Dispatcher:   disp,
		OpenAI:       &c.config.OpenAI,
		Wizard:       &c.config.Wizard,
		Logger:       c.logger,
	})
	if err != nil {
		return c.abort(fmt.Errorf("failed to initialize services: %w", err))
	}
	c.services = services
	c.logger.Info("Application services initialized", zap.Bool("ai_extraction", completer != nil))

	if c.config.Server.Enabled {
		server, err := ProvideHTTPServer(&c.config.Server, services, c.metrics, c.logger)
		if err != nil {
			return c.abort(fmt.Errorf("failed to initialize HTTP server: %w", err))
		}
		c.server = server
	}

	c.workers = ProvideWorkers(&c.config.Sessions, services.Chat, c.logger)
	if err := c.workers.Start(c.ctx); err != nil {
		return c.abort(fmt.Errorf("failed to start workers: %w", err))
	}
	c.logger.Info("Workers started", zap.Int("count", c.workers.Count()))

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// abort releases whatever Start managed to open
func (c *Container) abort(err error) error {
	c.logger.Error("Container initialization failed", zap.Error(err))
	c.teardown()
	c.closed.Store(true)
	return err
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	errs := c.teardown()

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) teardown() []error {
	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.workers != nil {
		if err := c.workers.Stop(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop http server: %w", err))
		}
	}

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	if c.sessions != nil && c.sessions.Redis != nil {
		if err := c.sessions.Redis.Close(); err != nil {
			c.logger.Error("Failed to close redis client", zap.Error(err))
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	if c.backend != nil && c.backend.DB != nil {
		if err := c.backend.DB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	return errs
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, err error) {
		if err != nil {
			status.Components[name] = ComponentHealth{Healthy: false, Message: err.Error()}
			status.Overall = false
			return
		}
		status.Components[name] = ComponentHealth{Healthy: true}
	}

	switch {
	case c.backend == nil:
		set("backend", fmt.Errorf("not initialized"))
	case c.backend.DB != nil:
		set("backend", c.backend.DB.PingContext(ctx))
	default:
		set("backend", nil)
	}

	switch {
	case c.sessions == nil:
		set("sessions", fmt.Errorf("not initialized"))
	case c.sessions.Redis != nil:
		set("sessions", c.sessions.Redis.Ping(ctx).Err())
	default:
		set("sessions", nil)
	}

	if c.workers == nil {
		set("workers", fmt.Errorf("not initialized"))
	} else {
		status.Components["workers"] = ComponentHealth{
			Healthy: c.workers.Running(),
			Message: fmt.Sprintf("worker count: %d", c.workers.Count()),
		}
		if !c.workers.Running() {
			status.Overall = false
		}
	}

	if c.dispatcher == nil {
		set("dispatcher", fmt.Errorf("not initialized"))
	} else {
		set("dispatcher", nil)
	}

	return status
}

// Backend returns the trip backend.
func (c *Container) Backend() port.TripBackend {
	if c.backend == nil {
		return nil
	}
	return c.backend.Backend
}

// SessionStore returns the session store.
func (c *Container) SessionStore() port.SessionStore {
	if c.sessions == nil {
		return nil
	}
	return c.sessions.Store
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Metrics returns the metrics registry and collector.
func (c *Container) Metrics() *MetricsBundle {
	return c.metrics
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// HTTPServer returns the API server, or nil when the server is disabled.
func (c *Container) HTTPServer() *httpapi.Server {
	return c.server
}

// Workers returns the worker manager.
func (c *Container) Workers() *worker.Manager {
	return c.workers
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the small Logger interfaces of the
// application and interface layers.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
