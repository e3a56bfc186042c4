package container

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/application/dispatcher"
	"github.com/garyjia/trip-expenses/internal/application/port"
	"github.com/garyjia/trip-expenses/internal/application/service"
	"github.com/garyjia/trip-expenses/internal/application/wizard"
	"github.com/garyjia/trip-expenses/internal/domain/classify"
	"github.com/garyjia/trip-expenses/internal/domain/extract"
	"github.com/garyjia/trip-expenses/internal/infrastructure/export"
	"github.com/garyjia/trip-expenses/internal/infrastructure/external/openai"
	"github.com/garyjia/trip-expenses/internal/infrastructure/external/supabase"
	"github.com/garyjia/trip-expenses/internal/infrastructure/metrics"
	"github.com/garyjia/trip-expenses/internal/infrastructure/persistence/repository"
	"github.com/garyjia/trip-expenses/internal/infrastructure/session"
	"github.com/garyjia/trip-expenses/internal/infrastructure/worker"
	httpapi "github.com/garyjia/trip-expenses/internal/interfaces/http"
	"github.com/garyjia/trip-expenses/pkg/database"
)

// BackendBundle holds the trip backend and the sqlite handle when one was opened.
type BackendBundle struct {
	Backend port.TripBackend
	DB      *database.DB
}

// SessionBundle holds the session store and the redis client when one was opened.
type SessionBundle struct {
	Store port.SessionStore
	Redis *redis.Client
}

// MetricsBundle holds the registry served on /metrics and the collector feeding it.
type MetricsBundle struct {
	Registry  *prometheus.Registry
	Collector *metrics.Collector
}

// insertTimeout bounds a single trip insert request so it is dropped before the
// wizard's submit deadline abandons it.
func insertTimeout(submit time.Duration) time.Duration {
	if submit <= 0 {
		submit = wizard.DefaultSubmitTimeout
	}
	return submit * 4 / 5
}

// ProvideBackend opens the configured persistence backend.
// The sqlite backend runs embedded migrations and upserts configured budgets.
func ProvideBackend(ctx context.Context, cfg *Config, logger *zap.Logger) (*BackendBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Persistence.Driver {
	case DriverSupabase:
		client, err := supabase.NewClient(cfg.Persistence.SupabaseURL, cfg.Persistence.SupabaseKey)
		if err != nil {
			return nil, err
		}
		writer, err := supabase.NewWriteClient(cfg.Persistence.SupabaseURL, cfg.Persistence.SupabaseKey, insertTimeout(cfg.Wizard.SubmitTimeout))
		if err != nil {
			return nil, err
		}
		return &BackendBundle{Backend: supabase.NewGateway(client, logger).WithWriter(writer)}, nil

	case DriverSQLite:
		db, err := database.Open(database.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, err
		}

		backend := repository.NewBackend(db.DB, logger)
		for i := range cfg.Persistence.Budgets {
			budget := cfg.Persistence.Budgets[i]
			if err := backend.Save(ctx, &budget); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("failed to seed budget: %w", err)
			}
		}
		if n := len(cfg.Persistence.Budgets); n > 0 {
			logger.Info("Budgets seeded", zap.Int("count", n))
		}
		return &BackendBundle{Backend: backend, DB: db}, nil

	default:
		return nil, fmt.Errorf("unknown persistence driver %q", cfg.Persistence.Driver)
	}
}

// ProvideSessionStore creates the configured session store.
func ProvideSessionStore(ctx context.Context, cfg *SessionsConfig, logger *zap.Logger) (*SessionBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sessions config is required")
	}

	switch cfg.Driver {
	case SessionDriverMemory, "":
		return &SessionBundle{Store: session.NewMemoryStore()}, nil
	case SessionDriverRedis:
		client, err := session.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &SessionBundle{
			Store: session.NewRedisStore(client, cfg.TTL, logger),
			Redis: client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}

// ProvideCompleter creates the AI completion client and the extraction prompt.
// It returns a nil completer when no API key is configured.
func ProvideCompleter(cfg *OpenAIConfig, logger *zap.Logger) (port.Completer, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("openai config is required")
	}
	if cfg.APIKey == "" {
		logger.Info("No OpenAI API key configured, free-text extraction uses rules only")
		return nil, "", nil
	}

	completerCfg := openai.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	var userTemplate string
	if cfg.PromptsPath != "" {
		prompts, err := openai.LoadPrompts(cfg.PromptsPath)
		if err != nil {
			return nil, "", err
		}
		section := prompts.TripExtraction
		completerCfg.System = section.System
		if section.Temperature > 0 {
			completerCfg.Temperature = section.Temperature
		}
		if section.MaxTokens > 0 {
			completerCfg.MaxTokens = section.MaxTokens
		}
		userTemplate = section.UserTemplate
	}

	completer, err := openai.NewCompleter(completerCfg, logger)
	if err != nil {
		return nil, "", err
	}
	return completer, userTemplate, nil
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger})), nil
}

// ProvideMetrics creates a registry with process collectors and subscribes
// the domain collector to every dispatched event.
func ProvideMetrics(d dispatcher.Dispatcher) *MetricsBundle {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	collector := metrics.NewCollector(reg)
	collector.Register(d)

	return &MetricsBundle{Registry: reg, Collector: collector}
}

// ServiceDeps contains dependencies for creating services.
type ServiceDeps struct {
	Backend      port.TripBackend
	Sessions     port.SessionStore
	Completer    port.Completer
	UserTemplate string
	Dispatcher   dispatcher.Dispatcher
	OpenAI       *OpenAIConfig
	Wizard       *WizardConfig
	Logger       *zap.Logger
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Extraction service.ExtractionService
	Chat       service.ChatService
	Dashboard  service.DashboardService
	// WizardDeps lets in-process shells drive a wizard without the chat service
	WizardDeps wizard.Deps
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Backend == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("backend and session store are required")
	}
	logger := &zapLoggerAdapter{logger: deps.Logger}

	classifier := classify.New(deps.Wizard.HomeCountry, deps.Wizard.ContinentalCountries)
	extraction, err := service.NewExtractionService(
		deps.Completer,
		extract.New(classifier, nil, nil),
		service.ExtractionConfig{
			PromptTemplate: deps.UserTemplate,
			Timeout:        deps.OpenAI.Timeout,
			HomeCountry:    deps.Wizard.HomeCountry,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction service: %w", err)
	}

	wizardDeps := wizard.Deps{
		Gateway:    deps.Backend,
		Extractor:  extraction,
		Classifier: classifier,
		Logger:     logger,
	}

	chat := service.NewChatService(deps.Sessions, wizardDeps, deps.Dispatcher, service.ChatConfig{
		DefaultMode:   deps.Wizard.DefaultMode,
		SubmitTimeout: deps.Wizard.SubmitTimeout,
	}, logger)

	dashboard := service.NewDashboardService(deps.Backend, deps.Backend, export.NewExcelExporter(deps.Logger), logger)

	return &ServiceBundle{
		Extraction: extraction,
		Chat:       chat,
		Dashboard:  dashboard,
		WizardDeps: wizardDeps,
	}, nil
}

// ProvideHTTPServer creates the JSON API server.
func ProvideHTTPServer(cfg *ServerConfig, services *ServiceBundle, m *MetricsBundle, logger *zap.Logger) (*httpapi.Server, error) {
	auth, err := httpapi.NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	deps := httpapi.Deps{
		Chat:      services.Chat,
		Dashboard: services.Dashboard,
		Auth:      auth,
	}
	if m != nil {
		deps.Observer = m.Collector
		deps.Gatherer = m.Registry
	}

	return httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Host,
		Port:           cfg.Port,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
	}, deps, &zapLoggerAdapter{logger: logger})
}

// ProvideWorkers creates the worker manager with the idle session sweeper.
// Stores that expire sessions themselves get no sweeper.
func ProvideWorkers(cfg *SessionsConfig, chat service.ChatService, logger *zap.Logger) *worker.Manager {
	manager := worker.NewManager(logger)
	if cfg.Driver == SessionDriverRedis || cfg.SweepInterval <= 0 || cfg.TTL <= 0 {
		return manager
	}
	manager.Register(worker.NewSessionSweeper(chat, cfg.SweepInterval, cfg.TTL, logger))
	return manager
}
