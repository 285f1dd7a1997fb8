package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/target/paystream-client/config"
	"github.com/target/paystream-client/internal/adapters/apiclient"
	"github.com/target/paystream-client/internal/adapters/artifacts"
	"github.com/target/paystream-client/internal/adapters/passwordauth"
	"github.com/target/paystream-client/internal/observability/statsd"
	"github.com/target/paystream-client/internal/ports"
	"github.com/target/paystream-client/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions      *service.SessionService
	Sync          *service.Synchronizer
	Workflows     *service.WorkflowService
	API           *apiclient.Client
	Observability ObservabilityContainer

	closers []func() error
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Store  ports.SessionStore
	Logger *slog.Logger

	// HTTPClient overrides the transport used for API calls (optional).
	HTTPClient *http.Client
	// Artifacts overrides where downloads are written (optional).
	Artifacts ports.ArtifactWriter
}

// buildObservability configures the metrics adapter.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// Sink returns the metrics sink, or nil when metrics are disabled.
//
//nolint:ireturn // callers accept any sink.
func (o ObservabilityContainer) Sink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// BuildServices wires the session, sync and workflow services. The persisted
// session is loaded before the synchronizer subscribes to it.
func BuildServices(ctx context.Context, deps ServiceDeps) (*ServiceContainer, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Store == nil {
		return nil, errors.New("session store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	obs := buildObservability(logger, cfg.Observability)
	c := &ServiceContainer{Observability: obs}
	if obs.MetricsSink != nil {
		c.closers = append(c.closers, obs.MetricsSink.Close)
	}
	built := false
	defer func() {
		if !built {
			_ = c.Close()
		}
	}()

	apiCfg := apiclient.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  cfg.API.UserAgent,
		HTTPClient: deps.HTTPClient,
		Logger:     logger,
	}

	// Auth calls carry no bearer; they get their own client.
	authAPI, err := apiclient.New(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("create auth api client: %w", err)
	}
	provider, err := passwordauth.NewProvider(passwordauth.ProviderConfig{API: authAPI, ClientID: cfg.API.ClientID})
	if err != nil {
		return nil, fmt.Errorf("create password auth provider: %w", err)
	}

	c.Sessions = service.NewSessionService(service.SessionServiceOptions{
		Authenticator: provider,
		Store:         deps.Store,
		Logger:        logger,
	})
	if initErr := c.Sessions.Init(ctx); initErr != nil {
		return nil, fmt.Errorf("load session: %w", initErr)
	}

	apiCfg.Tokens = c.Sessions
	c.API, err = apiclient.New(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	c.Sync = service.NewSynchronizer(service.SynchronizerOptions{
		API:      c.API,
		Sessions: c.Sessions,
		Logger:   logger,
		Metrics:  obs.Sink(),
	})
	c.closers = append(c.closers, func() error { c.Sync.Close(); return nil })

	writer := deps.Artifacts
	if writer == nil {
		writer = artifacts.NewDirWriter(cfg.Download.Dir)
	}
	c.Workflows = service.NewWorkflowService(service.WorkflowServiceOptions{
		API:       c.API,
		Sessions:  c.Sessions,
		Sync:      c.Sync,
		Artifacts: writer,
		Logger:    logger,
		Metrics:   obs.Sink(),
	})

	built = true
	return c, nil
}

// Open loads the session backend named in cfg and builds the services on it.
// Close releases both.
func Open(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*ServiceContainer, error) {
	store, closeStore, err := OpenSessionStore(ctx, SessionStoreConfig{
		Session: cfg.Session,
		Redis:   cfg.Redis,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	c, err := BuildServices(ctx, ServiceDeps{Config: cfg, Store: store, Logger: logger})
	if err != nil {
		if closeErr := closeStore(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close session store: %w", closeErr))
		}
		return nil, err
	}
	c.closers = append(c.closers, closeStore)
	return c, nil
}

// Close releases resources in reverse order of acquisition.
func (c *ServiceContainer) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
