package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/abtest"
	"github.com/emiliopalmerini/abtrack/internal/adapters/analytics"
	"github.com/emiliopalmerini/abtrack/internal/adapters/nats"
	"github.com/emiliopalmerini/abtrack/internal/adapters/otel"
	"github.com/emiliopalmerini/abtrack/internal/adapters/turso"
	"github.com/emiliopalmerini/abtrack/internal/config"
	"github.com/emiliopalmerini/abtrack/internal/migrate"
	"github.com/emiliopalmerini/abtrack/internal/ports"
	"github.com/emiliopalmerini/abtrack/internal/registry"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *turso.DB
	Registry *registry.Registry
	Events   ports.EventRepository
	Store    ports.KeyValueStore

	dispatcher *abtest.Dispatcher
}

// NewAppContext loads configuration, opens the database and applies
// pending migrations.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if registryPath != "" {
		cfg.RegistryPath = registryPath
	}
	if namespace != "" {
		cfg.Namespace = namespace
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	return newAppContext(ctx, cfg, logger)
}

func newAppContext(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*AppContext, error) {
	reg, err := loadRegistry(cfg.RegistryPath, logger)
	if err != nil {
		return nil, err
	}

	db, err := turso.NewDB(turso.Config{
		LocalPath:  cfg.Database.Path,
		PrimaryURL: cfg.Database.URL,
		AuthToken:  cfg.Database.AuthToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := migrate.NewMigrator(db.DB, logger).Up(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &AppContext{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Registry: reg,
		Events:   turso.NewEventRepository(db.DB),
		Store:    turso.NewKVStore(db.DB, cfg.Namespace),
	}, nil
}

func loadRegistry(path string, logger *zap.Logger) (*registry.Registry, error) {
	if path == "" {
		return registry.New(registry.Defaults(), logger)
	}
	reg, err := registry.Load(path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

// Manager returns an assignment engine for this device. Tracked events go
// to the client-side sinks.
func (a *AppContext) Manager(ctx context.Context) *abtest.Manager {
	if a.dispatcher == nil {
		a.dispatcher = a.NewDispatcher(ctx, analytics.ClientSinks(a.Config.Analytics))
	}
	return abtest.New(ctx, a.Registry, a.Store,
		abtest.WithLogger(a.Logger),
		abtest.WithDispatcher(a.dispatcher),
	)
}

// NewDispatcher adds the NATS and OTEL sinks, when configured, to sinks.
func (a *AppContext) NewDispatcher(ctx context.Context, sinks []ports.EventSink, opts ...abtest.DispatcherOption) *abtest.Dispatcher {
	cfg := a.Config

	if cfg.NATS.URL != "" {
		s, err := nats.Connect(cfg.NATS)
		if err != nil {
			a.Logger.Warn("NATS sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, s)
		}
	}

	if cfg.OTEL.Enabled {
		s, err := otel.NewSink(ctx, cfg.OTEL)
		if err != nil {
			a.Logger.Warn("OTEL sink disabled", zap.Error(err))
			sinks = append(sinks, otel.NewNoOpSink())
		} else {
			sinks = append(sinks, s)
		}
	}

	opts = append([]abtest.DispatcherOption{
		abtest.WithDispatchLogger(a.Logger),
		abtest.WithQueueSize(cfg.Dispatch.QueueSize),
		abtest.WithSendTimeout(cfg.Dispatch.SendTimeout),
	}, opts...)
	return abtest.NewDispatcher(sinks, opts...)
}

// Close flushes pending events and releases the database.
func (a *AppContext) Close() error {
	if a.dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		if err := a.dispatcher.Close(ctx); err != nil {
			a.Logger.Warn("failed to flush events", zap.Error(err))
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
