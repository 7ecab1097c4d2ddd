package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	goredis "github.com/redis/go-redis/v9"

	"github.com/harborcrm/harbor/internal/bootstrap"
	"github.com/harborcrm/harbor/internal/config"
	"github.com/harborcrm/harbor/internal/events"
	"github.com/harborcrm/harbor/internal/idempotency"
	"github.com/harborcrm/harbor/internal/modules/leads"
	"github.com/harborcrm/harbor/internal/modules/notifications"
	"github.com/harborcrm/harbor/internal/modules/projects"
	"github.com/harborcrm/harbor/internal/modules/tasks"
	"github.com/harborcrm/harbor/internal/platform/logger"
	"github.com/harborcrm/harbor/internal/platform/postgres"
	"github.com/harborcrm/harbor/internal/platform/redis"
)

// application holds the wired components shared by main and the router.
type application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Bus      *events.Bus
	Projects *projects.Service
	Leads    *leads.Service

	db          *sql.DB
	redisClient *goredis.Client
}

// Cleanup releases external connections. Safe to call with partially
// initialized state.
func (a *application) Cleanup() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("failed to close database", "error", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.Logger.Error("failed to close redis client", "error", err)
		}
	}
}

// initializeApp loads configuration and wires the application components:
// idempotency store backend, event registry and bus, module services, and
// the bootstrap of every module's handler list.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"idempotency_backend", cfg.Idempotency.Backend)

	app := &application{
		Config: cfg,
		Logger: appLogger,
	}

	store, err := app.buildIdempotencyStore()
	if err != nil {
		app.Cleanup()
		return nil, err
	}

	registry := events.NewRegistry(appLogger)
	app.Bus = events.NewBus(registry, store, appLogger)

	// Module services. Their relational stores live in the host
	// application's schema; the in-memory stores keep this binary
	// self-contained.
	tasksService := tasks.NewService(tasks.NewMemoryStore(), appLogger)
	notificationsService := notifications.NewService(
		notifications.LogNotifier{Logger: appLogger},
		appLogger,
	)
	app.Projects = projects.NewService(projects.NewMemoryStore(), app.Bus, appLogger)
	app.Leads = leads.NewService(leads.NewMemoryStore(), app.Bus, appLogger)

	defaultRetry := events.DefaultRetryPolicy
	defaultRetry.MaxAttempts = cfg.EventBus.DefaultMaxAttempts
	loader := bootstrap.NewLoader(registry, appLogger,
		bootstrap.WithDescriptorDefaults(cfg.EventBus.DefaultTimeout, defaultRetry))
	loader.Load([]bootstrap.ModuleHandlers{
		{Module: tasks.ModuleName, Handlers: tasksService.EventHandlers()},
		{Module: notifications.ModuleName, Handlers: notificationsService.EventHandlers()},
	})

	return app, nil
}

// buildIdempotencyStore selects the completion-record backend. In-memory is
// the default: the domain events are low-volume administrative events and
// nothing requires dedup records to survive a restart.
func (a *application) buildIdempotencyStore() (idempotency.Store, error) {
	switch a.Config.Idempotency.Backend {
	case "postgres":
		if a.Config.Database.URL == "" {
			return nil, fmt.Errorf("postgres idempotency backend requires database.url")
		}
		db, err := sql.Open("pgx", a.Config.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.db = db
		if err := postgres.Migrate(db); err != nil {
			return nil, err
		}
		return postgres.NewIdempotencyStore(db), nil

	case "redis":
		if a.Config.Redis.Addr == "" {
			return nil, fmt.Errorf("redis idempotency backend requires redis.addr")
		}
		a.redisClient = goredis.NewClient(&goredis.Options{Addr: a.Config.Redis.Addr})
		return redis.NewIdempotencyStore(a.redisClient), nil

	default:
		return idempotency.NewMemoryStore(), nil
	}
}
