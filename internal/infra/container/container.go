package container

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import SQLite driver for whatsmeow
	"github.com/uptrace/bun"
	"go.mau.fi/whatsmeow/store/sqlstore"

	"whatsfleet/internal/domain/broadcast"
	"whatsfleet/internal/domain/contact"
	"whatsfleet/internal/domain/device"
	"whatsfleet/internal/domain/fleetserver"
	"whatsfleet/internal/domain/whatsapp"
	"whatsfleet/internal/infra/assignment"
	brcast "whatsfleet/internal/infra/broadcast"
	infraCache "whatsfleet/internal/infra/cache"
	"whatsfleet/internal/infra/config"
	infraCred "whatsfleet/internal/infra/credential"
	"whatsfleet/internal/infra/connmgr"
	"whatsfleet/internal/infra/database"
	"whatsfleet/internal/infra/database/migrations"
	infraLogger "whatsfleet/internal/infra/logger"
	"whatsfleet/internal/infra/repository"
	"whatsfleet/internal/infra/supervisor"
	"whatsfleet/internal/infra/whats"
	"whatsfleet/pkg/logger"
	"whatsfleet/pkg/validator"
)

// Container holds all infrastructure dependencies: repositories, the fleet
// assignment controller (C3), the device supervisor (C4), and the broadcast
// worker/scheduler (C6-C8) alongside the ambient stack (logger, validator,
// database).
type Container struct {
	Config *config.Config

	Logger    logger.Logger
	Validator validator.Validator
	DB        *bun.DB

	DBConnection database.Connection
	Migrator     *migrations.Migrator

	DeviceRepo  device.Repository
	ServerRepo  fleetserver.Repository
	BroadcastRepo broadcast.Repository
	QueueRepo   broadcast.QueueRepository
	ContactRepo contact.Repository

	CredentialStore *infraCred.Store
	Cache           *infraCache.RedisCache

	WhatsAppStore *sqlstore.Container

	Assignment *assignment.Controller
	Supervisor *supervisor.Supervisor
	Worker     *brcast.Worker
	Scheduler  *brcast.Scheduler

	pollCancel context.CancelFunc
	pollDone   chan struct{}

	isInitialized bool
}

// New creates a new infrastructure container.
func New(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	if err := c.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	return c, nil
}

func (c *Container) initialize() error {
	if err := c.initializeLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	c.Logger.Info("initializing infrastructure container")

	if err := c.initializeValidator(); err != nil {
		return fmt.Errorf("failed to initialize validator: %w", err)
	}
	if err := c.initializeDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := c.initializeRepositories(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	if err := c.initializeCache(); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if err := c.initializeWhatsAppStore(); err != nil {
		return fmt.Errorf("failed to initialize WhatsApp store: %w", err)
	}
	if err := c.initializeFleet(); err != nil {
		return fmt.Errorf("failed to initialize fleet components: %w", err)
	}

	c.isInitialized = true
	c.Logger.Info("infrastructure container initialized successfully")
	return nil
}

func (c *Container) initializeLogger() error {
	c.Logger = infraLogger.New(&c.Config.Log)
	return nil
}

func (c *Container) initializeValidator() error {
	c.Validator = validator.New()
	return nil
}

func (c *Container) initializeDatabase() error {
	dbConn, err := database.New(&c.Config.Database, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	c.DBConnection = dbConn
	c.DB = dbConn.GetDB()
	c.Migrator = migrations.NewMigrator(c.DB, c.Logger)

	if c.Config.Database.AutoMigrate {
		ctx := context.Background()
		if err := c.Migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	return nil
}

func (c *Container) initializeRepositories() error {
	c.DeviceRepo = repository.NewDeviceRepository(c.DB, c.Logger)
	c.ServerRepo = repository.NewServerRepository(c.DB, c.Logger)
	c.BroadcastRepo = repository.NewBroadcastRepository(c.DB, c.Logger)
	c.QueueRepo = repository.NewQueueRepository(c.DB, c.Logger)
	c.ContactRepo = repository.NewContactRepository(c.DB, c.Logger)
	c.CredentialStore = infraCred.NewStore(c.DeviceRepo, c.Logger)

	c.Logger.Info("repositories initialized")
	return nil
}

func (c *Container) initializeCache() error {
	cache, err := infraCache.New(c.Config.Cache.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to cache: %w", err)
	}
	c.Cache = cache
	return nil
}

// initializeWhatsAppStore opens whatsmeow's own credential store over the
// same database — it remains the cryptographic source of truth (C1); the
// fleet's own credential.Store only mirrors a recoverability bookkeeping
// snapshot alongside it.
func (c *Container) initializeWhatsAppStore() error {
	dbURL := c.Config.Database.URL
	dbDriver := c.Config.Database.Driver

	switch dbDriver {
	case "sqlite", "sqlite3":
		dbDriver = "sqlite3"
		if dbURL == "./data/whatsfleet.db" {
			dbURL = "./data/whatsfleet.db?_foreign_keys=on"
		} else if !strings.Contains(dbURL, ":memory:") && !strings.Contains(dbURL, "mode=memory") && !strings.Contains(dbURL, "_foreign_keys") {
			if strings.Contains(dbURL, "?") {
				dbURL += "&_foreign_keys=on"
			} else {
				dbURL += "?_foreign_keys=on"
			}
		}
	case "postgres", "postgresql":
		dbDriver = "postgres"
	default:
		return fmt.Errorf("unsupported database driver for WhatsApp store: %s", dbDriver)
	}

	waLogger := whats.NewLoggerAdapter(c.Logger, "WhatsApp")
	whatsappStore, err := sqlstore.New(context.Background(), dbDriver, dbURL, waLogger)
	if err != nil {
		return fmt.Errorf("failed to create WhatsApp store: %w", err)
	}
	if err := whatsappStore.Upgrade(context.Background()); err != nil {
		return fmt.Errorf("failed to upgrade WhatsApp store: %w", err)
	}
	c.WhatsAppStore = whatsappStore
	return nil
}

// initializeFleet wires the assignment controller (C3), the supervisor (C4)
// with its connmgr.ClientFactory closure over whats.NewClient, and the
// broadcast worker/scheduler (C6-C8).
func (c *Container) initializeFleet() error {
	assign, err := assignment.New(c.Config.Fleet, c.ServerRepo, c.DeviceRepo, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to build assignment controller: %w", err)
	}
	c.Assignment = assign

	factory := connmgr.ClientFactory(func(id device.ID, savedJID, proxyURL string) (whatsapp.Client, error) {
		return whats.NewClient(id, c.WhatsAppStore, savedJID, proxyURL, c.Logger)
	})

	c.Supervisor = supervisor.New(
		assign.ServerID(),
		c.DeviceRepo,
		assign,
		factory,
		c.CredentialStore,
		c.Cache,
		c.Config.Fleet.StaleConnectingAge,
		c.Config.Fleet.SupervisorTick,
		c.Logger,
	)

	c.Worker = brcast.NewWorker(
		assign.ServerID(),
		c.Config.Broadcast.WorkerConcurrency,
		c.BroadcastRepo,
		c.QueueRepo,
		c.ContactRepo,
		c.DeviceRepo,
		c.Supervisor,
		c.Logger,
	)

	c.Scheduler = brcast.NewScheduler(c.BroadcastRepo, c.QueueRepo, c.Logger)

	return nil
}

// Start begins the assignment controller's registration/health/reaper ticks,
// the supervisor's reconcile tick, the broadcast scheduler's promote/requeue
// ticks, and a dedicated worker-poll loop.
func (c *Container) Start(ctx context.Context) error {
	if err := c.Assignment.Start(ctx); err != nil {
		return fmt.Errorf("start assignment controller: %w", err)
	}
	if err := c.Supervisor.Start(ctx); err != nil {
		return fmt.Errorf("start supervisor: %w", err)
	}
	if err := c.Scheduler.Start(ctx, c.Config.Broadcast.SchedulerTick, c.Config.Broadcast.QueueingTick); err != nil {
		return fmt.Errorf("start broadcast scheduler: %w", err)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})
	go c.pollLoop(pollCtx)

	return nil
}

// pollLoop ticks the broadcast worker's claim-and-run cycle on its own short
// interval, independent of the scheduler's promote/requeue cadence.
func (c *Container) pollLoop(ctx context.Context) {
	defer close(c.pollDone)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Worker.Poll(ctx)
		}
	}
}

// Close gracefully shuts down all infrastructure components.
func (c *Container) Close() error {
	if !c.isInitialized {
		return nil
	}

	c.Logger.Info("shutting down infrastructure container")

	var errs []error

	if c.pollCancel != nil {
		c.pollCancel()
		<-c.pollDone
	}
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Supervisor != nil {
		c.Supervisor.Stop()
	}
	if c.Assignment != nil {
		c.Assignment.Stop()
	}

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
		}
	}
	if c.WhatsAppStore != nil {
		if err := c.WhatsAppStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close WhatsApp store: %w", err))
		}
	}
	if c.DBConnection != nil {
		if err := c.DBConnection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	if len(errs) > 0 {
		for _, err := range errs {
			c.Logger.ErrorWithError("error during container shutdown", err, nil)
		}
		return fmt.Errorf("multiple errors during shutdown: %v", errs)
	}

	c.Logger.Info("infrastructure container shut down successfully")
	return nil
}

// Health checks the health of the database connection. The cache is not
// probed.
func (c *Container) Health() error {
	if !c.isInitialized {
		return fmt.Errorf("container not initialized")
	}
	if err := c.DBConnection.Health(); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (c *Container) IsInitialized() bool {
	return c.isInitialized
}

// GetDatabaseStats returns database connection statistics.
func (c *Container) GetDatabaseStats() interface{} {
	if c.DB == nil {
		return sql.DBStats{}
	}
	return c.DB.DB.Stats()
}

// ActiveConnections counts devices currently connected and owned by this
// server, the figure SPEC_FULL.md's simplified health contract reports.
func (c *Container) ActiveConnections(ctx context.Context) (int, error) {
	connected, err := c.DeviceRepo.GetByStatus(ctx, device.StatusConnected, 100000, 0)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range connected {
		if c.Assignment == nil || d.IsOwnedBy(c.Assignment.ServerID()) {
			n++
		}
	}
	return n, nil
}

// ResetDatabase drops and recreates all database tables.
func (c *Container) ResetDatabase() error {
	if c.Migrator == nil {
		return fmt.Errorf("migrator not initialized")
	}
	c.Logger.Warn("resetting database")
	return c.Migrator.Reset(context.Background())
}

// MigrateDatabase runs database migrations.
func (c *Container) MigrateDatabase() error {
	if c.Migrator == nil {
		return fmt.Errorf("migrator not initialized")
	}
	c.Logger.Info("running database migrations")
	return c.Migrator.Migrate(context.Background())
}
