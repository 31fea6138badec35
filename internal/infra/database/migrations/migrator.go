package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"whatsfleet/internal/infra/database"
	"whatsfleet/pkg/logger"
)

// Migrator handles database migrations
type Migrator struct {
	db     *bun.DB
	logger logger.Logger
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *bun.DB, log logger.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: log,
	}
}

// Migrate runs all database migrations
func (m *Migrator) Migrate(ctx context.Context) error {
	m.logger.Info("starting database migrations")

	// Create our application tables - whatsmeow manages its own auth-state
	// tables directly (C1/C2 split, §4.1).
	models := []interface{}{
		(*database.DeviceModel)(nil),
		(*database.DeviceConnectionEventModel)(nil),
		(*database.ServerModel)(nil),
		(*database.ServerActionModel)(nil),
		(*database.BroadcastModel)(nil),
		(*database.BroadcastJobModel)(nil),
		(*database.ContactModel)(nil),
	}

	for _, model := range models {
		if err := m.createTable(ctx, model); err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	// Create indexes
	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	// Create triggers for updated_at
	if err := m.createTriggers(ctx); err != nil {
		return fmt.Errorf("failed to create triggers: %w", err)
	}

	m.logger.Info("database migrations completed successfully")
	return nil
}

// createTable creates a table if it doesn't exist
func (m *Migrator) createTable(ctx context.Context, model interface{}) error {
	// Log table creation with simple name extraction
	tableName := tableNameFor(model)

	m.logger.InfoWithFields("creating table", logger.Fields{
		"table": tableName,
	})

	// Use Bun's CreateTable
	query := m.db.NewCreateTable().
		Model(model).
		IfNotExists()

	// Log the SQL query for debugging
	sqlQuery, args := query.AppendQuery(m.db.Formatter(), nil)
	m.logger.DebugWithFields("executing create table query", logger.Fields{
		"table": tableName,
		"sql":   string(sqlQuery),
		"args":  args,
	})

	_, err := query.Exec(ctx)

	if err != nil {
		m.logger.ErrorWithError("failed to create table", err, logger.Fields{
			"table": tableName,
			"sql":   string(sqlQuery),
		})
		return err
	}

	// Table creation completed successfully
	m.logger.DebugWithFields("table creation completed", logger.Fields{
		"table": tableName,
	})

	m.logger.InfoWithFields("table created or verified", logger.Fields{
		"table": tableName,
	})

	return nil
}

// createIndexes creates database indexes
func (m *Migrator) createIndexes(ctx context.Context) error {
	indexes := []string{
		// devices
		"CREATE INDEX IF NOT EXISTS idx_devices_owner_id ON devices(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_devices_status ON devices(status)",
		"CREATE INDEX IF NOT EXISTS idx_devices_assigned_server_id ON devices(assigned_server_id)",
		"CREATE INDEX IF NOT EXISTS idx_devices_wa_jid ON devices(wa_jid)",
		"CREATE INDEX IF NOT EXISTS idx_device_connection_events_device_id ON device_connection_events(device_id)",

		// backend_servers
		"CREATE INDEX IF NOT EXISTS idx_backend_servers_is_active ON backend_servers(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_backend_servers_last_health_check ON backend_servers(last_health_check)",
		"CREATE INDEX IF NOT EXISTS idx_server_actions_server_id ON server_actions(server_id)",

		// broadcasts / broadcast_jobs
		"CREATE INDEX IF NOT EXISTS idx_broadcasts_owner_id ON broadcasts(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_broadcasts_device_id ON broadcasts(device_id)",
		"CREATE INDEX IF NOT EXISTS idx_broadcasts_status ON broadcasts(status)",
		"CREATE INDEX IF NOT EXISTS idx_broadcasts_scheduled_at ON broadcasts(scheduled_at)",
		"CREATE INDEX IF NOT EXISTS idx_broadcast_jobs_broadcast_id ON broadcast_jobs(broadcast_id)",
		"CREATE INDEX IF NOT EXISTS idx_broadcast_jobs_status ON broadcast_jobs(status)",
		"CREATE INDEX IF NOT EXISTS idx_broadcast_jobs_next_attempt_at ON broadcast_jobs(next_attempt_at)",

		// contacts
		"CREATE INDEX IF NOT EXISTS idx_contacts_owner_id ON contacts(owner_id)",
	}

	for _, indexSQL := range indexes {
		if _, err := m.db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", indexSQL, err)
		}
	}

	m.logger.InfoWithFields("database indexes created", logger.Fields{
		"count": len(indexes),
	})

	return nil
}

// createTriggers creates database triggers for automatic updated_at timestamps
func (m *Migrator) createTriggers(ctx context.Context) error {
	// Detect database type by checking dialect
	dialectName := fmt.Sprintf("%T", m.db.Dialect())

	var triggers []string

	sqliteTables := []string{"devices", "backend_servers", "broadcasts", "broadcast_jobs", "contacts"}

	switch dialectName {
	case "*sqlitedialect.Dialect":
		for _, table := range sqliteTables {
			triggers = append(triggers, fmt.Sprintf(
				`CREATE TRIGGER IF NOT EXISTS update_%s_updated_at
				 AFTER UPDATE ON %s
				 BEGIN
				   UPDATE %s SET updated_at = CURRENT_TIMESTAMP WHERE rowid = NEW.rowid;
				 END`, table, table, table))
		}
	case "*pgdialect.Dialect":
		// PostgreSQL uses functions and triggers differently
		triggers = []string{
			// Create function for updating timestamp
			`CREATE OR REPLACE FUNCTION update_updated_at_column()
			 RETURNS TRIGGER AS $$
			 BEGIN
			   NEW.updated_at = CURRENT_TIMESTAMP;
			   RETURN NEW;
			 END;
			 $$ language 'plpgsql'`,
		}
		for _, table := range sqliteTables {
			triggers = append(triggers,
				fmt.Sprintf(`DROP TRIGGER IF EXISTS update_%s_updated_at ON %s`, table, table),
				fmt.Sprintf(`CREATE TRIGGER update_%s_updated_at
				 BEFORE UPDATE ON %s
				 FOR EACH ROW EXECUTE FUNCTION update_updated_at_column()`, table, table))
		}
	default:
		m.logger.WarnWithFields("unknown database type, skipping triggers", logger.Fields{
			"database": dialectName,
		})
		return nil
	}

	for _, triggerSQL := range triggers {
		if _, err := m.db.ExecContext(ctx, triggerSQL); err != nil {
			return fmt.Errorf("failed to create trigger: %s: %w", triggerSQL, err)
		}
	}

	m.logger.InfoWithFields("database triggers created", logger.Fields{
		"count":    len(triggers),
		"database": dialectName,
	})

	return nil
}

// Drop drops all tables (useful for testing)
func (m *Migrator) Drop(ctx context.Context) error {
	m.logger.Warn("dropping all database tables")

	models := []interface{}{
		(*database.DeviceConnectionEventModel)(nil),
		(*database.DeviceModel)(nil),
		(*database.ServerActionModel)(nil),
		(*database.ServerModel)(nil),
		(*database.BroadcastJobModel)(nil),
		(*database.BroadcastModel)(nil),
		(*database.ContactModel)(nil),
	}

	for _, model := range models {
		if err := m.dropTable(ctx, model); err != nil {
			return fmt.Errorf("failed to drop table for model %T: %w", model, err)
		}
	}

	m.logger.Info("all database tables dropped")
	return nil
}

// dropTable drops a table
func (m *Migrator) dropTable(ctx context.Context, model interface{}) error {
	_, err := m.db.NewDropTable().
		Model(model).
		IfExists().
		Exec(ctx)

	if err != nil {
		return err
	}

	tableName := tableNameFor(model)

	m.logger.InfoWithFields("table dropped", logger.Fields{
		"table": tableName,
	})

	return nil
}

// tableNameFor extracts the logical table name for a model, used for logging only.
func tableNameFor(model interface{}) string {
	switch model.(type) {
	case *database.DeviceModel:
		return "devices"
	case *database.DeviceConnectionEventModel:
		return "device_connection_events"
	case *database.ServerModel:
		return "backend_servers"
	case *database.ServerActionModel:
		return "server_actions"
	case *database.BroadcastModel:
		return "broadcasts"
	case *database.BroadcastJobModel:
		return "broadcast_jobs"
	case *database.ContactModel:
		return "contacts"
	default:
		return "unknown"
	}
}

// Reset drops and recreates all tables
func (m *Migrator) Reset(ctx context.Context) error {
	m.logger.Warn("resetting database (drop and recreate all tables)")

	if err := m.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to recreate tables: %w", err)
	}

	m.logger.Info("database reset completed")
	return nil
}
