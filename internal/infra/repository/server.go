package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"whatsfleet/internal/domain/fleetserver"
	"whatsfleet/internal/infra/database"
	"whatsfleet/pkg/logger"
)

// ServerRepository implements fleetserver.Repository using Bun ORM.
type ServerRepository struct {
	db     *bun.DB
	logger logger.Logger
}

func NewServerRepository(db *bun.DB, log logger.Logger) fleetserver.Repository {
	return &ServerRepository{db: db, logger: log}
}

// Upsert registers or re-registers a server identity at boot (§4.2).
func (r *ServerRepository) Upsert(ctx context.Context, s *fleetserver.Server) error {
	model := database.ToServerModel(s)

	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("url = EXCLUDED.url").
		Set("region = EXCLUDED.region").
		Set("priority = EXCLUDED.priority").
		Set("max_capacity = EXCLUDED.max_capacity").
		Set("is_active = EXCLUDED.is_active").
		Set("is_healthy = EXCLUDED.is_healthy").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		r.logger.ErrorWithError("failed to upsert server", err, logger.Fields{"server_id": s.ID()})
		return fmt.Errorf("failed to upsert server: %w", err)
	}
	return nil
}

func (r *ServerRepository) GetByID(ctx context.Context, id string) (*fleetserver.Server, error) {
	var model database.ServerModel
	err := r.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fleetserver.ErrServerNotFound
		}
		return nil, fmt.Errorf("failed to get server by id: %w", err)
	}
	return database.FromServerModel(&model), nil
}

func (r *ServerRepository) List(ctx context.Context) ([]*fleetserver.Server, error) {
	var models []database.ServerModel
	err := r.db.NewSelect().Model(&models).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	servers := make([]*fleetserver.Server, 0, len(models))
	for i := range models {
		servers = append(servers, database.FromServerModel(&models[i]))
	}
	return servers, nil
}

func (r *ServerRepository) UpdateHealth(ctx context.Context, id string, healthy bool, responseTimeMs int64) error {
	result, err := r.db.NewUpdate().
		Model((*database.ServerModel)(nil)).
		Set("is_healthy = ?", healthy).
		Set("response_time_ms = ?", responseTimeMs).
		Set("last_health_check = CURRENT_TIMESTAMP").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update server health: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fleetserver.ErrServerNotFound
	}
	return nil
}

func (r *ServerRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.NewUpdate().
		Model((*database.ServerModel)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set server active: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fleetserver.ErrServerNotFound
	}
	return nil
}

func (r *ServerRepository) SetLoad(ctx context.Context, id string, load int) error {
	result, err := r.db.NewUpdate().
		Model((*database.ServerModel)(nil)).
		Set("current_load = ?", load).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set server load: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fleetserver.ErrServerNotFound
	}
	return nil
}

// ListStale returns servers whose heartbeat predates cutoff, feeding the
// reaper's 120s-stale sweep (§4.2, §9).
func (r *ServerRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*fleetserver.Server, error) {
	var models []database.ServerModel
	err := r.db.NewSelect().Model(&models).
		Where("last_health_check < ?", cutoff).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale servers: %w", err)
	}
	servers := make([]*fleetserver.Server, 0, len(models))
	for i := range models {
		servers = append(servers, database.FromServerModel(&models[i]))
	}
	return servers, nil
}
