package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"whatsfleet/internal/domain/device"
	"whatsfleet/internal/infra/database"
	"whatsfleet/pkg/logger"
)

// DeviceRepository implements device.Repository using Bun ORM's query
// builder, including the conditional-update claim/release pattern the fleet
// assignment controller needs (§4.2).
type DeviceRepository struct {
	db     *bun.DB
	logger logger.Logger
}

func NewDeviceRepository(db *bun.DB, log logger.Logger) device.Repository {
	return &DeviceRepository{db: db, logger: log}
}

func (r *DeviceRepository) Create(ctx context.Context, d *device.Device) error {
	model := database.ToDeviceModel(d)

	_, err := r.db.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		r.logger.ErrorWithError("failed to create device", err, logger.Fields{"device_id": d.ID().String()})
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, id device.ID) (*device.Device, error) {
	var model database.DeviceModel
	err := r.db.NewSelect().Model(&model).Where("id = ?", id.String()).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, device.NewNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get device by id: %w", err)
	}
	return database.FromDeviceModel(&model)
}

func (r *DeviceRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*device.Device, int, error) {
	var models []database.DeviceModel
	q := r.db.NewSelect().Model(&models)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}

	countQ := r.db.NewSelect().Model((*database.DeviceModel)(nil))
	if ownerID != "" {
		countQ = countQ.Where("owner_id = ?", ownerID)
	}
	total, err := countQ.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	devices := make([]*device.Device, 0, len(models))
	for i := range models {
		d, err := database.FromDeviceModel(&models[i])
		if err != nil {
			r.logger.ErrorWithError("failed to convert device model", err, logger.Fields{"device_id": models[i].ID})
			continue
		}
		devices = append(devices, d)
	}
	return devices, total, nil
}

func (r *DeviceRepository) Update(ctx context.Context, d *device.Device) error {
	model := database.ToDeviceModel(d)

	result, err := r.db.NewUpdate().Model(model).Where("id = ?", d.ID().String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return device.NewNotFoundError(d.ID())
	}
	return nil
}

func (r *DeviceRepository) Delete(ctx context.Context, id device.ID) error {
	result, err := r.db.NewDelete().Model((*database.DeviceModel)(nil)).Where("id = ?", id.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return device.NewNotFoundError(id)
	}
	return nil
}

func (r *DeviceRepository) Exists(ctx context.Context, id device.ID) (bool, error) {
	count, err := r.db.NewSelect().Model((*database.DeviceModel)(nil)).Where("id = ?", id.String()).Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check device existence: %w", err)
	}
	return count > 0, nil
}

func (r *DeviceRepository) GetByStatus(ctx context.Context, status device.Status, limit, offset int) ([]*device.Device, error) {
	var models []database.DeviceModel
	err := r.db.NewSelect().Model(&models).
		Where("status = ?", status.String()).
		Order("updated_at ASC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices by status: %w", err)
	}
	return r.convertAll(models), nil
}

func (r *DeviceRepository) GetAssignedTo(ctx context.Context, serverID string, limit, offset int) ([]*device.Device, error) {
	var models []database.DeviceModel
	err := r.db.NewSelect().Model(&models).
		Where("assigned_server_id = ?", serverID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices assigned to server: %w", err)
	}
	return r.convertAll(models), nil
}

// ClaimUnassigned atomically assigns an unowned device to serverID. The
// WHERE clause only matches rows still unassigned, so RowsAffected()==1
// tells the caller it won the race; 0 means another server claimed first.
func (r *DeviceRepository) ClaimUnassigned(ctx context.Context, id device.ID, serverID string) (bool, error) {
	result, err := r.db.NewUpdate().
		Model((*database.DeviceModel)(nil)).
		Set("assigned_server_id = ?", serverID).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id.String()).
		Where("(assigned_server_id IS NULL OR assigned_server_id = '')").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to claim device: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// ReleaseAssignedTo clears assignment for every device owned by serverID in a
// single statement, used by the assignment controller's reaper (§4.2).
func (r *DeviceRepository) ReleaseAssignedTo(ctx context.Context, serverID string) (int, error) {
	result, err := r.db.NewUpdate().
		Model((*database.DeviceModel)(nil)).
		Set("assigned_server_id = ''").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("assigned_server_id = ?", serverID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to release devices: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}

func (r *DeviceRepository) UpdateSessionBlob(ctx context.Context, id device.ID, blob []byte) error {
	result, err := r.db.NewUpdate().
		Model((*database.DeviceModel)(nil)).
		Set("session_blob = ?", blob).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update session blob: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return device.NewNotFoundError(id)
	}
	return nil
}

func (r *DeviceRepository) convertAll(models []database.DeviceModel) []*device.Device {
	devices := make([]*device.Device, 0, len(models))
	for i := range models {
		d, err := database.FromDeviceModel(&models[i])
		if err != nil {
			r.logger.ErrorWithError("failed to convert device model", err, logger.Fields{"device_id": models[i].ID})
			continue
		}
		devices = append(devices, d)
	}
	return devices
}
