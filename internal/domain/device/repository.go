package device

import "context"

// Repository persists devices.
type Repository interface {
	Create(ctx context.Context, d *Device) error
	GetByID(ctx context.Context, id ID) (*Device, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*Device, int, error)
	Update(ctx context.Context, d *Device) error
	Delete(ctx context.Context, id ID) error
	Exists(ctx context.Context, id ID) (bool, error)

	// GetByStatus lists devices in a given status, used by the supervisor (C4)
	// to find work and by the connection manager's stale-device GC (P8).
	GetByStatus(ctx context.Context, status Status, limit, offset int) ([]*Device, error)

	// GetAssignedTo lists devices currently owned by a given server.
	GetAssignedTo(ctx context.Context, serverID string, limit, offset int) ([]*Device, error)

	// ClaimUnassigned atomically assigns an unowned device to serverID.
	// Returns false (no error) when another server won the race.
	ClaimUnassigned(ctx context.Context, id ID, serverID string) (bool, error)

	// ReleaseAssignedTo clears assignment for every device owned by serverID,
	// used by the assignment controller's reaper (§4.2) in a single statement.
	ReleaseAssignedTo(ctx context.Context, serverID string) (int, error)

	// UpdateSessionBlob persists just the credential snapshot (C1).
	UpdateSessionBlob(ctx context.Context, id ID, blob []byte) error
}
