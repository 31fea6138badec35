// Package credential implements C1, the credential store and auth-state
// adapter sitting in front of whatsmeow's own sqlstore.Container. whatsmeow
// remains the cryptographic source of truth; this package maintains the
// lightweight bookkeeping snapshot (credential.Snapshot) mirrored onto the
// device row so the fleet can answer "is this device registered" without
// touching whatsmeow's tables directly.
package credential

import (
	"context"
	"fmt"

	"whatsfleet/internal/domain/credential"
	"whatsfleet/internal/domain/device"
	"whatsfleet/pkg/logger"
)

// Store persists and retrieves the bookkeeping snapshot for a device,
// grounded on the same repository-wrapping shape as
// internal/infra/repository/device.go's UpdateSessionBlob.
type Store struct {
	devices device.Repository
	logger  logger.Logger
}

func NewStore(devices device.Repository, log logger.Logger) *Store {
	return &Store{devices: devices, logger: log}
}

// Save encodes and persists a snapshot for the given device.
func (s *Store) Save(ctx context.Context, id device.ID, snap credential.Snapshot) error {
	blob, err := credential.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode credential snapshot: %w", err)
	}
	if err := s.devices.UpdateSessionBlob(ctx, id, blob); err != nil {
		return fmt.Errorf("persist credential snapshot: %w", err)
	}
	return nil
}

// Load reads back a device's snapshot. A device with no saved blob yields
// the zero Snapshot (Registered=false), not an error.
func (s *Store) Load(ctx context.Context, id device.ID) (credential.Snapshot, error) {
	d, err := s.devices.GetByID(ctx, id)
	if err != nil {
		return credential.Snapshot{}, err
	}
	snap, err := credential.Decode(d.SessionBlob())
	if err != nil {
		s.logger.WarnWithFields("corrupt credential snapshot, treating as unregistered", logger.Fields{
			"device_id": id.String(),
		})
		return credential.Snapshot{}, nil
	}
	return snap, nil
}

// Clear wipes the snapshot, used on logout (device.Device.LogOut already
// clears the in-memory field; this persists that clearing).
func (s *Store) Clear(ctx context.Context, id device.ID) error {
	return s.devices.UpdateSessionBlob(ctx, id, nil)
}
