package fleetserver

import (
	"context"
	"time"
)

// Repository persists backend server records for the assignment controller.
type Repository interface {
	Upsert(ctx context.Context, s *Server) error
	GetByID(ctx context.Context, id string) (*Server, error)
	List(ctx context.Context) ([]*Server, error)
	UpdateHealth(ctx context.Context, id string, healthy bool, responseTimeMs int64) error
	SetActive(ctx context.Context, id string, active bool) error
	SetLoad(ctx context.Context, id string, load int) error

	// ListStale returns servers whose heartbeat predates the cutoff, for the reaper.
	ListStale(ctx context.Context, cutoff time.Time) ([]*Server, error)
}
