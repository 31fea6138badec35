// Package supervisor implements the device supervisor (C4, §4.3): a single
// cooperative reconciliation loop that claims unassigned devices, starts and
// tears down per-device connection managers, and garbage-collects devices
// stuck connecting. It is the sole writer of the in-memory device->manager
// map; the broadcast worker pool only ever reads it.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"whatsfleet/internal/domain/credential"
	"whatsfleet/internal/domain/device"
	"whatsfleet/internal/infra/assignment"
	"whatsfleet/internal/infra/connmgr"
	"whatsfleet/pkg/logger"
)

// Supervisor owns the device->ConnectionManager map for this process.
type Supervisor struct {
	serverID   string
	devices    device.Repository
	assign     *assignment.Controller
	factory    connmgr.ClientFactory
	creds      *credential.Store
	cache      connmgr.Cache
	logger     logger.Logger
	staleAfter time.Duration
	tick       time.Duration

	mu       sync.RWMutex
	managers map[string]*connmgr.Manager

	cron *cron.Cron
}

func New(
	serverID string,
	devices device.Repository,
	assign *assignment.Controller,
	factory connmgr.ClientFactory,
	creds *credential.Store,
	cache connmgr.Cache,
	staleAfter, tick time.Duration,
	log logger.Logger,
) *Supervisor {
	return &Supervisor{
		serverID:   serverID,
		devices:    devices,
		assign:     assign,
		factory:    factory,
		creds:      creds,
		cache:      cache,
		staleAfter: staleAfter,
		tick:       tick,
		logger:     log,
		managers:   make(map[string]*connmgr.Manager),
	}
}

// ManagerFor returns the live connection manager for id, if any — the
// accessor the broadcast worker pool uses (§4.5 C7 step 1).
func (s *Supervisor) ManagerFor(id device.ID) (*connmgr.Manager, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.managers[id.String()]
	return m, ok
}

// Start schedules the reconciliation tick (every 10s, §4.3).
func (s *Supervisor) Start(ctx context.Context) error {
	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", s.tick)
	if _, err := s.cron.AddFunc(spec, func() { s.reconcile(ctx) }); err != nil {
		return fmt.Errorf("schedule supervisor tick: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the tick and tears down every live manager (graceful shutdown,
// §5: "tear down all Connection Managers").
func (s *Supervisor) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.mu.Lock()
	managers := make([]*connmgr.Manager, 0, len(s.managers))
	for _, m := range s.managers {
		managers = append(managers, m)
	}
	s.managers = make(map[string]*connmgr.Manager)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, m := range managers {
		wg.Add(1)
		go func(m *connmgr.Manager) {
			defer wg.Done()
			m.Stop()
		}(m)
	}
	wg.Wait()
}

// reconcile is one iteration of §4.3's steps 1-6. It must be idempotent:
// a steady-state fleet produces no side effects on repeat calls.
func (s *Supervisor) reconcile(ctx context.Context) {
	connecting, err := s.devices.GetByStatus(ctx, device.StatusConnecting, 1000, 0)
	if err != nil {
		s.logger.ErrorWithError("supervisor: list connecting devices failed", err, nil)
		return
	}
	connected, err := s.devices.GetByStatus(ctx, device.StatusConnected, 1000, 0)
	if err != nil {
		s.logger.ErrorWithError("supervisor: list connected devices failed", err, nil)
		return
	}
	all := append(connecting, connected...)

	var mine, unassigned []*device.Device
	for _, d := range all {
		switch {
		case d.IsUnassigned():
			unassigned = append(unassigned, d)
		case d.IsOwnedBy(s.serverID):
			mine = append(mine, d)
		}
	}

	// Step 3: attempt to claim unassigned connecting devices.
	for _, d := range unassigned {
		if d.Status() != device.StatusConnecting {
			continue
		}
		ok, err := s.assign.Acquire(ctx, d.ID())
		if err != nil {
			s.logger.ErrorWithError("supervisor: claim failed", err, logger.Fields{"device_id": d.ID().String()})
			continue
		}
		if ok {
			mine = append(mine, d)
		}
	}

	// Step 5: stuck-connecting GC, before we try to (re)start anything.
	live := mine[:0]
	for _, d := range mine {
		if d.Status() == device.StatusConnecting && d.IsStale(s.staleAfter) {
			d.MarkStuck()
			if err := s.devices.Update(ctx, d); err != nil {
				s.logger.ErrorWithError("supervisor: stuck-GC update failed", err, logger.Fields{"device_id": d.ID().String()})
			}
			s.teardownLocked(d.ID())
			continue
		}
		live = append(live, d)
	}
	mine = live

	// Step 4: ensure a live manager exists for each mine device.
	for _, d := range mine {
		go s.ensureManager(ctx, d)
	}

	// Step 6: tear down managers for devices no longer mine.
	mineSet := make(map[string]bool, len(mine))
	for _, d := range mine {
		mineSet[d.ID().String()] = true
	}
	s.mu.RLock()
	var stale []string
	for id := range s.managers {
		if !mineSet[id] {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()
	for _, id := range stale {
		go s.teardownByIDString(id)
	}
}

func (s *Supervisor) ensureManager(ctx context.Context, d *device.Device) {
	s.mu.RLock()
	existing, ok := s.managers[d.ID().String()]
	s.mu.RUnlock()

	if ok {
		if existing.State().IsLive() || existing.State() == connmgr.StateOpening {
			return
		}
		s.teardownLocked(d.ID())
	}

	snap, err := s.creds.Load(ctx, d.ID())
	if err != nil {
		s.logger.ErrorWithError("supervisor: load snapshot failed", err, logger.Fields{"device_id": d.ID().String()})
		return
	}

	m := connmgr.New(d.ID(), s.serverID, s.factory, s.devices, s.creds, s.cache, s.logger)
	if err := m.Start(ctx, d.ConnMethod(), snap.Registered); err != nil {
		s.logger.ErrorWithError("supervisor: start manager failed", err, logger.Fields{"device_id": d.ID().String()})
		return
	}

	s.mu.Lock()
	s.managers[d.ID().String()] = m
	s.mu.Unlock()
}

func (s *Supervisor) teardownLocked(id device.ID) {
	s.teardownByIDString(id.String())
}

func (s *Supervisor) teardownByIDString(id string) {
	s.mu.Lock()
	m, ok := s.managers[id]
	if ok {
		delete(s.managers, id)
	}
	s.mu.Unlock()
	if ok {
		m.Stop()
	}
}
