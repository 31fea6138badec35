// Package assignment implements the fleet assignment controller (C3, §4.2):
// server identity derivation, registration, periodic health reporting, atomic
// device claiming, and a reaper that reclaims devices from servers whose
// heartbeat has gone stale.
package assignment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"whatsfleet/internal/domain/device"
	"whatsfleet/internal/domain/fleetserver"
	"whatsfleet/internal/infra/config"
	"whatsfleet/pkg/logger"
)

// Controller owns this process's server identity and competes for devices.
type Controller struct {
	cfg     config.FleetConfig
	servers fleetserver.Repository
	devices device.Repository
	logger  logger.Logger

	serverID string
	cron     *cron.Cron
}

func New(cfg config.FleetConfig, servers fleetserver.Repository, devices device.Repository, log logger.Logger) (*Controller, error) {
	id, err := deriveServerID(cfg.ServerID)
	if err != nil {
		return nil, err
	}
	return &Controller{
		cfg:      cfg,
		servers:  servers,
		devices:  devices,
		logger:   log,
		serverID: id,
	}, nil
}

// ServerID returns this process's resolved identity.
func (c *Controller) ServerID() string { return c.serverID }

// deriveServerID resolves the identity contract from §4.2: explicit config
// wins, then hostname, then a random fallback. Every candidate is validated
// so a misconfigured SERVER_ID fails fast at boot rather than silently
// colliding with another process.
func deriveServerID(configured string) (string, error) {
	if configured != "" {
		if err := fleetserver.ValidateID(configured); err != nil {
			return "", fmt.Errorf("invalid SERVER_ID %q: %w", configured, err)
		}
		return configured, nil
	}

	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		if err := fleetserver.ValidateID(hostname); err == nil {
			return hostname, nil
		}
		// Hostname contains characters outside the identity charset (e.g.
		// underscores aside, some container runtimes emit dots-only or
		// uppercase names that still validate); if it doesn't, fall through
		// to the random identity below rather than erroring at boot.
	}

	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate random server id: %w", err)
	}
	return "srv-" + hex.EncodeToString(suffix), nil
}

// Start registers this server and begins the health tick (cron, mirroring
// the other periodic fleet ticks). Call Stop to unwind on shutdown.
func (c *Controller) Start(ctx context.Context) error {
	srv := fleetserver.New(c.serverID, c.cfg.ServerURL, c.cfg.Region, c.cfg.Priority, c.cfg.MaxCapacity)
	if err := c.servers.Upsert(ctx, srv); err != nil {
		return fmt.Errorf("register server: %w", err)
	}
	c.logger.InfoWithFields("server registered", logger.Fields{
		"server_id": c.serverID, "region": c.cfg.Region, "priority": c.cfg.Priority,
	})

	c.cron = cron.New()
	spec := fmt.Sprintf("@every %s", c.cfg.HealthTick)
	if _, err := c.cron.AddFunc(spec, func() { c.healthTick(ctx) }); err != nil {
		return fmt.Errorf("schedule health tick: %w", err)
	}
	reaperSpec := fmt.Sprintf("@every %s", c.cfg.ReaperThreshold/2)
	if _, err := c.cron.AddFunc(reaperSpec, func() { c.reaperTick(ctx) }); err != nil {
		return fmt.Errorf("schedule reaper tick: %w", err)
	}
	c.cron.Start()
	return nil
}

// Stop halts the health/reaper ticks and marks this server inactive (§4.2:
// "on graceful shutdown it sets is_active=false"), so it drops out of
// BestCandidate selection immediately instead of waiting out the reaper
// window.
func (c *Controller) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.servers.SetActive(ctx, c.serverID, false); err != nil {
		c.logger.ErrorWithError("failed to mark server inactive on shutdown", err, logger.Fields{"server_id": c.serverID})
	}
}

// healthTick refreshes this server's heartbeat (§4.2, every HealthTick).
func (c *Controller) healthTick(ctx context.Context) {
	start := time.Now()
	if err := c.servers.UpdateHealth(ctx, c.serverID, true, time.Since(start).Milliseconds()); err != nil {
		c.logger.ErrorWithError("health tick failed", err, logger.Fields{"server_id": c.serverID})
	}
}

// reaperTick reclaims devices from servers whose heartbeat has gone stale
// beyond ReaperThreshold (§4.2, §9: 120s, 2x the health tick).
func (c *Controller) reaperTick(ctx context.Context) {
	cutoff := time.Now().Add(-c.cfg.ReaperThreshold)
	stale, err := c.servers.ListStale(ctx, cutoff)
	if err != nil {
		c.logger.ErrorWithError("reaper: list stale servers failed", err, nil)
		return
	}
	for _, s := range stale {
		if s.ID() == c.serverID {
			continue
		}
		n, err := c.devices.ReleaseAssignedTo(ctx, s.ID())
		if err != nil {
			c.logger.ErrorWithError("reaper: release failed", err, logger.Fields{"server_id": s.ID()})
			continue
		}
		if n > 0 {
			c.logger.WarnWithFields("reaper reclaimed devices from stale server", logger.Fields{
				"stale_server_id": s.ID(), "device_count": n,
			})
		}
	}
}

// Acquire attempts to claim an unassigned device for this server, selecting
// among eligible candidates via fleetserver.BestOf when more than one server
// is competing is not meaningful here (the claim itself is what decides the
// race) — BestOf is used by callers choosing *which* server should attempt a
// claim in a push model; this pull-model Acquire just tries the atomic claim
// directly, which is safe under concurrent callers because only one UPDATE
// can match the unassigned predicate.
func (c *Controller) Acquire(ctx context.Context, id device.ID) (bool, error) {
	return c.devices.ClaimUnassigned(ctx, id, c.serverID)
}

// BestCandidate selects the best eligible server to own a new device, used
// when this process is acting as a coordinator rather than claiming for
// itself (e.g. an admin API placing a freshly created device).
func BestCandidate(servers []*fleetserver.Server) *fleetserver.Server {
	return fleetserver.BestOf(servers)
}
