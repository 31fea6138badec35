// Package connmgr implements the per-device connection manager (C5, §4.4):
// an explicit state machine driving QR/pairing authentication, credential
// persistence, and disconnect-code-keyed reconnection. This is the one piece
// of the fleet that deliberately departs from the teacher's inline
// event-callback style (internal/infra/whats/client.go) in favor of a typed
// state machine, per the redesign note in SPEC_FULL.md §9.
package connmgr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"whatsfleet/internal/domain/credential"
	"whatsfleet/internal/domain/device"
	"whatsfleet/internal/domain/whatsapp"
	"whatsfleet/pkg/logger"
)

// State is a node in the connection manager's explicit state machine.
type State int

const (
	StateIdle State = iota
	StateOpening
	StateAwaitingAuth
	StateRecovering
	StateEmittingQR
	StateEmittingPairing
	StateAuthenticated
	StateClosing
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateAwaitingAuth:
		return "awaiting_auth"
	case StateRecovering:
		return "recovering"
	case StateEmittingQR:
		return "emitting_qr"
	case StateEmittingPairing:
		return "emitting_pairing"
	case StateAuthenticated:
		return "authenticated"
	case StateClosing:
		return "closing"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// IsLive reports whether the machine has not yet reached StateTerminal. The
// supervisor keeps a manager that is live or opening and replaces any other.
func (s State) IsLive() bool {
	return s != StateTerminal
}

// ClientFactory builds the underlying whatsmeow-backed client for a device.
// Kept as a function value so connmgr never imports whatsmeow/sqlstore
// directly — internal/infra/whats.NewClient is adapted to this shape.
type ClientFactory func(id device.ID, savedJID, proxyURL string) (whatsapp.Client, error)

// Store is the narrow device-mutation surface the manager needs.
type Store interface {
	GetByID(ctx context.Context, id device.ID) (*device.Device, error)
	Update(ctx context.Context, d *device.Device) error
}

// Cache is the narrow surface needed to publish QR/pairing payloads (§6).
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

const (
	pairingPollInterval = 500 * time.Millisecond
	pairingPollTimeout  = 15 * time.Second
	pairingMaxAttempts  = 3
	qrTTL               = 10 * time.Minute
	pairingTTL          = 10 * time.Minute
)

var pairingBackoffs = []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second}

// disconnectClass classifies a whatsmeow disconnect per §4.4's closing rules.
type disconnectClass int

const (
	disconnectRestartRequired disconnectClass = iota // code 515
	disconnectAuthFailure                            // 401/405
	disconnectLoggedOut
	disconnectTransient
)

// ClassifyDisconnectCode maps a whatsmeow stream-error/connect-failure code
// to the reconnect policy §4.4 describes.
func ClassifyDisconnectCode(code int) disconnectClass {
	switch code {
	case 515:
		return disconnectRestartRequired
	case 401, 405:
		return disconnectAuthFailure
	default:
		return disconnectTransient
	}
}

// Manager drives one device's whatsmeow client through the state machine.
// A single goroutine owns all state transitions; the supervisor and worker
// pool only ever read State()/Client() via the accessor methods.
type Manager struct {
	id         device.ID
	ownerID    string
	serverID   string
	recovering bool

	factory ClientFactory
	devices Store
	creds   *credential.Store
	cache   Cache
	logger  logger.Logger

	mu     sync.RWMutex
	state  State
	client whatsapp.Client

	events chan managerEvent
	cancel context.CancelFunc
	done   chan struct{}
}

type managerEvent struct {
	kind string
	arg0 string
	arg1 string
	err  error
}

// New constructs a manager for id in Idle state; call Start to run it.
func New(id device.ID, serverID string, factory ClientFactory, devices Store, creds *credential.Store, cache Cache, log logger.Logger) *Manager {
	return &Manager{
		id:       id,
		serverID: serverID,
		factory:  factory,
		devices:  devices,
		creds:    creds,
		cache:    cache,
		logger:   log,
		state:    StateIdle,
		events:   make(chan managerEvent, 16),
		done:     make(chan struct{}),
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) Client() whatsapp.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// updateDevice persists d, logging (rather than discarding) any failure —
// write failures on the device row must be observable per §4.1/§7.
func (m *Manager) updateDevice(ctx context.Context, d *device.Device, op string) {
	if err := m.devices.Update(ctx, d); err != nil {
		m.logger.ErrorWithError("device update failed", err, logger.Fields{"device_id": m.id.String(), "op": op})
	}
}

func (m *Manager) saveCredential(ctx context.Context, snap credential.Snapshot) {
	if err := m.creds.Save(ctx, m.id, snap); err != nil {
		m.logger.ErrorWithError("credential save failed", err, logger.Fields{"device_id": m.id.String()})
	}
}

func (m *Manager) clearCredential(ctx context.Context) {
	if err := m.creds.Clear(ctx, m.id); err != nil {
		m.logger.ErrorWithError("credential clear failed", err, logger.Fields{"device_id": m.id.String()})
	}
}

// Start opens the connection. recovering iff C1's snapshot reports
// registered=true, per §4.3 step 4 / §4.4's recovery-mode rule.
func (m *Manager) Start(ctx context.Context, connMethod device.ConnMethod, recovering bool) error {
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.recovering = recovering

	d, err := m.devices.GetByID(runCtx, m.id)
	if err != nil {
		cancel()
		return fmt.Errorf("load device: %w", err)
	}
	m.ownerID = d.OwnerID()

	snap, err := m.creds.Load(runCtx, m.id)
	if err != nil {
		cancel()
		return fmt.Errorf("load credential snapshot: %w", err)
	}

	m.setState(StateOpening)
	client, err := m.factory(m.id, snap.JID, d.ProxyURL())
	if err != nil {
		m.setState(StateTerminal)
		d.SetError(fmt.Sprintf("connection construction failed: %v", err))
		m.updateDevice(runCtx, d, "construct_client_failed")
		cancel()
		return fmt.Errorf("construct client: %w", err)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()
	client.SetEventHandler(&handlerAdapter{m: m})

	if recovering {
		m.setState(StateRecovering)
	} else {
		m.setState(StateAwaitingAuth)
	}

	if _, err := client.Connect(runCtx); err != nil {
		m.setState(StateTerminal)
		cancel()
		return fmt.Errorf("connect: %w", err)
	}

	go m.loop(runCtx, connMethod)
	return nil
}

// loop is the single goroutine that owns every state transition.
func (m *Manager) loop(ctx context.Context, connMethod device.ConnMethod) {
	defer close(m.done)

	if !m.recovering && connMethod == device.ConnMethodPairing {
		go m.runPairing(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			m.teardown(context.Background(), "context cancelled")
			return
		case ev := <-m.events:
			if m.handleEvent(ctx, ev) {
				return
			}
		}
	}
}

// handleEvent applies one whatsmeow-sourced event; returns true when the
// manager has reached Terminal and the loop should exit.
func (m *Manager) handleEvent(ctx context.Context, ev managerEvent) bool {
	switch ev.kind {
	case "qr":
		if m.State() == StateAuthenticated {
			return false
		}
		m.setState(StateEmittingQR)
		d, err := m.devices.GetByID(ctx, m.id)
		if err != nil {
			return false
		}
		d.SetQRCode(ev.arg0)
		m.updateDevice(ctx, d, "set_qr_code")
		if err := m.cache.Set(ctx, "qr:"+m.id.String(), ev.arg0, qrTTL); err != nil {
			m.logger.ErrorWithError("qr cache publish failed", err, logger.Fields{"device_id": m.id.String()})
		}
		return false

	case "authenticated":
		m.setState(StateAuthenticated)
		d, err := m.devices.GetByID(ctx, m.id)
		if err != nil {
			return false
		}
		if err := d.Connect(ev.arg0, ev.arg1); err != nil {
			m.logger.ErrorWithError("connect transition rejected", err, logger.Fields{"device_id": m.id.String()})
			return false
		}
		d.AssignServer(m.serverID)
		m.updateDevice(ctx, d, "authenticated")
		snap := credential.Snapshot{Registered: true, JID: ev.arg0, SavedAt: time.Now()}
		m.saveCredential(ctx, snap)
		return false

	case "disconnected", "logged_out", "stream_error", "connect_failure":
		return m.handleClose(ctx, ev)

	default:
		return false
	}
}

// handleClose implements §4.4's disconnect-code-keyed reconnect policy.
func (m *Manager) handleClose(ctx context.Context, ev managerEvent) bool {
	m.setState(StateClosing)
	d, err := m.devices.GetByID(ctx, m.id)
	if err != nil {
		m.setState(StateTerminal)
		return true
	}

	if d.Status() == device.StatusDisconnected {
		// User-initiated disconnect already recorded: no relaunch.
		m.setState(StateTerminal)
		return true
	}

	if ev.kind == "logged_out" {
		d.LogOut()
		m.updateDevice(ctx, d, "logged_out")
		m.clearCredential(ctx)
		m.setState(StateTerminal)
		return true
	}

	class := disconnectTransient
	if ev.kind == "stream_error" || ev.kind == "connect_failure" {
		var code int
		fmt.Sscanf(ev.arg1, "%d", &code)
		class = ClassifyDisconnectCode(code)
	}

	switch class {
	case disconnectRestartRequired:
		time.Sleep(1500 * time.Millisecond)
	case disconnectAuthFailure:
		d.SetError("authentication failed, credentials cleared")
		m.clearCredential(ctx)
		d.SetSessionBlob(nil)
		d.BeginConnecting()
		m.updateDevice(ctx, d, "auth_failure_retry")
		time.Sleep(1 * time.Second)
	default:
		d.BeginConnecting()
		m.updateDevice(ctx, d, "transient_disconnect_retry")
		time.Sleep(500 * time.Millisecond)
	}

	// Relaunch is left to the supervisor's next tick (§4.3 step 4): a dead
	// manager in a non-authenticated, non-opening state is restarted there.
	m.setState(StateTerminal)
	return true
}

// runPairing issues a single pairing-code request once the socket reports
// ready (§4.4 pairing mode), retrying with backoff up to pairingMaxAttempts.
func (m *Manager) runPairing(ctx context.Context) {
	if !m.waitSocketReady(ctx) {
		m.logger.WarnWithFields("socket never became ready for pairing", logger.Fields{"device_id": m.id.String()})
		return
	}

	d, err := m.devices.GetByID(ctx, m.id)
	if err != nil {
		return
	}
	if d.IsRegistered() {
		d.SetError("cannot pair: device already registered")
		m.updateDevice(ctx, d, "pairing_already_registered")
		return
	}

	phone := d.Phone()
	var lastErr error
	for attempt := 0; attempt < pairingMaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(pairingBackoffs[attempt-1])
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		client := m.Client()
		if client == nil {
			return
		}
		if err := client.PairPhone(ctx, phone); err != nil {
			lastErr = err
			if isRateLimited(err) {
				d.SetError("pairing rate-limited, cooling down")
				m.updateDevice(ctx, d, "pairing_rate_limited")
				return
			}
			continue
		}

		m.setState(StateEmittingPairing)
		return
	}

	if lastErr != nil {
		d.SetError(fmt.Sprintf("pairing failed after %d attempts: %v", pairingMaxAttempts, lastErr))
		m.updateDevice(ctx, d, "pairing_exhausted")
	}
}

func isRateLimited(err error) bool {
	return err != nil && (contains(err.Error(), "429") || contains(err.Error(), "rate"))
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// waitSocketReady polls every 500ms for up to 15s until the client reports
// IsConnected. It does not check the pairing method or the auth state.
func (m *Manager) waitSocketReady(ctx context.Context) bool {
	deadline := time.Now().Add(pairingPollTimeout)
	ticker := time.NewTicker(pairingPollInterval)
	defer ticker.Stop()
	for time.Now().Before(deadline) {
		if client := m.Client(); client != nil && client.IsConnected() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
	return false
}

// teardown disconnects the underlying client and marks the machine terminal.
func (m *Manager) teardown(ctx context.Context, reason string) {
	m.logger.InfoWithFields("tearing down connection manager", logger.Fields{
		"device_id": m.id.String(), "reason": reason,
	})
	if client := m.Client(); client != nil {
		_ = client.Close()
	}
	m.setState(StateTerminal)
}

// Stop cancels the manager's context and waits for its goroutine to exit.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	<-m.done
}

// handlerAdapter implements whatsapp.EventHandler, translating whatsmeow
// events into the single internal channel the state-machine goroutine reads,
// preserving whatsmeow's single-threaded-per-socket delivery guarantee.
type handlerAdapter struct{ m *Manager }

func (h *handlerAdapter) OnConnected(id device.ID, jid string) {}

func (h *handlerAdapter) OnDisconnected(id device.ID, reason string) {
	h.m.events <- managerEvent{kind: "disconnected", arg0: reason}
}

func (h *handlerAdapter) OnQRCode(id device.ID, qrCode string) {
	h.m.events <- managerEvent{kind: "qr", arg0: qrCode}
}

func (h *handlerAdapter) OnAuthenticated(id device.ID, jid string) {
	h.m.events <- managerEvent{kind: "authenticated", arg0: jid}
}

func (h *handlerAdapter) OnAuthenticationFailed(id device.ID, reason string) {
	h.m.events <- managerEvent{kind: "stream_error", arg1: "401", arg0: reason}
}

func (h *handlerAdapter) OnMessage(id device.ID, message *whatsapp.Message) {}

func (h *handlerAdapter) OnError(id device.ID, err error) {
	h.m.events <- managerEvent{kind: "connect_failure", err: err}
}
