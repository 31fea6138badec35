package device

import (
	"net/url"
	"strings"
	"time"
)

// Device represents a single WhatsApp Web session owned by a user and, once
// claimed, driven by exactly one backend server.
type Device struct {
	id         ID
	ownerID    string
	name       string
	status     Status
	connMethod ConnMethod
	waJID      string
	phone      string
	qrCode     string
	pairCode   string
	proxyURL   string

	sessionBlob []byte

	assignedServerID string
	errorMessage     string

	lastConnectedAt time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

// New creates a brand new, unconnected device owned by ownerID.
func New(ownerID, name string, method ConnMethod) *Device {
	if name == "" {
		panic("device name cannot be empty")
	}
	now := time.Now()
	return &Device{
		id:         NewID(),
		ownerID:    ownerID,
		name:       name,
		status:     StatusDisconnected,
		connMethod: method,
		createdAt:  now,
		updatedAt:  now,
	}
}

// Restore reconstructs a device from persisted state.
func Restore(
	id ID, ownerID, name string, status Status, connMethod ConnMethod,
	waJID, phone, qrCode, pairCode, proxyURL string, sessionBlob []byte,
	assignedServerID, errorMessage string,
	lastConnectedAt, createdAt, updatedAt time.Time,
) *Device {
	return &Device{
		id: id, ownerID: ownerID, name: name, status: status, connMethod: connMethod,
		waJID: waJID, phone: phone, qrCode: qrCode, pairCode: pairCode, proxyURL: proxyURL,
		sessionBlob: sessionBlob, assignedServerID: assignedServerID, errorMessage: errorMessage,
		lastConnectedAt: lastConnectedAt, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// BeginConnecting moves the device into connecting, clearing any stale error.
func (d *Device) BeginConnecting() {
	d.status = StatusConnecting
	d.errorMessage = ""
	d.updatedAt = time.Now()
}

// SetWaitingPairing records a freshly issued pairing code (§4.4 resolution:
// pairing uses its own status rather than overloading connecting).
func (d *Device) SetWaitingPairing(code string) {
	d.status = StatusWaitingPairing
	d.pairCode = code
	d.qrCode = ""
	d.updatedAt = time.Now()
}

// SetQRCode records a freshly emitted QR payload, overwriting any previous one.
func (d *Device) SetQRCode(qr string) {
	d.qrCode = qr
	d.pairCode = ""
	if d.status != StatusConnected {
		d.status = StatusConnecting
	}
	d.updatedAt = time.Now()
}

// Connect marks the device authenticated and bound to the given JID/phone.
func (d *Device) Connect(waJID, phone string) error {
	if waJID == "" {
		return ErrInvalidWhatsAppJID
	}
	d.waJID = waJID
	d.phone = phone
	d.status = StatusConnected
	d.qrCode = ""
	d.pairCode = ""
	d.errorMessage = ""
	d.lastConnectedAt = time.Now()
	d.updatedAt = time.Now()
	return nil
}

// Disconnect returns the device to disconnected and wipes transient auth
// material. Assignment is deliberately preserved: the owning server retries
// on its next reconcile rather than losing the device to another server.
func (d *Device) Disconnect() {
	d.status = StatusDisconnected
	d.qrCode = ""
	d.pairCode = ""
	d.updatedAt = time.Now()
}

// LogOut is a permanent disconnect: credentials and phone binding are wiped.
func (d *Device) LogOut() {
	d.Disconnect()
	d.waJID = ""
	d.phone = ""
	d.sessionBlob = nil
}

// SetError marks the device as failed with a human-readable message. Used both
// for hard connection failures and for the rate-limit cooldown case (§9).
func (d *Device) SetError(message string) {
	d.status = StatusError
	d.errorMessage = message
	d.updatedAt = time.Now()
}

// MarkStuck resets a device that has been stuck in connecting beyond the
// supervisor's GC threshold (P8), wiping QR/pairing material.
func (d *Device) MarkStuck() {
	d.status = StatusDisconnected
	d.qrCode = ""
	d.pairCode = ""
	d.sessionBlob = nil
	d.errorMessage = "reconnection timed out"
	d.updatedAt = time.Now()
}

// SetPhone validates and stores the phone number used for pairing-code auth,
// normalizing it to the fleet's Indonesia-default E.164-ish form first.
func (d *Device) SetPhone(phone string) error {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return err
	}
	d.phone = normalized
	d.updatedAt = time.Now()
	return nil
}

func (d *Device) SetSessionBlob(blob []byte) {
	d.sessionBlob = blob
	d.updatedAt = time.Now()
}

func (d *Device) AssignServer(serverID string) {
	d.assignedServerID = serverID
	d.updatedAt = time.Now()
}

func (d *Device) ClearAssignment() {
	d.assignedServerID = ""
	d.updatedAt = time.Now()
}

func (d *Device) UpdateName(name string) error {
	if name == "" {
		return ErrInvalidDeviceName
	}
	d.name = name
	d.updatedAt = time.Now()
	return nil
}

// SetProxyURL validates and stores a proxy URL (http/https/socks4/socks5).
func (d *Device) SetProxyURL(proxyURL string) error {
	if proxyURL != "" {
		if err := validateProxyURL(proxyURL); err != nil {
			return err
		}
	}
	d.proxyURL = proxyURL
	d.updatedAt = time.Now()
	return nil
}

func (d *Device) ClearProxyURL() {
	d.proxyURL = ""
	d.updatedAt = time.Now()
}

func (d *Device) HasProxy() bool { return d.proxyURL != "" }

func (d *Device) GetProxyType() string {
	if !d.HasProxy() {
		return ""
	}
	switch {
	case strings.HasPrefix(d.proxyURL, "http://"):
		return "http"
	case strings.HasPrefix(d.proxyURL, "https://"):
		return "https"
	case strings.HasPrefix(d.proxyURL, "socks4://"):
		return "socks4"
	case strings.HasPrefix(d.proxyURL, "socks5://"):
		return "socks5"
	default:
		return "unknown"
	}
}

func validateProxyURL(proxyURL string) error {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return ErrInvalidProxyURL
	}
	supported := map[string]bool{"http": true, "https": true, "socks4": true, "socks5": true}
	if !supported[parsed.Scheme] {
		return ErrUnsupportedProxyScheme
	}
	if parsed.Hostname() == "" {
		return ErrInvalidProxyHost
	}
	return nil
}

// IsStale reports whether the device has been connecting for longer than
// maxAge, the condition the supervisor uses for its stuck-connecting GC (P8).
func (d *Device) IsStale(maxAge time.Duration) bool {
	return d.status == StatusConnecting && time.Since(d.updatedAt) > maxAge
}

// IsOwnedBy reports whether serverID currently owns this device.
func (d *Device) IsOwnedBy(serverID string) bool {
	return d.assignedServerID != "" && d.assignedServerID == serverID
}

func (d *Device) IsUnassigned() bool { return d.assignedServerID == "" }

func (d *Device) IsRegistered() bool { return len(d.sessionBlob) > 0 && d.waJID != "" }

func (d *Device) CanConnect() bool { return d.status != StatusConnected }

func (d *Device) IsConnected() bool { return d.status == StatusConnected }

// Getters.
func (d *Device) ID() ID                     { return d.id }
func (d *Device) OwnerID() string            { return d.ownerID }
func (d *Device) Name() string               { return d.name }
func (d *Device) Status() Status             { return d.status }
func (d *Device) ConnMethod() ConnMethod     { return d.connMethod }
func (d *Device) WaJID() string              { return d.waJID }
func (d *Device) Phone() string              { return d.phone }
func (d *Device) QRCode() string             { return d.qrCode }
func (d *Device) PairCode() string           { return d.pairCode }
func (d *Device) ProxyURL() string           { return d.proxyURL }
func (d *Device) SessionBlob() []byte        { return d.sessionBlob }
func (d *Device) AssignedServerID() string   { return d.assignedServerID }
func (d *Device) ErrorMessage() string       { return d.errorMessage }
func (d *Device) LastConnectedAt() time.Time { return d.lastConnectedAt }
func (d *Device) CreatedAt() time.Time       { return d.createdAt }
func (d *Device) UpdatedAt() time.Time       { return d.updatedAt }

// Validate checks entity-level invariants beyond individual field validators.
func (d *Device) Validate() error {
	if d.name == "" {
		return ErrInvalidDeviceName
	}
	if len(d.name) < 3 || len(d.name) > 50 {
		return ErrInvalidDeviceName
	}
	if d.status == StatusConnected && d.waJID == "" {
		return ErrDeviceInvalidState
	}
	return nil
}
