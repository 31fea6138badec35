package device

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is a unique device identifier.
type ID struct {
	value string
}

// NewID creates a new unique device ID.
func NewID() ID {
	return ID{value: uuid.New().String()}
}

// IDFromString parses a device ID from its string form.
func IDFromString(s string) (ID, error) {
	if s == "" {
		return ID{}, ErrInvalidDeviceID
	}
	if _, err := uuid.Parse(s); err != nil {
		return ID{}, ErrInvalidDeviceID
	}
	return ID{value: s}, nil
}

func (id ID) String() string { return id.value }

func (id ID) IsEmpty() bool { return id.value == "" }

func (id ID) Equals(other ID) bool { return id.value == other.value }

// Status is the connection status of a device.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusWaitingPairing
	StatusConnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusWaitingPairing:
		return "waiting_pairing"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

func (s Status) IsValid() bool {
	return s >= StatusDisconnected && s <= StatusError
}

func StatusFromString(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "disconnected":
		return StatusDisconnected, nil
	case "connecting":
		return StatusConnecting, nil
	case "waiting_pairing":
		return StatusWaitingPairing, nil
	case "connected":
		return StatusConnected, nil
	case "error":
		return StatusError, nil
	default:
		return StatusDisconnected, fmt.Errorf("invalid device status: %s", s)
	}
}

// ConnMethod is the authentication method a device uses to pair.
type ConnMethod int

const (
	ConnMethodQR ConnMethod = iota
	ConnMethodPairing
)

func (m ConnMethod) String() string {
	switch m {
	case ConnMethodQR:
		return "qr"
	case ConnMethodPairing:
		return "pairing"
	default:
		return "unknown"
	}
}

func ConnMethodFromString(s string) (ConnMethod, error) {
	switch strings.ToLower(s) {
	case "qr", "":
		return ConnMethodQR, nil
	case "pairing":
		return ConnMethodPairing, nil
	default:
		return ConnMethodQR, fmt.Errorf("invalid connection method: %s", s)
	}
}

// Name is a validated, human-assigned device name.
type Name struct {
	value string
}

func NewName(name string) (Name, error) {
	if err := validateName(name); err != nil {
		return Name{}, err
	}
	return Name{value: name}, nil
}

func (n Name) String() string { return n.value }

func (n Name) IsEmpty() bool { return n.value == "" }

func validateName(name string) error {
	if name == "" {
		return ErrInvalidDeviceName
	}
	if len(name) < 3 {
		return ErrDeviceNameTooShort
	}
	if len(name) > 50 {
		return ErrDeviceNameTooLong
	}
	for _, char := range name {
		if !isValidNameChar(char) {
			return ErrInvalidDeviceNameChars
		}
	}
	return nil
}

func isValidNameChar(char rune) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == ' ' || char == '-' || char == '_'
}

// WhatsAppJID is a validated WhatsApp Jabber ID.
type WhatsAppJID struct {
	value string
}

func NewWhatsAppJID(jid string) (WhatsAppJID, error) {
	if jid == "" {
		return WhatsAppJID{}, ErrInvalidWhatsAppJID
	}
	if !strings.Contains(jid, "@") {
		return WhatsAppJID{}, ErrInvalidWhatsAppJID
	}
	return WhatsAppJID{value: jid}, nil
}

func (j WhatsAppJID) String() string { return j.value }

func (j WhatsAppJID) IsEmpty() bool { return j.value == "" }

func (j WhatsAppJID) Equals(other WhatsAppJID) bool { return j.value == other.value }

// NormalizePhone applies the fleet's Indonesia-default normalization rules to a
// raw phone number: strip everything but digits, then rewrite the leading
// digits to carry the 62 country code. A leading 0 is replaced by 62; a number
// of at most 12 digits without 62 gets 62 prepended; a longer number without
// 62 is kept as is.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	if n == "" {
		return "", ErrInvalidPhoneNumber
	}

	switch {
	case strings.HasPrefix(n, "0"):
		n = "62" + n[1:]
	case strings.HasPrefix(n, "8") && len(n) <= 12:
		n = "62" + n
	case !strings.HasPrefix(n, "62") && len(n) <= 12:
		n = "62" + n
	}

	if len(n) < 10 || len(n) > 15 {
		return "", ErrInvalidPhoneNumber
	}
	return n, nil
}
