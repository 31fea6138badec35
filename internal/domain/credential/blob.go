// Package credential defines the durable bookkeeping snapshot the fleet keeps
// alongside whatsmeow's own cryptographic store (§4.1/§9). It never touches
// key material directly; it records enough to answer "is this device
// recoverable" without re-opening whatsmeow's sqlstore.
package credential

import (
	"bytes"
	"encoding/gob"
	"errors"
	"time"
)

// ErrCorrupt is returned when a stored blob cannot be decoded. Callers must
// treat this as "absent", per the error taxonomy's data-corruption item (§7.6).
var ErrCorrupt = errors.New("credential blob is corrupt")

// Snapshot is the bookkeeping record persisted into a device's session_blob
// column. It is deliberately thin: whatsmeow's sqlstore.Container remains the
// source of truth for actual signal keys.
type Snapshot struct {
	Registered bool
	JID        string
	Platform   string
	SavedAt    time.Time
}

// Encode serializes a snapshot with gob.
func Encode(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode. An empty blob decodes to the zero Snapshot
// (Registered=false) rather than an error, matching "absence on first boot".
func Decode(blob []byte) (Snapshot, error) {
	if len(blob) == 0 {
		return Snapshot{}, nil
	}
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&s); err != nil {
		return Snapshot{}, ErrCorrupt
	}
	return s, nil
}
