package database

import (
	"time"

	"github.com/uptrace/bun"

	"whatsfleet/internal/domain/device"
)

// DeviceModel is the persisted form of a device.Device (§6 "Persistent state
// layout"). session_blob mirrors the gob-encoded credential.Snapshot (C1);
// the cryptographic auth material itself lives in whatsmeow's own sqlstore
// tables, keyed by wa_jid.
type DeviceModel struct {
	bun.BaseModel `bun:"table:devices"`

	ID               string    `bun:"id,pk,type:varchar(36)" json:"id"`
	OwnerID          string    `bun:"owner_id,notnull,type:varchar(100)" json:"owner_id"`
	Name             string    `bun:"name,notnull,type:varchar(50)" json:"name"`
	Status           string    `bun:"status,notnull,type:varchar(20),default:'disconnected'" json:"status"`
	ConnMethod       string    `bun:"conn_method,notnull,type:varchar(10),default:'qr'" json:"conn_method"`
	WaJID            string    `bun:"wa_jid,type:varchar(100)" json:"wa_jid,omitempty"`
	Phone            string    `bun:"phone,type:varchar(20)" json:"phone,omitempty"`
	QRCode           string    `bun:"qr_code,type:text" json:"qr_code,omitempty"`
	PairCode         string    `bun:"pair_code,type:varchar(16)" json:"pair_code,omitempty"`
	ProxyURL         string    `bun:"proxy_url,type:text" json:"proxy_url,omitempty"`
	SessionBlob      []byte    `bun:"session_blob,type:blob" json:"-"`
	AssignedServerID string    `bun:"assigned_server_id,type:varchar(128)" json:"assigned_server_id,omitempty"`
	ErrorMessage     string    `bun:"error_message,type:text" json:"error_message,omitempty"`
	LastConnectedAt  time.Time `bun:"last_connected_at,type:datetime" json:"last_connected_at,omitempty"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp,type:datetime" json:"updated_at"`
}

// ToDeviceModel converts a domain device to its database model.
func ToDeviceModel(d *device.Device) *DeviceModel {
	return &DeviceModel{
		ID:               d.ID().String(),
		OwnerID:          d.OwnerID(),
		Name:             d.Name(),
		Status:           d.Status().String(),
		ConnMethod:       d.ConnMethod().String(),
		WaJID:            d.WaJID(),
		Phone:            d.Phone(),
		QRCode:           d.QRCode(),
		PairCode:         d.PairCode(),
		ProxyURL:         d.ProxyURL(),
		SessionBlob:      d.SessionBlob(),
		AssignedServerID: d.AssignedServerID(),
		ErrorMessage:     d.ErrorMessage(),
		LastConnectedAt:  d.LastConnectedAt(),
		CreatedAt:        d.CreatedAt(),
		UpdatedAt:        d.UpdatedAt(),
	}
}

// FromDeviceModel converts a database model back into a domain device.
func FromDeviceModel(model *DeviceModel) (*device.Device, error) {
	id, err := device.IDFromString(model.ID)
	if err != nil {
		return nil, err
	}
	status, err := device.StatusFromString(model.Status)
	if err != nil {
		return nil, err
	}
	connMethod, err := device.ConnMethodFromString(model.ConnMethod)
	if err != nil {
		return nil, err
	}
	return device.Restore(
		id, model.OwnerID, model.Name, status, connMethod,
		model.WaJID, model.Phone, model.QRCode, model.PairCode, model.ProxyURL,
		model.SessionBlob, model.AssignedServerID, model.ErrorMessage,
		model.LastConnectedAt, model.CreatedAt, model.UpdatedAt,
	), nil
}

// DeviceConnectionEventModel logs state-machine transitions for C5, used for
// operator-facing history (§6).
type DeviceConnectionEventModel struct {
	bun.BaseModel `bun:"table:device_connection_events"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	DeviceID  string    `bun:"device_id,notnull,type:varchar(36)" json:"device_id"`
	ServerID  string    `bun:"server_id,notnull,type:varchar(128)" json:"server_id"`
	Event     string    `bun:"event,notnull,type:varchar(40)" json:"event"`
	Detail    string    `bun:"detail,type:text" json:"detail,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
}
