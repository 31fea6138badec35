package dto

import (
	"fmt"
	"net/url"
	"time"

	"whatsfleet/internal/domain/device"
)

// ProxyType represents the type of proxy
// @Description Tipo de proxy suportado
// @Enum http socks5
type ProxyType string

const (
	ProxyTypeHTTP   ProxyType = "http"
	ProxyTypeSOCKS5 ProxyType = "socks5"
)

func (pt ProxyType) IsValid() bool {
	return pt == ProxyTypeHTTP || pt == ProxyTypeSOCKS5
}

// CreateDeviceRequest represents the HTTP request to register a new device.
// @Description Dados para criação de um novo dispositivo WhatsApp
type CreateDeviceRequest struct {
	Name   string `json:"name" validate:"required,device_name" example:"vendas-sp" description:"Nome único do dispositivo dentro da conta (3-50 caracteres)"`
	Method string `json:"method" validate:"required,oneof=qr pairing" example:"qr" description:"Método de autenticação: qr ou pairing"`
	Phone  string `json:"phone,omitempty" validate:"omitempty,phone_number" example:"5511999999999" description:"Telefone para autenticação via código de pareamento (obrigatório quando method=pairing)"`
}

// DeviceResponse represents a device as returned over HTTP.
// @Description Representação de um dispositivo WhatsApp
type DeviceResponse struct {
	ID              string    `json:"id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Name            string    `json:"name" example:"vendas-sp"`
	Status          string    `json:"status" example:"connected"`
	Method          string    `json:"method" example:"qr"`
	Phone           string    `json:"phone,omitempty"`
	JID             string    `json:"jid,omitempty"`
	QRCode          string    `json:"qrCode,omitempty"`
	PairCode        string    `json:"pairCode,omitempty"`
	HasProxy        bool      `json:"hasProxy"`
	AssignedServer  string    `json:"assignedServer,omitempty"`
	ErrorMessage    string    `json:"error,omitempty"`
	LastConnectedAt time.Time `json:"lastConnectedAt,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewDeviceResponse converts a domain device into its HTTP representation.
func NewDeviceResponse(d *device.Device) *DeviceResponse {
	return &DeviceResponse{
		ID:              d.ID().String(),
		Name:            d.Name(),
		Status:          d.Status().String(),
		Method:          d.ConnMethod().String(),
		Phone:           d.Phone(),
		JID:             d.WaJID(),
		QRCode:          d.QRCode(),
		PairCode:        d.PairCode(),
		HasProxy:        d.HasProxy(),
		AssignedServer:  d.AssignedServerID(),
		ErrorMessage:    d.ErrorMessage(),
		LastConnectedAt: d.LastConnectedAt(),
		CreatedAt:       d.CreatedAt(),
		UpdatedAt:       d.UpdatedAt(),
	}
}

// DeviceListResponse represents a paginated list of devices.
type DeviceListResponse struct {
	Devices []*DeviceResponse `json:"devices"`
	Total   int               `json:"total"`
}

// NewDeviceListResponse converts a slice of domain devices.
func NewDeviceListResponse(devices []*device.Device, total int) *DeviceListResponse {
	out := make([]*DeviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, NewDeviceResponse(d))
	}
	return &DeviceListResponse{Devices: out, Total: total}
}

// PairDeviceRequest requests (re)starting pairing-code authentication.
type PairDeviceRequest struct {
	Phone string `json:"phone" validate:"required,phone_number" example:"5511999999999"`
}

// SetProxyRequest sets or clears a device's proxy.
// @Description Configuração de proxy para um dispositivo
type SetProxyRequest struct {
	ProxyHost string    `json:"proxyHost,omitempty" validate:"omitempty,ip|hostname"`
	ProxyPort int       `json:"proxyPort,omitempty" validate:"omitempty,min=1,max=65535"`
	ProxyType ProxyType `json:"proxyType,omitempty" validate:"omitempty,oneof=http socks5"`
	Username  string    `json:"username,omitempty" validate:"omitempty,max=255"`
	Password  string    `json:"password,omitempty" validate:"omitempty,max=255"`
}

func (req *SetProxyRequest) HasProxy() bool { return req.ProxyHost != "" && req.ProxyPort > 0 }

// BuildProxyURL builds a proxy URL from the request, or "" to clear the proxy.
func (req *SetProxyRequest) BuildProxyURL() (string, error) {
	if !req.HasProxy() {
		return "", nil
	}
	proxyType := req.ProxyType
	if proxyType == "" {
		proxyType = ProxyTypeHTTP
	}
	if !proxyType.IsValid() {
		return "", fmt.Errorf("invalid proxy type: %s", proxyType)
	}

	var userInfo *url.Userinfo
	if req.Username != "" {
		if req.Password != "" {
			userInfo = url.UserPassword(req.Username, req.Password)
		} else {
			userInfo = url.User(req.Username)
		}
	}

	u := &url.URL{
		Scheme: string(proxyType),
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", req.ProxyHost, req.ProxyPort),
	}
	return u.String(), nil
}

// GroupResponse represents a WhatsApp group a device participates in.
type GroupResponse struct {
	JID          string `json:"jid"`
	Name         string `json:"name"`
	Participants int    `json:"participants"`
}

// GroupListResponse wraps the groups a device currently belongs to.
type GroupListResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// SendMessageRequest is the body for POST /send-message.
// @Description Envio avulso de mensagem através de um dispositivo
type SendMessageRequest struct {
	DeviceID    string `json:"deviceId" validate:"required" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	TargetJID   string `json:"targetJid" validate:"required" example:"5511999999999@s.whatsapp.net"`
	MessageType string `json:"messageType" validate:"required,oneof=text image document" example:"text"`
	Message     string `json:"message" validate:"required,max=10000"`
	MediaURL    string `json:"mediaUrl,omitempty" validate:"omitempty,url"`
	Caption     string `json:"caption,omitempty" validate:"omitempty,max=1024"`
}

// SendMessageResponse confirms a message was dispatched.
type SendMessageResponse struct {
	DeviceID  string `json:"deviceId"`
	TargetJID string `json:"targetJid"`
	Sent      bool   `json:"sent"`
}
