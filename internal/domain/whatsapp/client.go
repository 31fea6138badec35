package whatsapp

import (
	"context"
	"time"

	"whatsfleet/internal/domain/device"
)

// Client defines the interface for WhatsApp client operations
type Client interface {
	// Connection management
	Connect(ctx context.Context) (*ConnectionResult, error)
	Disconnect(ctx context.Context) error
	IsConnected() bool
	GetConnectionStatus() ConnectionStatus

	// Authentication
	GenerateQR(ctx context.Context) (string, error)
	PairPhone(ctx context.Context, phoneNumber string) error
	IsAuthenticated() bool

	// Session information
	GetDeviceID() device.ID
	GetJID() string
	GetDeviceInfo() *DeviceInfo

	// Messaging
	SendMessage(ctx context.Context, to, message string) error
	SendImage(ctx context.Context, to, imagePath, caption string) error
	SendDocument(ctx context.Context, to, documentPath, filename string) error

	// Groups
	ListJoinedGroups(ctx context.Context) ([]GroupInfo, error)

	// Event handling
	SetEventHandler(handler EventHandler)
	RemoveEventHandler()

	// Lifecycle
	Close() error
}

// Manager defines the interface for managing multiple WhatsApp clients
type Manager interface {
	// Client management
	CreateClient(deviceID device.ID) (Client, error)
	GetClient(deviceID device.ID) (Client, error)
	RemoveClient(deviceID device.ID) error
	ListClients() []device.ID

	// Lifecycle
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool

	// Health check
	HealthCheck() error
}

// ConnectionResult represents the result of a connection attempt
type ConnectionResult struct {
	JID       string
	QRCode    string
	Status    ConnectionStatus
	Error     error
	Timestamp time.Time
}

// ConnectionStatus represents the connection status
type ConnectionStatus int

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusAuthenticating
	StatusAuthenticated
	StatusError
)

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// GroupInfo describes a WhatsApp group a device currently participates in.
type GroupInfo struct {
	JID          string `json:"jid"`
	Name         string `json:"name"`
	Participants int    `json:"participants"`
}

// DeviceInfo represents device information
type DeviceInfo struct {
	Platform     string
	AppVersion   string
	DeviceModel  string
	OSVersion    string
	Manufacturer string
}

// EventHandler defines the interface for handling WhatsApp events
type EventHandler interface {
	OnConnected(deviceID device.ID, jid string)
	OnDisconnected(deviceID device.ID, reason string)
	OnQRCode(deviceID device.ID, qrCode string)
	OnAuthenticated(deviceID device.ID, jid string)
	OnAuthenticationFailed(deviceID device.ID, reason string)
	OnMessage(deviceID device.ID, message *Message)
	OnError(deviceID device.ID, err error)
}

// Message represents a WhatsApp message
type Message struct {
	ID        string
	From      string
	To        string
	Body      string
	Type      MessageType
	Timestamp time.Time
	IsFromMe  bool
}

// MessageType represents the type of message
type MessageType int

const (
	MessageTypeText MessageType = iota
	MessageTypeImage
	MessageTypeDocument
	MessageTypeAudio
	MessageTypeVideo
	MessageTypeSticker
	MessageTypeLocation
	MessageTypeContact
)

// String returns the string representation of MessageType
func (t MessageType) String() string {
	switch t {
	case MessageTypeText:
		return "text"
	case MessageTypeImage:
		return "image"
	case MessageTypeDocument:
		return "document"
	case MessageTypeAudio:
		return "audio"
	case MessageTypeVideo:
		return "video"
	case MessageTypeSticker:
		return "sticker"
	case MessageTypeLocation:
		return "location"
	case MessageTypeContact:
		return "contact"
	default:
		return "unknown"
	}
}
