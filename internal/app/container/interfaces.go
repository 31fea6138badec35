package container

import (
	"context"

	"whatsfleet/internal/http/server"
	"whatsfleet/internal/infra/config"
	broadcastUC "whatsfleet/internal/usecases/broadcast"
	deviceUC "whatsfleet/internal/usecases/device"
	"whatsfleet/pkg/logger"
)

// Container defines the interface for application containers
type Container interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	Health() error
	Close() error
	IsInitialized() bool
}

// UseCaseContainer defines the interface for use case management
type UseCaseContainer interface {
	GetDeviceUseCases() DeviceUseCases
	GetBroadcastUseCases() BroadcastUseCases
}

// HTTPContainer defines the interface for HTTP layer management
type HTTPContainer interface {
	GetServerManager() *server.ServerManager
	GetServerInfo() server.ServerInfo
	StartServer(ctx context.Context) error
}

// DeviceUseCases groups all device-related use cases (session-lifecycle
// engine, §4.3/§4.4).
type DeviceUseCases struct {
	Create     *deviceUC.CreateUseCase
	Connect    *deviceUC.ConnectUseCase
	Disconnect *deviceUC.DisconnectUseCase
	Logout     *deviceUC.LogoutUseCase
	Delete     *deviceUC.DeleteUseCase
	List       *deviceUC.ListUseCase
	Get        *deviceUC.GetUseCase
	SetProxy   *deviceUC.SetProxyUseCase
	Pair       *deviceUC.PairUseCase
}

// BroadcastUseCases groups all broadcast-related use cases (durable
// broadcast dispatcher, §4.5).
type BroadcastUseCases struct {
	Create *broadcastUC.CreateUseCase
	Cancel *broadcastUC.CancelUseCase
	List   *broadcastUC.ListUseCase
	Get    *broadcastUC.GetUseCase
}
