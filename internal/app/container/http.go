package container

import (
	"context"
	"fmt"

	"whatsfleet/internal/http/handler"
	"whatsfleet/internal/http/routes"
	"whatsfleet/internal/http/server"
	"whatsfleet/internal/infra/config"
	"whatsfleet/internal/infra/container"
	"whatsfleet/pkg/logger"
)

// httpContainer implements HTTPContainer interface
type httpContainer struct {
	deviceHandler    *handler.DeviceHandler
	broadcastHandler *handler.BroadcastHandler
	messageHandler   *handler.MessageHandler
	healthHandler    *handler.HealthHandler
	router           *routes.Router
	httpServer       *server.Server
	serverManager    *server.ServerManager
	logger           logger.Logger
	isInitialized    bool
}

// NewHTTPContainer creates a new HTTP container
func NewHTTPContainer(
	infraContainer *container.Container,
	useCaseContainer UseCaseContainer,
	cfg *config.Config,
) (HTTPContainer, error) {
	hc := &httpContainer{
		logger: infraContainer.Logger,
	}

	if err := hc.initialize(infraContainer, useCaseContainer, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize HTTP container: %w", err)
	}

	return hc, nil
}

// initialize sets up HTTP layer components
func (hc *httpContainer) initialize(
	infraContainer *container.Container,
	useCaseContainer UseCaseContainer,
	cfg *config.Config,
) error {
	log := infraContainer.Logger
	val := infraContainer.Validator

	deviceUCs := useCaseContainer.GetDeviceUseCases()
	broadcastUCs := useCaseContainer.GetBroadcastUseCases()

	hc.deviceHandler = handler.NewDeviceHandler(
		deviceUCs.Create,
		deviceUCs.Connect,
		deviceUCs.Disconnect,
		deviceUCs.Logout,
		deviceUCs.Delete,
		deviceUCs.List,
		deviceUCs.Get,
		deviceUCs.SetProxy,
		deviceUCs.Pair,
		log,
		val,
	)

	hc.broadcastHandler = handler.NewBroadcastHandler(
		broadcastUCs.Create,
		broadcastUCs.Cancel,
		broadcastUCs.List,
		broadcastUCs.Get,
		log,
		val,
	)

	hc.messageHandler = handler.NewMessageHandler(
		infraContainer.DeviceRepo,
		infraContainer.Supervisor,
		log,
		val,
	)

	hc.healthHandler = handler.NewHealthHandler(infraContainer, log)

	hc.router = routes.NewRouter(
		hc.deviceHandler,
		hc.broadcastHandler,
		hc.messageHandler,
		hc.healthHandler,
		cfg,
		log,
	)

	hc.httpServer = server.New(hc.router, &cfg.Server, log)
	hc.serverManager = server.NewServerManager(hc.httpServer, log)

	hc.isInitialized = true
	log.Info("HTTP container initialized successfully")
	return nil
}

// GetServerManager returns the server manager
func (hc *httpContainer) GetServerManager() *server.ServerManager {
	return hc.serverManager
}

// GetServerInfo returns server information
func (hc *httpContainer) GetServerInfo() server.ServerInfo {
	if hc.serverManager != nil {
		return hc.serverManager.GetServerInfo()
	}
	return server.ServerInfo{}
}

// StartServer starts the HTTP server
func (hc *httpContainer) StartServer(ctx context.Context) error {
	if !hc.isInitialized {
		return fmt.Errorf("HTTP container not initialized")
	}

	hc.logger.InfoWithFields("Starting HTTP server", logger.Fields{
		"address": hc.httpServer.GetAddr(),
	})

	return hc.serverManager.StartWithGracefulShutdown(ctx)
}
