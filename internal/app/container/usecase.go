package container

import (
	"fmt"

	"whatsfleet/internal/infra/container"
	broadcastUC "whatsfleet/internal/usecases/broadcast"
	deviceUC "whatsfleet/internal/usecases/device"
	"whatsfleet/pkg/logger"
)

// useCaseContainer implements UseCaseContainer interface
type useCaseContainer struct {
	deviceUseCases    DeviceUseCases
	broadcastUseCases BroadcastUseCases
	logger            logger.Logger
	isInitialized     bool
}

// NewUseCaseContainer creates a new use case container
func NewUseCaseContainer(infraContainer *container.Container) (UseCaseContainer, error) {
	uc := &useCaseContainer{
		logger: infraContainer.Logger,
	}

	if err := uc.initialize(infraContainer); err != nil {
		return nil, fmt.Errorf("failed to initialize use case container: %w", err)
	}

	return uc, nil
}

// initialize sets up all use cases
func (uc *useCaseContainer) initialize(infraContainer *container.Container) error {
	log := infraContainer.Logger
	validate := infraContainer.Validator

	uc.deviceUseCases = DeviceUseCases{
		Create: deviceUC.NewCreateUseCase(
			infraContainer.DeviceRepo,
			log,
			validate,
		),
		Connect: deviceUC.NewConnectUseCase(
			infraContainer.DeviceRepo,
			log,
		),
		Disconnect: deviceUC.NewDisconnectUseCase(
			infraContainer.DeviceRepo,
			log,
		),
		Logout: deviceUC.NewLogoutUseCase(
			infraContainer.DeviceRepo,
			infraContainer.CredentialStore,
			log,
		),
		Delete: deviceUC.NewDeleteUseCase(
			infraContainer.DeviceRepo,
			infraContainer.CredentialStore,
			log,
		),
		List: deviceUC.NewListUseCase(
			infraContainer.DeviceRepo,
			log,
		),
		Get: deviceUC.NewGetUseCase(
			infraContainer.DeviceRepo,
			log,
		),
		SetProxy: deviceUC.NewSetProxyUseCase(
			infraContainer.DeviceRepo,
			log,
		),
		Pair: deviceUC.NewPairUseCase(
			infraContainer.DeviceRepo,
			log,
		),
	}

	uc.broadcastUseCases = BroadcastUseCases{
		Create: broadcastUC.NewCreateUseCase(
			infraContainer.BroadcastRepo,
			infraContainer.DeviceRepo,
			log,
			validate,
		),
		Cancel: broadcastUC.NewCancelUseCase(
			infraContainer.BroadcastRepo,
			log,
		),
		List: broadcastUC.NewListUseCase(
			infraContainer.BroadcastRepo,
			log,
		),
		Get: broadcastUC.NewGetUseCase(
			infraContainer.BroadcastRepo,
			log,
		),
	}

	uc.isInitialized = true
	log.Info("use case container initialized successfully")
	return nil
}

// GetDeviceUseCases returns device use cases
func (uc *useCaseContainer) GetDeviceUseCases() DeviceUseCases {
	return uc.deviceUseCases
}

// GetBroadcastUseCases returns broadcast use cases
func (uc *useCaseContainer) GetBroadcastUseCases() BroadcastUseCases {
	return uc.broadcastUseCases
}
