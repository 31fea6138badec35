package device

import (
	"context"

	"whatsfleet/internal/domain/device"
	"whatsfleet/pkg/logger"
)

// DisconnectUseCase marks a device disconnected. The supervisor's next
// reconcile tick tears down the live connection manager on its own once the
// device no longer appears in the connecting/connected set (§4.3 step 6) —
// this use case never reaches into the connection manager directly.
type DisconnectUseCase struct {
	repo   device.Repository
	logger logger.Logger
}

func NewDisconnectUseCase(repo device.Repository, logger logger.Logger) *DisconnectUseCase {
	return &DisconnectUseCase{repo: repo, logger: logger}
}

type DisconnectRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	OwnerID  string `json:"owner_id" validate:"required"`
}

type DisconnectResponse struct {
	Device  *device.Device `json:"device"`
	Message string         `json:"message"`
}

func (uc *DisconnectUseCase) Execute(ctx context.Context, req DisconnectRequest) (*DisconnectResponse, error) {
	id, err := device.IDFromString(req.DeviceID)
	if err != nil {
		return nil, err
	}

	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.logger.ErrorWithError("failed to get device", err, logger.Fields{"device_id": req.DeviceID})
		return nil, err
	}
	if d.OwnerID() != req.OwnerID {
		uc.logger.WarnWithFields("ownership violation on device disconnect", logger.Fields{
			"device_id": req.DeviceID, "owner_id": req.OwnerID,
		})
		return nil, device.NewNotFoundError(id)
	}

	if d.Status() == device.StatusDisconnected {
		return &DisconnectResponse{Device: d, Message: "device already disconnected"}, nil
	}

	d.Disconnect()
	if err := uc.repo.Update(ctx, d); err != nil {
		uc.logger.ErrorWithError("failed to update device", err, logger.Fields{"device_id": d.ID().String()})
		return nil, err
	}

	uc.logger.InfoWithFields("device disconnected", logger.Fields{"device_id": d.ID().String()})
	return &DisconnectResponse{Device: d, Message: "device disconnected successfully"}, nil
}

// LogoutUseCase is a permanent disconnect: credentials and phone binding are
// wiped so the device must re-register (QR or pairing) to reconnect.
type LogoutUseCase struct {
	repo   device.Repository
	creds  CredentialClearer
	logger logger.Logger
}

// CredentialClearer is the narrow surface needed to wipe the C1 snapshot.
type CredentialClearer interface {
	Clear(ctx context.Context, id device.ID) error
}

func NewLogoutUseCase(repo device.Repository, creds CredentialClearer, logger logger.Logger) *LogoutUseCase {
	return &LogoutUseCase{repo: repo, creds: creds, logger: logger}
}

type LogoutRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	OwnerID  string `json:"owner_id" validate:"required"`
}

type LogoutResponse struct {
	Device  *device.Device `json:"device"`
	Message string         `json:"message"`
}

func (uc *LogoutUseCase) Execute(ctx context.Context, req LogoutRequest) (*LogoutResponse, error) {
	id, err := device.IDFromString(req.DeviceID)
	if err != nil {
		return nil, err
	}

	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.logger.ErrorWithError("failed to get device", err, logger.Fields{"device_id": req.DeviceID})
		return nil, err
	}
	if d.OwnerID() != req.OwnerID {
		uc.logger.WarnWithFields("ownership violation on device logout", logger.Fields{
			"device_id": req.DeviceID, "owner_id": req.OwnerID,
		})
		return nil, device.NewNotFoundError(id)
	}

	d.LogOut()
	if err := uc.repo.Update(ctx, d); err != nil {
		uc.logger.ErrorWithError("failed to update device", err, logger.Fields{"device_id": d.ID().String()})
		return nil, err
	}
	if err := uc.creds.Clear(ctx, id); err != nil {
		uc.logger.ErrorWithError("failed to clear credential snapshot", err, logger.Fields{"device_id": d.ID().String()})
	}

	uc.logger.InfoWithFields("device logged out", logger.Fields{"device_id": d.ID().String()})
	return &LogoutResponse{Device: d, Message: "device logged out successfully"}, nil
}
