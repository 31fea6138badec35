package device

import (
	"context"

	"whatsfleet/internal/domain/device"
	"whatsfleet/pkg/logger"
)

// ConnectUseCase requests that a device begin connecting. Unlike the
// teacher's single-tenant ConnectUseCase, this is a thin state transition:
// actually opening the whatsmeow socket is driven asynchronously by the
// supervisor's reconcile tick (C4, §4.3) once the device is claimed by a
// server, not by this call synchronously waiting on a connection result.
type ConnectUseCase struct {
	repo   device.Repository
	logger logger.Logger
}

func NewConnectUseCase(repo device.Repository, logger logger.Logger) *ConnectUseCase {
	return &ConnectUseCase{repo: repo, logger: logger}
}

type ConnectRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	OwnerID  string `json:"owner_id" validate:"required"`
}

type ConnectResponse struct {
	Device  *device.Device `json:"device"`
	Message string         `json:"message"`
}

func (uc *ConnectUseCase) Execute(ctx context.Context, req ConnectRequest) (*ConnectResponse, error) {
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
		uc.logger.WarnWithFields("ownership violation on device connect", logger.Fields{
			"device_id": req.DeviceID, "owner_id": req.OwnerID,
		})
		return nil, device.NewNotFoundError(id)
	}

	if !d.CanConnect() {
		uc.logger.InfoWithFields("device already connected", logger.Fields{"device_id": d.ID().String()})
		return &ConnectResponse{Device: d, Message: "device already connected"}, nil
	}

	d.BeginConnecting()
	if err := uc.repo.Update(ctx, d); err != nil {
		uc.logger.ErrorWithError("failed to update device", err, logger.Fields{"device_id": d.ID().String()})
		return nil, err
	}

	uc.logger.InfoWithFields("device connect requested", logger.Fields{
		"device_id": d.ID().String(), "method": d.ConnMethod().String(),
	})

	return &ConnectResponse{Device: d, Message: "connection requested, awaiting assignment"}, nil
}
