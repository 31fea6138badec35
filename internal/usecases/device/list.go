package device

import (
	"context"

	"whatsfleet/internal/domain/device"
	"whatsfleet/pkg/logger"
)

// ListUseCase lists devices owned by a single user.
type ListUseCase struct {
	repo   device.Repository
	logger logger.Logger
}

func NewListUseCase(repo device.Repository, logger logger.Logger) *ListUseCase {
	return &ListUseCase{repo: repo, logger: logger}
}

type ListRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

type ListResponse struct {
	Devices []*device.Device `json:"devices"`
	Total   int              `json:"total"`
}

func (uc *ListUseCase) Execute(ctx context.Context, req ListRequest) (*ListResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	devices, total, err := uc.repo.List(ctx, req.OwnerID, limit, req.Offset)
	if err != nil {
		uc.logger.ErrorWithError("failed to list devices", err, logger.Fields{"owner_id": req.OwnerID})
		return nil, err
	}

	return &ListResponse{Devices: devices, Total: total}, nil
}

// GetUseCase fetches a single device, enforcing ownership.
type GetUseCase struct {
	repo   device.Repository
	logger logger.Logger
}

func NewGetUseCase(repo device.Repository, logger logger.Logger) *GetUseCase {
	return &GetUseCase{repo: repo, logger: logger}
}

type GetRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	OwnerID  string `json:"owner_id" validate:"required"`
}

type GetResponse struct {
	Device *device.Device `json:"device"`
}

func (uc *GetUseCase) Execute(ctx context.Context, req GetRequest) (*GetResponse, error) {
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
		uc.logger.WarnWithFields("ownership violation on device get", logger.Fields{
			"device_id": req.DeviceID, "owner_id": req.OwnerID,
		})
		return nil, device.NewNotFoundError(id)
	}

	return &GetResponse{Device: d}, nil
}
