package device

import (
	"context"

	"whatsfleet/internal/domain/device"
	"whatsfleet/pkg/logger"
)

// DeleteUseCase permanently removes a device record. A registered device has
// its credential snapshot cleared first; it is not logged out, and its
// whatsmeow registration is left untouched. The supervisor tears down any
// live manager on its next tick once the row disappears.
type DeleteUseCase struct {
	repo   device.Repository
	creds  CredentialClearer
	logger logger.Logger
}

func NewDeleteUseCase(repo device.Repository, creds CredentialClearer, logger logger.Logger) *DeleteUseCase {
	return &DeleteUseCase{repo: repo, creds: creds, logger: logger}
}

type DeleteRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	OwnerID  string `json:"owner_id" validate:"required"`
}

type DeleteResponse struct {
	DeviceID string `json:"device_id"`
	Message  string `json:"message"`
}

func (uc *DeleteUseCase) Execute(ctx context.Context, req DeleteRequest) (*DeleteResponse, error) {
	id, err := device.IDFromString(req.DeviceID)
	if err != nil {
		return nil, err
	}

	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.logger.ErrorWithError("failed to get device for deletion", err, logger.Fields{"device_id": req.DeviceID})
		return nil, err
	}
	if d.OwnerID() != req.OwnerID {
		uc.logger.WarnWithFields("ownership violation on device delete", logger.Fields{
			"device_id": req.DeviceID, "owner_id": req.OwnerID,
		})
		return nil, device.NewNotFoundError(id)
	}

	if d.IsRegistered() {
		if err := uc.creds.Clear(ctx, id); err != nil {
			uc.logger.ErrorWithError("failed to clear credential snapshot before delete", err, logger.Fields{
				"device_id": req.DeviceID,
			})
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.ErrorWithError("failed to delete device", err, logger.Fields{"device_id": req.DeviceID})
		return nil, err
	}

	uc.logger.InfoWithFields("device deleted successfully", logger.Fields{"device_id": req.DeviceID})
	return &DeleteResponse{DeviceID: req.DeviceID, Message: "device deleted successfully"}, nil
}
