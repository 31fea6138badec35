package device

import (
	"context"

	"whatsfleet/internal/domain/device"
	"whatsfleet/pkg/logger"
)

// PairUseCase (re)starts pairing-code authentication for an existing,
// unregistered device: it records the phone number and flips the device to
// connecting so the supervisor's next reconcile tick starts a connection
// manager, which is what actually issues the code (§4.4). The manager runs in
// pairing mode only for a device whose stored connection method is pairing;
// this use case does not change the connection method.
type PairUseCase struct {
	repo   device.Repository
	logger logger.Logger
}

func NewPairUseCase(repo device.Repository, logger logger.Logger) *PairUseCase {
	return &PairUseCase{repo: repo, logger: logger}
}

type PairRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	OwnerID  string `json:"owner_id" validate:"required"`
	Phone    string `json:"phone" validate:"required,phone_number"`
}

type PairResponse struct {
	Device  *device.Device `json:"device"`
	Message string         `json:"message"`
}

func (uc *PairUseCase) Execute(ctx context.Context, req PairRequest) (*PairResponse, error) {
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
		uc.logger.WarnWithFields("ownership violation on pair request", logger.Fields{
			"device_id": req.DeviceID, "owner_id": req.OwnerID,
		})
		return nil, device.NewNotFoundError(id)
	}
	if d.IsRegistered() {
		return nil, device.ErrAlreadyRegistered
	}

	if err := d.SetPhone(req.Phone); err != nil {
		uc.logger.ErrorWithError("invalid phone number", err, logger.Fields{"device_id": req.DeviceID})
		return nil, err
	}
	d.BeginConnecting()

	if err := uc.repo.Update(ctx, d); err != nil {
		uc.logger.ErrorWithError("failed to update device for pairing", err, logger.Fields{"device_id": req.DeviceID})
		return nil, err
	}

	uc.logger.InfoWithFields("pairing requested", logger.Fields{"device_id": d.ID().String()})
	return &PairResponse{Device: d, Message: "pairing requested, poll the device for a code"}, nil
}
