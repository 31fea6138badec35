package device

import (
	"context"

	"whatsfleet/internal/domain/device"
	"whatsfleet/pkg/logger"
	"whatsfleet/pkg/validator"
)

// CreateUseCase handles device registration.
type CreateUseCase struct {
	repo      device.Repository
	logger    logger.Logger
	validator validator.Validator
}

func NewCreateUseCase(repo device.Repository, logger logger.Logger, validator validator.Validator) *CreateUseCase {
	return &CreateUseCase{repo: repo, logger: logger, validator: validator}
}

// CreateRequest represents the request to register a new device.
type CreateRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Name    string `json:"name" validate:"required,device_name"`
	Method  string `json:"connection_method" validate:"omitempty,oneof=qr pairing"`
	Phone   string `json:"phone" validate:"omitempty,phone_number"`
}

// CreateResponse represents the response from registering a device.
type CreateResponse struct {
	Device *device.Device `json:"device"`
}

// Execute creates a new, unconnected device owned by req.OwnerID.
func (uc *CreateUseCase) Execute(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for create device", err, logger.Fields{
			"owner_id": req.OwnerID, "name": req.Name,
		})
		return nil, err
	}

	method, err := device.ConnMethodFromString(req.Method)
	if err != nil {
		uc.logger.ErrorWithError("invalid connection method", err, logger.Fields{"method": req.Method})
		return nil, err
	}
	if method == device.ConnMethodPairing && req.Phone == "" {
		return nil, device.ErrInvalidPhoneNumber
	}

	d := device.New(req.OwnerID, req.Name, method)
	if req.Phone != "" {
		if err := d.SetPhone(req.Phone); err != nil {
			uc.logger.ErrorWithError("invalid phone number", err, logger.Fields{"phone": req.Phone})
			return nil, err
		}
	}

	if err := d.Validate(); err != nil {
		uc.logger.ErrorWithError("device validation failed", err, logger.Fields{
			"owner_id": req.OwnerID, "device_id": d.ID().String(),
		})
		return nil, err
	}

	if err := uc.repo.Create(ctx, d); err != nil {
		uc.logger.ErrorWithError("failed to create device", err, logger.Fields{
			"owner_id": req.OwnerID, "device_id": d.ID().String(),
		})
		return nil, err
	}

	uc.logger.InfoWithFields("device created successfully", logger.Fields{
		"device_id": d.ID().String(), "owner_id": req.OwnerID, "method": method.String(),
	})

	return &CreateResponse{Device: d}, nil
}
