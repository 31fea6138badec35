package broadcast

import (
	"context"
	"time"

	"whatsfleet/internal/domain/broadcast"
	"whatsfleet/internal/domain/device"
	"whatsfleet/pkg/logger"
	"whatsfleet/pkg/validator"
)

// CreateUseCase registers a new broadcast draft. Actual dispatch is owned by
// the scheduler's promote-due tick (C8, §4.5): this use case only validates
// device ownership and persists the draft.
type CreateUseCase struct {
	broadcasts broadcast.Repository
	devices    device.Repository
	logger     logger.Logger
	validator  validator.Validator
}

func NewCreateUseCase(broadcasts broadcast.Repository, devices device.Repository, logger logger.Logger, validator validator.Validator) *CreateUseCase {
	return &CreateUseCase{broadcasts: broadcasts, devices: devices, logger: logger, validator: validator}
}

// RecipientInput mirrors broadcast.Recipient for the request boundary.
type RecipientInput struct {
	Phone string `json:"phone" validate:"required,phone_number"`
	Var1  string `json:"var1,omitempty"`
	Var2  string `json:"var2,omitempty"`
	Var3  string `json:"var3,omitempty"`
}

type CreateRequest struct {
	OwnerID     string           `json:"owner_id" validate:"required"`
	DeviceID    string           `json:"device_id" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Template    string           `json:"template" validate:"required"`
	MediaURL    string           `json:"media_url,omitempty"`
	Recipients  []RecipientInput `json:"recipients" validate:"required,min=1,dive"`
	ScheduledAt time.Time        `json:"scheduled_at,omitempty"`
}

type CreateResponse struct {
	Broadcast *broadcast.Broadcast `json:"broadcast"`
}

func (uc *CreateUseCase) Execute(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	if err := uc.validator.Validate(req); err != nil {
		uc.logger.ErrorWithError("validation failed for create broadcast", err, logger.Fields{
			"owner_id": req.OwnerID, "device_id": req.DeviceID,
		})
		return nil, err
	}

	deviceID, err := device.IDFromString(req.DeviceID)
	if err != nil {
		return nil, err
	}
	d, err := uc.devices.GetByID(ctx, deviceID)
	if err != nil {
		uc.logger.ErrorWithError("failed to get device for broadcast", err, logger.Fields{"device_id": req.DeviceID})
		return nil, err
	}
	if d.OwnerID() != req.OwnerID {
		uc.logger.WarnWithFields("ownership violation on create broadcast", logger.Fields{
			"device_id": req.DeviceID, "owner_id": req.OwnerID,
		})
		return nil, device.NewNotFoundError(deviceID)
	}

	recipients := make([]broadcast.Recipient, len(req.Recipients))
	for i, r := range req.Recipients {
		normalized, err := device.NormalizePhone(r.Phone)
		if err != nil {
			return nil, err
		}
		recipients[i] = broadcast.Recipient{Phone: normalized, Var1: r.Var1, Var2: r.Var2, Var3: r.Var3}
	}

	pacing := broadcast.DefaultPacing()
	pacing.BaseDelay = broadcast.BaseDelayFor(len(recipients))

	scheduledAt := req.ScheduledAt
	if scheduledAt.IsZero() {
		scheduledAt = time.Now()
	}

	b, err := broadcast.New(req.OwnerID, req.DeviceID, req.Name, req.Template, recipients, pacing, scheduledAt)
	if err != nil {
		uc.logger.ErrorWithError("failed to build broadcast", err, logger.Fields{"owner_id": req.OwnerID})
		return nil, err
	}
	if req.MediaURL != "" {
		b.SetMedia(req.MediaURL, "")
	}

	if err := uc.broadcasts.Create(ctx, b); err != nil {
		uc.logger.ErrorWithError("failed to persist broadcast", err, logger.Fields{"broadcast_id": b.ID()})
		return nil, err
	}

	uc.logger.InfoWithFields("broadcast created successfully", logger.Fields{
		"broadcast_id": b.ID(), "owner_id": req.OwnerID, "recipients": len(recipients),
	})

	return &CreateResponse{Broadcast: b}, nil
}
