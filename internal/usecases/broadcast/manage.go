package broadcast

import (
	"context"

	"whatsfleet/internal/domain/broadcast"
	"whatsfleet/pkg/logger"
)

// CancelUseCase cancels a draft or in-flight broadcast.
type CancelUseCase struct {
	repo   broadcast.Repository
	logger logger.Logger
}

func NewCancelUseCase(repo broadcast.Repository, logger logger.Logger) *CancelUseCase {
	return &CancelUseCase{repo: repo, logger: logger}
}

type CancelRequest struct {
	BroadcastID string `json:"broadcast_id" validate:"required"`
	OwnerID     string `json:"owner_id" validate:"required"`
}

type CancelResponse struct {
	Broadcast *broadcast.Broadcast `json:"broadcast"`
	Message   string               `json:"message"`
}

func (uc *CancelUseCase) Execute(ctx context.Context, req CancelRequest) (*CancelResponse, error) {
	b, err := uc.repo.GetByID(ctx, req.BroadcastID)
	if err != nil {
		uc.logger.ErrorWithError("failed to get broadcast", err, logger.Fields{"broadcast_id": req.BroadcastID})
		return nil, err
	}
	if b.OwnerID() != req.OwnerID {
		uc.logger.WarnWithFields("ownership violation on cancel broadcast", logger.Fields{
			"broadcast_id": req.BroadcastID, "owner_id": req.OwnerID,
		})
		return nil, broadcast.ErrBroadcastNotFound
	}

	if err := b.Cancel(); err != nil {
		uc.logger.WarnWithFields("cannot cancel broadcast", logger.Fields{
			"broadcast_id": req.BroadcastID, "status": string(b.Status()),
		})
		return nil, err
	}

	if err := uc.repo.Update(ctx, b); err != nil {
		uc.logger.ErrorWithError("failed to persist broadcast cancellation", err, logger.Fields{"broadcast_id": req.BroadcastID})
		return nil, err
	}

	uc.logger.InfoWithFields("broadcast cancelled", logger.Fields{"broadcast_id": req.BroadcastID})
	return &CancelResponse{Broadcast: b, Message: "broadcast cancelled successfully"}, nil
}

// ListUseCase lists broadcasts owned by a single user.
type ListUseCase struct {
	repo   broadcast.Repository
	logger logger.Logger
}

func NewListUseCase(repo broadcast.Repository, logger logger.Logger) *ListUseCase {
	return &ListUseCase{repo: repo, logger: logger}
}

type ListRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

type ListResponse struct {
	Broadcasts []*broadcast.Broadcast `json:"broadcasts"`
	Total      int                    `json:"total"`
}

func (uc *ListUseCase) Execute(ctx context.Context, req ListRequest) (*ListResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, total, err := uc.repo.List(ctx, req.OwnerID, limit, req.Offset)
	if err != nil {
		uc.logger.ErrorWithError("failed to list broadcasts", err, logger.Fields{"owner_id": req.OwnerID})
		return nil, err
	}
	return &ListResponse{Broadcasts: items, Total: total}, nil
}

// GetUseCase fetches a single broadcast, enforcing ownership.
type GetUseCase struct {
	repo   broadcast.Repository
	logger logger.Logger
}

func NewGetUseCase(repo broadcast.Repository, logger logger.Logger) *GetUseCase {
	return &GetUseCase{repo: repo, logger: logger}
}

type GetRequest struct {
	BroadcastID string `json:"broadcast_id" validate:"required"`
	OwnerID     string `json:"owner_id" validate:"required"`
}

type GetResponse struct {
	Broadcast *broadcast.Broadcast `json:"broadcast"`
}

func (uc *GetUseCase) Execute(ctx context.Context, req GetRequest) (*GetResponse, error) {
	b, err := uc.repo.GetByID(ctx, req.BroadcastID)
	if err != nil {
		uc.logger.ErrorWithError("failed to get broadcast", err, logger.Fields{"broadcast_id": req.BroadcastID})
		return nil, err
	}
	if b.OwnerID() != req.OwnerID {
		uc.logger.WarnWithFields("ownership violation on get broadcast", logger.Fields{
			"broadcast_id": req.BroadcastID, "owner_id": req.OwnerID,
		})
		return nil, broadcast.ErrBroadcastNotFound
	}
	return &GetResponse{Broadcast: b}, nil
}
