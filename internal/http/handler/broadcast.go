package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"whatsfleet/internal/domain/broadcast"
	"whatsfleet/internal/http/dto"
	"whatsfleet/internal/http/middleware"
	broadcastUC "whatsfleet/internal/usecases/broadcast"
	"whatsfleet/pkg/logger"
	"whatsfleet/pkg/validator"
)

// BroadcastHandler handles broadcast-related HTTP requests (durable
// broadcast dispatcher, §4.5).
type BroadcastHandler struct {
	createUC *broadcastUC.CreateUseCase
	cancelUC *broadcastUC.CancelUseCase
	listUC   *broadcastUC.ListUseCase
	getUC    *broadcastUC.GetUseCase

	logger      logger.Logger
	validator   validator.Validator
	errorMapper *dto.ErrorMapper
}

func NewBroadcastHandler(
	createUC *broadcastUC.CreateUseCase,
	cancelUC *broadcastUC.CancelUseCase,
	listUC *broadcastUC.ListUseCase,
	getUC *broadcastUC.GetUseCase,
	logger logger.Logger,
	validator validator.Validator,
) *BroadcastHandler {
	return &BroadcastHandler{
		createUC: createUC, cancelUC: cancelUC, listUC: listUC, getUC: getUC,
		logger: logger, validator: validator, errorMapper: dto.NewErrorMapper(),
	}
}

// CreateBroadcast handles POST /broadcasts
// @Summary Criar disparo em massa
// @Description Cria um rascunho de disparo em massa vinculado a um dispositivo. O disparo efetivo é conduzido pelo agendador (§4.5).
// @Tags Broadcasts
// @Accept json
// @Produce json
// @Param request body dto.CreateBroadcastRequest true "Dados do disparo"
// @Success 201 {object} dto.SuccessResponse{data=dto.BroadcastResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /broadcasts [post]
func (h *BroadcastHandler) CreateBroadcast(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	var req dto.CreateBroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	recipients := make([]broadcastUC.RecipientInput, len(req.Recipients))
	for i, rec := range req.Recipients {
		recipients[i] = broadcastUC.RecipientInput{Phone: rec.Phone, Var1: rec.Var1, Var2: rec.Var2, Var3: rec.Var3}
	}

	ucReq := broadcastUC.CreateRequest{
		OwnerID:     owner,
		DeviceID:    req.DeviceID,
		Name:        req.Name,
		Template:    req.Template,
		MediaURL:    req.MediaURL,
		Recipients:  recipients,
		ScheduledAt: req.ScheduledAt,
	}

	result, err := h.createUC.Execute(r.Context(), ucReq)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusCreated, "Broadcast created successfully", dto.NewBroadcastResponse(result.Broadcast))
}

// ListBroadcasts handles GET /broadcasts
// @Tags Broadcasts
// @Produce json
// @Success 200 {object} dto.SuccessResponse{data=dto.BroadcastListResponse}
// @Security ApiKeyAuth
// @Router /broadcasts [get]
func (h *BroadcastHandler) ListBroadcasts(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	result, err := h.listUC.Execute(r.Context(), broadcastUC.ListRequest{OwnerID: owner, Limit: limit, Offset: offset})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, "Broadcasts retrieved successfully", dto.NewBroadcastListResponse(result.Broadcasts, result.Total))
}

// GetBroadcast handles GET /broadcasts/{id}
// @Tags Broadcasts
// @Produce json
// @Param id path string true "ID do disparo"
// @Success 200 {object} dto.SuccessResponse{data=dto.BroadcastResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /broadcasts/{id} [get]
func (h *BroadcastHandler) GetBroadcast(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.getUC.Execute(r.Context(), broadcastUC.GetRequest{BroadcastID: id, OwnerID: owner})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, "Broadcast retrieved successfully", dto.NewBroadcastResponse(result.Broadcast))
}

// CancelBroadcast handles POST /broadcasts/{id}/cancel
// @Tags Broadcasts
// @Produce json
// @Param id path string true "ID do disparo"
// @Success 200 {object} dto.SuccessResponse{data=dto.BroadcastResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /broadcasts/{id}/cancel [post]
func (h *BroadcastHandler) CancelBroadcast(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.cancelUC.Execute(r.Context(), broadcastUC.CancelRequest{BroadcastID: id, OwnerID: owner})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, result.Message, dto.NewBroadcastResponse(result.Broadcast))
}

func (h *BroadcastHandler) writeSuccessResponse(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(dto.NewSuccessResponse(message, data))
}

func (h *BroadcastHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	var details string
	if err != nil {
		details = err.Error()
	}
	json.NewEncoder(w).Encode(dto.NewErrorResponse(message, "", details))

	if err != nil {
		h.logger.ErrorWithError("HTTP error response", err, logger.Fields{"status_code": statusCode, "message": message})
	}
}

func (h *BroadcastHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	switch err {
	case broadcast.ErrBroadcastNotFound:
		h.writeErrorResponse(w, http.StatusNotFound, "Broadcast not found", err)
	case broadcast.ErrNoRecipients:
		h.writeErrorResponse(w, http.StatusBadRequest, "Broadcast has no recipients", err)
	case broadcast.ErrEmptyTemplate:
		h.writeErrorResponse(w, http.StatusBadRequest, "Broadcast message template cannot be empty", err)
	case broadcast.ErrInvalidTransition:
		h.writeErrorResponse(w, http.StatusConflict, "Broadcast cannot be cancelled in its current state", err)
	default:
		dtoErr := h.errorMapper.MapError(err)
		h.writeErrorResponse(w, dtoErr.StatusCode, dtoErr.Message, err)
	}
}
