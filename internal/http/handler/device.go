package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"whatsfleet/internal/domain/device"
	"whatsfleet/internal/http/dto"
	"whatsfleet/internal/http/middleware"
	deviceUC "whatsfleet/internal/usecases/device"
	"whatsfleet/pkg/errors"
	"whatsfleet/pkg/logger"
	"whatsfleet/pkg/validator"
)

// DeviceHandler handles device-related HTTP requests (session-lifecycle
// engine, §4.3/§4.4).
type DeviceHandler struct {
	createUC     *deviceUC.CreateUseCase
	connectUC    *deviceUC.ConnectUseCase
	disconnectUC *deviceUC.DisconnectUseCase
	logoutUC     *deviceUC.LogoutUseCase
	deleteUC     *deviceUC.DeleteUseCase
	listUC       *deviceUC.ListUseCase
	getUC        *deviceUC.GetUseCase
	setProxyUC   *deviceUC.SetProxyUseCase
	pairUC       *deviceUC.PairUseCase

	logger      logger.Logger
	validator   *dto.DTOValidator
	errorMapper *dto.ErrorMapper
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(
	createUC *deviceUC.CreateUseCase,
	connectUC *deviceUC.ConnectUseCase,
	disconnectUC *deviceUC.DisconnectUseCase,
	logoutUC *deviceUC.LogoutUseCase,
	deleteUC *deviceUC.DeleteUseCase,
	listUC *deviceUC.ListUseCase,
	getUC *deviceUC.GetUseCase,
	setProxyUC *deviceUC.SetProxyUseCase,
	pairUC *deviceUC.PairUseCase,
	logger logger.Logger,
	validator validator.Validator,
) *DeviceHandler {
	return &DeviceHandler{
		createUC:     createUC,
		connectUC:    connectUC,
		disconnectUC: disconnectUC,
		logoutUC:     logoutUC,
		deleteUC:     deleteUC,
		listUC:       listUC,
		getUC:        getUC,
		setProxyUC:   setProxyUC,
		pairUC:       pairUC,
		logger:       logger,
		validator:    dto.NewDTOValidator(validator),
		errorMapper:  dto.NewErrorMapper(),
	}
}

// CreateDevice handles POST /devices
// @Summary Registrar novo dispositivo WhatsApp
// @Description Registra um novo dispositivo no estado 'disconnected'. Use method=qr para autenticação via QR Code ou method=pairing (com phone) para código de pareamento.
// @Tags Devices
// @Accept json
// @Produce json
// @Param request body dto.CreateDeviceRequest true "Dados do dispositivo"
// @Success 201 {object} dto.SuccessResponse{data=dto.DeviceResponse} "Dispositivo criado com sucesso"
// @Failure 400 {object} dto.ErrorResponse "Dados inválidos"
// @Failure 500 {object} dto.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /devices [post]
func (h *DeviceHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerFrom(r)
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	var req dto.CreateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateCreateDeviceRequest(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	ucReq := deviceUC.CreateRequest{OwnerID: owner, Name: req.Name, Method: req.Method, Phone: req.Phone}
	result, err := h.createUC.Execute(r.Context(), ucReq)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusCreated, "Device created successfully", dto.NewDeviceResponse(result.Device))
}

// ListDevices handles GET /devices
// @Summary Listar dispositivos
// @Description Lista os dispositivos do dono autenticado pela chave de API
// @Tags Devices
// @Produce json
// @Param limit query int false "Itens por página (máx 200)"
// @Param offset query int false "Itens a pular"
// @Success 200 {object} dto.SuccessResponse{data=dto.DeviceListResponse}
// @Failure 500 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerFrom(r)
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	result, err := h.listUC.Execute(r.Context(), deviceUC.ListRequest{OwnerID: owner, Limit: limit, Offset: offset})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, "Devices retrieved successfully", dto.NewDeviceListResponse(result.Devices, result.Total))
}

// GetDevice handles GET /devices/{id}
// @Summary Obter detalhes do dispositivo
// @Tags Devices
// @Produce json
// @Param id path string true "ID do dispositivo (UUID)"
// @Success 200 {object} dto.SuccessResponse{data=dto.DeviceResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /devices/{id} [get]
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerFrom(r)
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.getUC.Execute(r.Context(), deviceUC.GetRequest{DeviceID: id, OwnerID: owner})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, "Device retrieved successfully", dto.NewDeviceResponse(result.Device))
}

// ConnectDevice handles POST /devices/{id}/connect
// @Summary Conectar dispositivo
// @Description Solicita a conexão do dispositivo. A abertura efetiva do socket é feita de forma assíncrona pelo supervisor de frota.
// @Tags Devices
// @Produce json
// @Param id path string true "ID do dispositivo (UUID)"
// @Success 200 {object} dto.SuccessResponse{data=dto.DeviceResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /devices/{id}/connect [post]
func (h *DeviceHandler) ConnectDevice(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerFrom(r)
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.connectUC.Execute(r.Context(), deviceUC.ConnectRequest{DeviceID: id, OwnerID: owner})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, result.Message, dto.NewDeviceResponse(result.Device))
}

// DisconnectDevice handles POST /devices/{id}/disconnect
// @Tags Devices
// @Produce json
// @Param id path string true "ID do dispositivo (UUID)"
// @Success 200 {object} dto.SuccessResponse{data=dto.DeviceResponse}
// @Security ApiKeyAuth
// @Router /devices/{id}/disconnect [post]
func (h *DeviceHandler) DisconnectDevice(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerFrom(r)
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.disconnectUC.Execute(r.Context(), deviceUC.DisconnectRequest{DeviceID: id, OwnerID: owner})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, result.Message, dto.NewDeviceResponse(result.Device))
}

// LogoutDevice handles POST /devices/{id}/logout
// @Tags Devices
// @Produce json
// @Param id path string true "ID do dispositivo (UUID)"
// @Success 200 {object} dto.SuccessResponse{data=dto.DeviceResponse}
// @Security ApiKeyAuth
// @Router /devices/{id}/logout [post]
func (h *DeviceHandler) LogoutDevice(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerFrom(r)
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.logoutUC.Execute(r.Context(), deviceUC.LogoutRequest{DeviceID: id, OwnerID: owner})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, result.Message, dto.NewDeviceResponse(result.Device))
}

// DeleteDevice handles DELETE /devices/{id}
// @Tags Devices
// @Produce json
// @Param id path string true "ID do dispositivo (UUID)"
// @Success 200 {object} dto.SuccessResponse
// @Security ApiKeyAuth
// @Router /devices/{id} [delete]
func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerFrom(r)
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.deleteUC.Execute(r.Context(), deviceUC.DeleteRequest{DeviceID: id, OwnerID: owner})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, result.Message, map[string]string{"device_id": result.DeviceID})
}

// PairDevice handles POST /devices/{id}/pair
// @Summary (Re)iniciar pareamento por código
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "ID do dispositivo (UUID)"
// @Param request body dto.PairDeviceRequest true "Telefone para pareamento"
// @Success 200 {object} dto.SuccessResponse{data=dto.DeviceResponse}
// @Security ApiKeyAuth
// @Router /devices/{id}/pair [post]
func (h *DeviceHandler) PairDevice(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerFrom(r)
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	var req dto.PairDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidatePairDeviceRequest(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.pairUC.Execute(r.Context(), deviceUC.PairRequest{DeviceID: id, OwnerID: owner, Phone: req.Phone})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, result.Message, dto.NewDeviceResponse(result.Device))
}

// SetProxy handles POST /devices/{id}/proxy
// @Summary Configurar ou remover proxy do dispositivo
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "ID do dispositivo (UUID)"
// @Param request body dto.SetProxyRequest true "Configuração do proxy (proxyHost vazio remove o proxy)"
// @Success 200 {object} dto.SuccessResponse{data=dto.DeviceResponse}
// @Security ApiKeyAuth
// @Router /devices/{id}/proxy [post]
func (h *DeviceHandler) SetProxy(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerFrom(r)
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	var req dto.SetProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateSetProxyRequest(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid proxy configuration", err)
		return
	}

	if _, err := req.BuildProxyURL(); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid proxy configuration", err)
		return
	}

	id := chi.URLParam(r, "id")
	ucReq := deviceUC.SetProxyRequest{
		DeviceID:  id,
		OwnerID:   owner,
		ProxyHost: req.ProxyHost,
		ProxyPort: req.ProxyPort,
		ProxyType: string(req.ProxyType),
		Username:  req.Username,
		Password:  req.Password,
	}

	result, err := h.setProxyUC.Execute(r.Context(), ucReq)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.writeSuccessResponse(w, http.StatusOK, result.Message, dto.NewDeviceResponse(result.Device))
}

// ownerFrom extracts the authenticated owner ID from the request context.
func (h *DeviceHandler) ownerFrom(r *http.Request) (string, bool) {
	return middleware.OwnerFromContext(r.Context())
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (h *DeviceHandler) writeSuccessResponse(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(dto.NewSuccessResponse(message, data))
}

func (h *DeviceHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
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

func (h *DeviceHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		h.writeErrorResponse(w, appErr.GetHTTPStatus(), appErr.Message, err)
		return
	}

	if device.IsNotFoundError(err) {
		h.writeErrorResponse(w, http.StatusNotFound, "Device not found", err)
		return
	}

	switch err {
	case device.ErrAlreadyRegistered:
		h.writeErrorResponse(w, http.StatusConflict, "Device already registered", err)
	case device.ErrInvalidPhoneNumber:
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid phone number", err)
	case device.ErrInvalidDeviceName:
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid device name", err)
	default:
		dtoErr := h.errorMapper.MapError(err)
		h.writeErrorResponse(w, dtoErr.StatusCode, dtoErr.Message, err)
	}
}
