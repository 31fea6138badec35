package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"whatsfleet/internal/domain/device"
	"whatsfleet/internal/http/dto"
	"whatsfleet/internal/http/middleware"
	"whatsfleet/internal/infra/connmgr"
	"whatsfleet/pkg/logger"
	"whatsfleet/pkg/validator"
)

// ManagerLookup resolves a device's live connection manager (structurally
// satisfied by *supervisor.Supervisor — this package never imports it, only
// connmgr, so wiring the real supervisor in at the container level creates
// no import cycle).
type ManagerLookup interface {
	ManagerFor(id device.ID) (*connmgr.Manager, bool)
}

// MessageHandler implements the ad-hoc single-message send endpoint and
// group listing, both reading directly from the live Connection Manager
// rather than going through the durable broadcast dispatcher.
type MessageHandler struct {
	devices    device.Repository
	managers   ManagerLookup
	httpClient *http.Client
	logger     logger.Logger
	validator  validator.Validator
}

func NewMessageHandler(devices device.Repository, managers ManagerLookup, logger logger.Logger, validator validator.Validator) *MessageHandler {
	return &MessageHandler{
		devices:    devices,
		managers:   managers,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		validator:  validator,
	}
}

// SendMessage handles POST /send-message
// @Summary Enviar mensagem avulsa
// @Description Envia uma mensagem de texto, imagem ou documento através de um dispositivo autenticado, com verificação de posse do dispositivo pela chave de API.
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body dto.SendMessageRequest true "Mensagem a ser enviada"
// @Success 200 {object} dto.SuccessResponse{data=dto.SendMessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Dados inválidos, mensagem muito longa ou URL de mídia insegura"
// @Failure 404 {object} dto.ErrorResponse "Dispositivo não encontrado"
// @Failure 409 {object} dto.ErrorResponse "Dispositivo não está autenticado no momento"
// @Security ApiKeyAuth
// @Router /send-message [post]
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	var req dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	id, err := device.IDFromString(req.DeviceID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid device id", err)
		return
	}
	d, err := h.devices.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Device not found", err)
		return
	}
	if d.OwnerID() != owner {
		h.writeError(w, http.StatusNotFound, "Device not found", nil)
		return
	}

	if req.MediaURL != "" {
		if err := validateMediaURL(req.MediaURL); err != nil {
			h.writeError(w, http.StatusBadRequest, "Unsafe or invalid media URL", err)
			return
		}
	}

	mgr, ok := h.managers.ManagerFor(id)
	if !ok || mgr.State() != connmgr.StateAuthenticated {
		h.writeError(w, http.StatusConflict, "Device is not currently authenticated", nil)
		return
	}
	client := mgr.Client()
	if client == nil {
		h.writeError(w, http.StatusConflict, "Device has no live connection", nil)
		return
	}

	if req.MediaURL == "" {
		if err := client.SendMessage(r.Context(), req.TargetJID, req.Message); err != nil {
			h.writeError(w, http.StatusBadGateway, "Failed to send message", err)
			return
		}
	} else {
		path, mt, err := fetchMedia(r.Context(), h.httpClient, req.MediaURL)
		if err != nil {
			h.logger.WarnWithFields("media fetch failed for send-message, falling back to text", logger.Fields{
				"device_id": req.DeviceID, "error": err.Error(),
			})
			if err := client.SendMessage(r.Context(), req.TargetJID, req.Message); err != nil {
				h.writeError(w, http.StatusBadGateway, "Failed to send message", err)
				return
			}
		} else {
			defer os.Remove(path)
			caption := req.Caption
			if caption == "" {
				caption = req.Message
			}
			if isImageType(mt) {
				err = client.SendImage(r.Context(), req.TargetJID, path, caption)
			} else {
				err = client.SendDocument(r.Context(), req.TargetJID, path, caption)
			}
			if err != nil {
				h.writeError(w, http.StatusBadGateway, "Failed to send media message", err)
				return
			}
		}
	}

	h.writeSuccess(w, http.StatusOK, "Message sent", &dto.SendMessageResponse{
		DeviceID: req.DeviceID, TargetJID: req.TargetJID, Sent: true,
	})
}

// ListGroups handles GET /api/groups/{deviceId}
// @Summary Listar grupos do dispositivo
// @Description Retorna os grupos em que o dispositivo participa, lidos diretamente do Connection Manager ativo.
// @Tags Messages
// @Produce json
// @Param deviceId path string true "ID do dispositivo"
// @Success 200 {object} dto.SuccessResponse{data=dto.GroupListResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Dispositivo não está autenticado no momento"
// @Security ApiKeyAuth
// @Router /api/groups/{deviceId} [get]
func (h *MessageHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "API key is not scoped to an owner", nil)
		return
	}

	id, err := device.IDFromString(chi.URLParam(r, "deviceId"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid device id", err)
		return
	}
	d, err := h.devices.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Device not found", err)
		return
	}
	if d.OwnerID() != owner {
		h.writeError(w, http.StatusNotFound, "Device not found", nil)
		return
	}

	mgr, ok := h.managers.ManagerFor(id)
	if !ok || mgr.State() != connmgr.StateAuthenticated {
		h.writeError(w, http.StatusConflict, "Device is not currently authenticated", nil)
		return
	}
	client := mgr.Client()
	if client == nil {
		h.writeError(w, http.StatusConflict, "Device has no live connection", nil)
		return
	}

	groups, err := client.ListJoinedGroups(r.Context())
	if err != nil {
		h.writeError(w, http.StatusBadGateway, "Failed to list groups", err)
		return
	}

	resp := &dto.GroupListResponse{Groups: make([]dto.GroupResponse, 0, len(groups))}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, dto.GroupResponse{JID: g.JID, Name: g.Name, Participants: g.Participants})
	}
	h.writeSuccess(w, http.StatusOK, "Groups retrieved successfully", resp)
}

// validateMediaURL rejects non-http(s) schemes and URLs resolving to private
// or loopback addresses, guarding against the server being used to probe its
// own internal network (§6).
func validateMediaURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("missing host")
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		// Hostname may not resolve in this environment; the fetch itself will
		// fail safely rather than silently trusting an unresolvable host.
		return nil
	}
	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("media host resolves to a disallowed address")
		}
	}
	return nil
}

func fetchMedia(ctx context.Context, client *http.Client, mediaURL string) (path string, mimeType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 25<<20))
	if err != nil || len(body) == 0 {
		return "", "", fmt.Errorf("empty or unreadable media body")
	}

	f, err := os.CreateTemp("", "send-message-media-*")
	if err != nil {
		return "", "", err
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", "", err
	}
	f.Close()

	return f.Name(), mimetype.Detect(body).String(), nil
}

func isImageType(mt string) bool {
	return len(mt) >= 6 && mt[:6] == "image/"
}

func (h *MessageHandler) writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(dto.NewSuccessResponse(message, data))
}

func (h *MessageHandler) writeError(w http.ResponseWriter, statusCode int, message string, err error) {
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
