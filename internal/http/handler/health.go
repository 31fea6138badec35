package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"whatsfleet/internal/http/dto"
	"whatsfleet/internal/infra/container"
	"whatsfleet/pkg/logger"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
	logger    logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container, logger logger.Logger) *HealthHandler {
	return &HealthHandler{container: container, logger: logger}
}

// Health handles GET /health
// @Summary Health Check da aplicação
// @Description Verifica o status de saúde da aplicação e quantos dispositivos estão conectados neste servidor
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Aplicação saudável"
// @Failure 503 {object} dto.HealthResponse "Serviços indisponíveis"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := h.container.Health(); err != nil {
		status = "unhealthy"
		h.logger.ErrorWithError("health check failed", err, logger.Fields{})
	}

	active, err := h.container.ActiveConnections(r.Context())
	if err != nil {
		status = "unhealthy"
		h.logger.ErrorWithError("failed to count active connections", err, logger.Fields{})
	}

	response := &dto.HealthResponse{
		Status:            status,
		ActiveConnections: active,
		Timestamp:         time.Now(),
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
