package device

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"whatsfleet/internal/domain/device"
	"whatsfleet/pkg/logger"
)

// SetProxyUseCase configures (or clears) a device's outbound proxy.
// device.Device.SetProxyURL already validates scheme/host, so this use case
// only owns assembling the URL from its parts.
type SetProxyUseCase struct {
	repo   device.Repository
	logger logger.Logger
}

func NewSetProxyUseCase(repo device.Repository, logger logger.Logger) *SetProxyUseCase {
	return &SetProxyUseCase{repo: repo, logger: logger}
}

type SetProxyRequest struct {
	DeviceID  string `json:"device_id" validate:"required"`
	OwnerID   string `json:"owner_id" validate:"required"`
	ProxyHost string `json:"proxy_host"`
	ProxyPort int    `json:"proxy_port"`
	ProxyType string `json:"proxy_type"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
}

type SetProxyResponse struct {
	Device  *device.Device `json:"device"`
	Message string         `json:"message"`
}

func (uc *SetProxyUseCase) Execute(ctx context.Context, req SetProxyRequest) (*SetProxyResponse, error) {
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
		uc.logger.WarnWithFields("ownership violation on set proxy", logger.Fields{
			"device_id": req.DeviceID, "owner_id": req.OwnerID,
		})
		return nil, device.NewNotFoundError(id)
	}

	proxyURL := buildProxyURL(req.ProxyHost, req.ProxyPort, req.ProxyType, req.Username, req.Password)
	if err := d.SetProxyURL(proxyURL); err != nil {
		uc.logger.ErrorWithError("invalid proxy url", err, logger.Fields{"device_id": req.DeviceID, "proxy_url": proxyURL})
		return nil, err
	}

	if err := uc.repo.Update(ctx, d); err != nil {
		uc.logger.ErrorWithError("failed to update device with proxy", err, logger.Fields{"device_id": req.DeviceID})
		return nil, err
	}

	uc.logger.InfoWithFields("proxy configured for device", logger.Fields{
		"device_id": d.ID().String(), "has_proxy": d.HasProxy(),
	})
	return &SetProxyResponse{Device: d, Message: "proxy configured successfully"}, nil
}

func buildProxyURL(host string, port int, proxyType, username, password string) string {
	if host == "" {
		return ""
	}
	if proxyType == "" {
		proxyType = "http"
	}

	hostPort := host
	if port > 0 {
		hostPort = fmt.Sprintf("%s:%d", host, port)
	}
	if !strings.Contains(hostPort, "://") {
		hostPort = proxyType + "://" + hostPort
	}

	parsed, err := url.Parse(hostPort)
	if err != nil {
		return hostPort
	}
	if username != "" && password != "" {
		parsed.User = url.UserPassword(username, password)
	}
	return parsed.String()
}
