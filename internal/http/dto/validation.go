package dto

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"whatsfleet/pkg/validator"
)

// DTOValidator provides validation methods for DTOs that go beyond what
// struct tags can express (cross-field proxy rules, phone formats).
type DTOValidator struct {
	validator validator.Validator
}

// NewDTOValidator creates a new DTO validator
func NewDTOValidator(v validator.Validator) *DTOValidator {
	return &DTOValidator{validator: v}
}

// ValidateCreateDeviceRequest validates a device registration request.
func (dv *DTOValidator) ValidateCreateDeviceRequest(req *CreateDeviceRequest) error {
	if err := dv.validator.Validate(req); err != nil {
		return err
	}

	if req.Method == "pairing" {
		if err := dv.validatePhoneNumber(req.Phone); err != nil {
			return err
		}
	}

	return nil
}

// ValidateSetProxyRequest validates a proxy set/clear request.
func (dv *DTOValidator) ValidateSetProxyRequest(req *SetProxyRequest) error {
	if err := dv.validator.Validate(req); err != nil {
		return err
	}

	if req.HasProxy() {
		if err := dv.validateProxyConfig(req.ProxyHost, req.ProxyPort, req.ProxyType, req.Username, req.Password); err != nil {
			return err
		}
	}

	return nil
}

// ValidatePairDeviceRequest validates a pairing-code (re)start request.
func (dv *DTOValidator) ValidatePairDeviceRequest(req *PairDeviceRequest) error {
	if err := dv.validator.Validate(req); err != nil {
		return err
	}

	return dv.validatePhoneNumber(req.Phone)
}

// ValidatePaginationRequest validates a pagination request.
func (dv *DTOValidator) ValidatePaginationRequest(req *PaginationRequest) error {
	req.Normalize()
	return dv.validator.Validate(req)
}

// validateProxyConfig validates proxy configuration
func (dv *DTOValidator) validateProxyConfig(host string, port int, proxyType ProxyType, username, password string) error {
	if err := dv.validateHost(host); err != nil {
		return NewValidationError("proxy_host", "invalid_host", host, "Invalid proxy host: "+err.Error())
	}

	if port <= 0 || port > 65535 {
		return NewValidationError("proxy_port", "invalid_port", fmt.Sprintf("%d", port), "Proxy port must be between 1 and 65535")
	}

	if proxyType != "" && !proxyType.IsValid() {
		return NewValidationError("proxy_type", "invalid_type", string(proxyType), "Proxy type must be 'http' or 'socks5'")
	}

	if username != "" && password == "" {
		return NewValidationError("password", "required_with_username", "", "Password is required when username is provided")
	}

	if password != "" && username == "" {
		return NewValidationError("username", "required_with_password", "", "Username is required when password is provided")
	}

	return nil
}

// validateHost validates a host (IP or hostname)
func (dv *DTOValidator) validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}

	if ip := net.ParseIP(host); ip != nil {
		return nil
	}

	return dv.validateHostname(host)
}

// validateHostname validates a hostname according to RFC standards
func (dv *DTOValidator) validateHostname(hostname string) error {
	if len(hostname) == 0 || len(hostname) > 253 {
		return fmt.Errorf("hostname length must be between 1 and 253 characters")
	}

	hostnameRegex := regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?)*$`)
	if !hostnameRegex.MatchString(hostname) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}

// validatePhoneNumber validates a phone number in E.164-ish form.
func (dv *DTOValidator) validatePhoneNumber(phoneNumber string) error {
	if phoneNumber == "" {
		return NewValidationError("phone", "required", "", "Phone number is required")
	}

	cleaned := strings.ReplaceAll(phoneNumber, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")
	cleaned = strings.TrimPrefix(cleaned, "+")

	if len(cleaned) < 10 || len(cleaned) > 15 {
		return NewValidationError("phone", "invalid_length", phoneNumber, "Phone number must have between 10 and 15 digits")
	}

	for _, char := range cleaned {
		if char < '0' || char > '9' {
			return NewValidationError("phone", "invalid_characters", phoneNumber, "Phone number can only contain digits and an optional leading +")
		}
	}

	return nil
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", ve.Field, ve.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, tag, value, message string) ValidationError {
	return ValidationError{
		Field:   field,
		Tag:     tag,
		Value:   value,
		Message: message,
	}
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}

	return strings.Join(messages, "; ")
}

// ToValidationErrorResponse converts validation errors to response
func (ve ValidationErrors) ToValidationErrorResponse() *ValidationErrorResponse {
	fields := make([]ValidationFieldError, len(ve))
	for i, err := range ve {
		fields[i] = ValidationFieldError(err)
	}

	return NewValidationErrorResponse(fields)
}

// ProxyURLValidator validates proxy URLs
type ProxyURLValidator struct{}

// NewProxyURLValidator creates a new proxy URL validator
func NewProxyURLValidator() *ProxyURLValidator {
	return &ProxyURLValidator{}
}

// Validate validates a proxy URL
func (puv *ProxyURLValidator) Validate(proxyURL string) error {
	if proxyURL == "" {
		return nil // Empty URL is valid (no proxy)
	}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL format: %w", err)
	}

	switch parsedURL.Scheme {
	case "http", "https", "socks5":
	default:
		return fmt.Errorf("unsupported proxy scheme: %s (supported: http, https, socks5)", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("proxy URL must include host")
	}

	return nil
}

// DeviceNameValidator validates device names.
type DeviceNameValidator struct{}

// NewDeviceNameValidator creates a new device name validator
func NewDeviceNameValidator() *DeviceNameValidator {
	return &DeviceNameValidator{}
}

// Validate validates a device name
func (dnv *DeviceNameValidator) Validate(name string) error {
	if name == "" {
		return NewValidationError("name", "required", "", "Device name is required")
	}

	if len(name) < 3 {
		return NewValidationError("name", "min_length", name, "Device name must be at least 3 characters long")
	}

	if len(name) > 50 {
		return NewValidationError("name", "max_length", name, "Device name must be at most 50 characters long")
	}

	for _, char := range name {
		if !isValidDeviceNameChar(char) {
			return NewValidationError("name", "invalid_characters", name, "Device name can only contain letters, numbers, spaces, hyphens, and underscores")
		}
	}

	return nil
}

// isValidDeviceNameChar checks if a character is valid for device names
func isValidDeviceNameChar(char rune) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == ' ' ||
		char == '-' ||
		char == '_'
}
