package dto

import (
	"errors"
	"fmt"
	"net/http"

	"whatsfleet/internal/domain/broadcast"
	"whatsfleet/internal/domain/device"
)

// ErrorCode represents standardized error codes for DTOs
type ErrorCode string

const (
	// Validation error codes
	ErrorCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrorCodeMissingField      ErrorCode = "MISSING_FIELD"
	ErrorCodeInvalidFormat     ErrorCode = "INVALID_FORMAT"
	ErrorCodeInvalidLength     ErrorCode = "INVALID_LENGTH"
	ErrorCodeInvalidCharacters ErrorCode = "INVALID_CHARACTERS"

	// Device error codes
	ErrorCodeDeviceNotFound      ErrorCode = "DEVICE_NOT_FOUND"
	ErrorCodeDeviceAlreadyExists ErrorCode = "DEVICE_ALREADY_EXISTS"
	ErrorCodeDeviceInvalidState  ErrorCode = "DEVICE_INVALID_STATE"

	// Broadcast error codes
	ErrorCodeBroadcastNotFound     ErrorCode = "BROADCAST_NOT_FOUND"
	ErrorCodeBroadcastNoRecipients ErrorCode = "BROADCAST_NO_RECIPIENTS"

	// Proxy error codes
	ErrorCodeInvalidProxy          ErrorCode = "INVALID_PROXY"
	ErrorCodeProxyConnectionFailed ErrorCode = "PROXY_CONNECTION_FAILED"
	ErrorCodeProxyAuthFailed       ErrorCode = "PROXY_AUTH_FAILED"

	// WhatsApp error codes
	ErrorCodeWhatsAppNotConnected ErrorCode = "WHATSAPP_NOT_CONNECTED"
	ErrorCodeWhatsAppAuthFailed   ErrorCode = "WHATSAPP_AUTH_FAILED"
	ErrorCodeWhatsAppQRExpired    ErrorCode = "WHATSAPP_QR_EXPIRED"

	// General error codes
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrorCodeTimeout            ErrorCode = "TIMEOUT"
	ErrorCodeRateLimited        ErrorCode = "RATE_LIMITED"
)

// String returns the string representation of ErrorCode
func (ec ErrorCode) String() string {
	return string(ec)
}

// HTTPStatusCode returns the appropriate HTTP status code for the error
func (ec ErrorCode) HTTPStatusCode() int {
	switch ec {
	case ErrorCodeValidationFailed, ErrorCodeInvalidInput, ErrorCodeMissingField,
		ErrorCodeInvalidFormat, ErrorCodeInvalidLength, ErrorCodeInvalidCharacters,
		ErrorCodeInvalidProxy:
		return http.StatusBadRequest
	case ErrorCodeDeviceNotFound, ErrorCodeBroadcastNotFound:
		return http.StatusNotFound
	case ErrorCodeDeviceAlreadyExists:
		return http.StatusConflict
	case ErrorCodeDeviceInvalidState, ErrorCodeBroadcastNoRecipients,
		ErrorCodeWhatsAppNotConnected, ErrorCodeWhatsAppAuthFailed:
		return http.StatusUnprocessableEntity
	case ErrorCodeProxyConnectionFailed, ErrorCodeProxyAuthFailed:
		return http.StatusBadGateway
	case ErrorCodeWhatsAppQRExpired:
		return http.StatusGone
	case ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusRequestTimeout
	case ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// DTOError represents a structured error for DTOs
type DTOError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	StatusCode int                    `json:"-"`
}

// Error implements the error interface
func (de *DTOError) Error() string {
	if de.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", de.Code, de.Message, de.Details)
	}
	return fmt.Sprintf("%s: %s", de.Code, de.Message)
}

// NewDTOError creates a new DTO error
func NewDTOError(code ErrorCode, message string) *DTOError {
	return &DTOError{
		Code:       code,
		Message:    message,
		Context:    make(map[string]interface{}),
		StatusCode: code.HTTPStatusCode(),
	}
}

// WithDetails adds details to the error
func (de *DTOError) WithDetails(details string) *DTOError {
	de.Details = details
	return de
}

// WithContext adds context to the error
func (de *DTOError) WithContext(key string, value interface{}) *DTOError {
	if de.Context == nil {
		de.Context = make(map[string]interface{})
	}
	de.Context[key] = value
	return de
}

// WithStatusCode sets a custom status code
func (de *DTOError) WithStatusCode(statusCode int) *DTOError {
	de.StatusCode = statusCode
	return de
}

// ToErrorResponse converts the DTO error to an error response
func (de *DTOError) ToErrorResponse() *ErrorResponse {
	return NewErrorResponseWithContext(de.Message, de.Code.String(), de.Details, de.Context)
}

// ErrorMapper maps domain errors to DTO errors
type ErrorMapper struct{}

// NewErrorMapper creates a new error mapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a domain error to a DTO error
func (em *ErrorMapper) MapError(err error) *DTOError {
	if err == nil {
		return nil
	}

	// Handle validation errors
	if validationErr, ok := err.(ValidationError); ok {
		return NewDTOError(ErrorCodeValidationFailed, validationErr.Message).
			WithContext("field", validationErr.Field).
			WithContext("tag", validationErr.Tag).
			WithContext("value", validationErr.Value)
	}

	if validationErrs, ok := err.(ValidationErrors); ok {
		return NewDTOError(ErrorCodeValidationFailed, "Multiple validation errors").
			WithContext("errors", validationErrs)
	}

	// Handle device/broadcast domain errors
	switch err {
	case device.ErrAlreadyRegistered:
		return NewDTOError(ErrorCodeDeviceAlreadyExists, "Device already registered")
	case device.ErrInvalidDeviceName:
		return NewDTOError(ErrorCodeInvalidInput, "Invalid device name")
	case device.ErrInvalidPhoneNumber:
		return NewDTOError(ErrorCodeInvalidInput, "Invalid phone number")
	case broadcast.ErrBroadcastNotFound:
		return NewDTOError(ErrorCodeBroadcastNotFound, "Broadcast not found")
	case broadcast.ErrNoRecipients:
		return NewDTOError(ErrorCodeBroadcastNoRecipients, "Broadcast has no recipients")
	case broadcast.ErrEmptyTemplate:
		return NewDTOError(ErrorCodeInvalidInput, "Broadcast message template cannot be empty")
	}
	if device.IsNotFoundError(err) {
		return NewDTOError(ErrorCodeDeviceNotFound, "Device not found")
	}

	// Handle wrapped errors
	if wrappedErr := errors.Unwrap(err); wrappedErr != nil {
		if mappedErr := em.MapError(wrappedErr); mappedErr != nil {
			return mappedErr.WithDetails(err.Error())
		}
	}

	// Default to internal error
	return NewDTOError(ErrorCodeInternalError, "Internal server error").
		WithDetails(err.Error())
}

// MapErrorToResponse maps an error to an error response
func (em *ErrorMapper) MapErrorToResponse(err error) *ErrorResponse {
	dtoErr := em.MapError(err)
	return dtoErr.ToErrorResponse()
}

