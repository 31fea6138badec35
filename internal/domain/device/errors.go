package device

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrDeviceAlreadyOwned = errors.New("device already owned by another server")
	ErrDeviceNotConnected = errors.New("device not connected")
	ErrDeviceInvalidState = errors.New("device in invalid state")

	ErrInvalidDeviceID = errors.New("invalid device id")

	ErrInvalidDeviceName      = errors.New("invalid device name")
	ErrDeviceNameTooShort     = errors.New("device name too short (minimum 3 characters)")
	ErrDeviceNameTooLong      = errors.New("device name too long (maximum 50 characters)")
	ErrInvalidDeviceNameChars = errors.New("device name contains invalid characters")

	ErrInvalidWhatsAppJID = errors.New("invalid whatsapp jid")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	ErrInvalidProxyURL        = errors.New("invalid proxy url")
	ErrUnsupportedProxyScheme = errors.New("unsupported proxy scheme")
	ErrInvalidProxyHost       = errors.New("invalid proxy host")

	ErrInvalidStatus = errors.New("invalid device status")

	ErrAlreadyRegistered = errors.New("device already registered, cannot request pairing code")
	ErrPairingRateLimited = errors.New("pairing code requests are rate limited, try again later")
)

// Error is a domain-specific error carrying a stable code plus context, mirroring
// the taxonomy the HTTP layer maps onto status codes.
type Error struct {
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

const (
	ErrCodeNotFound      = "DEVICE_NOT_FOUND"
	ErrCodeAlreadyOwned  = "DEVICE_ALREADY_OWNED"
	ErrCodeNotConnected  = "DEVICE_NOT_CONNECTED"
	ErrCodeInvalidState  = "DEVICE_INVALID_STATE"
	ErrCodeInvalidName   = "INVALID_DEVICE_NAME"
	ErrCodeInvalidJID    = "INVALID_WHATSAPP_JID"
	ErrCodeInvalidPhone  = "INVALID_PHONE_NUMBER"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeRepository    = "REPOSITORY_ERROR"
)

func NewNotFoundError(id ID) *Error {
	e := &Error{Code: ErrCodeNotFound, Message: "device not found"}
	return e.WithContext("device_id", id.String())
}

func NewRepositoryError(operation string, cause error) *Error {
	e := &Error{Code: ErrCodeRepository, Message: fmt.Sprintf("repository operation failed: %s", operation), Cause: cause}
	return e.WithContext("operation", operation)
}

func IsNotFoundError(err error) bool {
	var devErr *Error
	if errors.As(err, &devErr) {
		return devErr.Code == ErrCodeNotFound
	}
	return errors.Is(err, ErrDeviceNotFound)
}
