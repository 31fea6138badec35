package dto_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"whatsfleet/internal/domain/broadcast"
	"whatsfleet/internal/domain/device"
	"whatsfleet/internal/http/dto"
)

func TestErrorCode_HTTPStatusCode(t *testing.T) {
	cases := []struct {
		code dto.ErrorCode
		want int
	}{
		{dto.ErrorCodeInvalidInput, http.StatusBadRequest},
		{dto.ErrorCodeDeviceNotFound, http.StatusNotFound},
		{dto.ErrorCodeDeviceAlreadyExists, http.StatusConflict},
		{dto.ErrorCodeWhatsAppNotConnected, http.StatusUnprocessableEntity},
		{dto.ErrorCodeProxyConnectionFailed, http.StatusBadGateway},
		{dto.ErrorCodeWhatsAppQRExpired, http.StatusGone},
		{dto.ErrorCodeServiceUnavailable, http.StatusServiceUnavailable},
		{dto.ErrorCodeTimeout, http.StatusRequestTimeout},
		{dto.ErrorCodeRateLimited, http.StatusTooManyRequests},
		{dto.ErrorCode("SOMETHING_UNKNOWN"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.code.HTTPStatusCode())
	}
}

func TestNewDTOError(t *testing.T) {
	err := dto.NewDTOError(dto.ErrorCodeDeviceNotFound, "Device not found")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "Device not found", err.Message)
	assert.Contains(t, err.Error(), "Device not found")
}

func TestDTOError_WithDetailsAndContext(t *testing.T) {
	err := dto.NewDTOError(dto.ErrorCodeInvalidInput, "bad input").
		WithDetails("field x is wrong").
		WithContext("field", "x")

	assert.Equal(t, "field x is wrong", err.Details)
	assert.Equal(t, "x", err.Context["field"])
	assert.Contains(t, err.Error(), "field x is wrong")
}

func TestErrorMapper_MapError(t *testing.T) {
	mapper := dto.NewErrorMapper()

	t.Run("nil error maps to nil", func(t *testing.T) {
		assert.Nil(t, mapper.MapError(nil))
	})

	t.Run("known device errors map to their specific codes", func(t *testing.T) {
		mapped := mapper.MapError(device.ErrAlreadyRegistered)
		assert.Equal(t, dto.ErrorCodeDeviceAlreadyExists, mapped.Code)
	})

	t.Run("known broadcast errors map to their specific codes", func(t *testing.T) {
		mapped := mapper.MapError(broadcast.ErrBroadcastNotFound)
		assert.Equal(t, dto.ErrorCodeBroadcastNotFound, mapped.Code)
	})

	t.Run("structured not-found errors map to device-not-found", func(t *testing.T) {
		mapped := mapper.MapError(device.NewNotFoundError(device.NewID()))
		assert.Equal(t, dto.ErrorCodeDeviceNotFound, mapped.Code)
	})

	t.Run("a ValidationError maps to a validation-failed code with field context", func(t *testing.T) {
		ve := dto.NewValidationError("phone", "required", "", "Phone number is required")

		mapped := mapper.MapError(ve)

		assert.Equal(t, dto.ErrorCodeValidationFailed, mapped.Code)
		assert.Equal(t, "phone", mapped.Context["field"])
	})

	t.Run("an unrecognized error falls back to internal error with its message as details", func(t *testing.T) {
		mapped := mapper.MapError(errors.New("boom"))

		assert.Equal(t, dto.ErrorCodeInternalError, mapped.Code)
		assert.Equal(t, "boom", mapped.Details)
	})
}

func TestErrorMapper_MapErrorToResponse(t *testing.T) {
	mapper := dto.NewErrorMapper()

	resp := mapper.MapErrorToResponse(device.ErrInvalidPhoneNumber)

	assert.False(t, resp.Success)
	assert.Equal(t, string(dto.ErrorCodeInvalidInput), resp.Code)
}
