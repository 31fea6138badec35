package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsfleet/internal/http/dto"
	"whatsfleet/pkg/validator"
)

func newDTOValidator() *dto.DTOValidator {
	return dto.NewDTOValidator(validator.New())
}

func TestDTOValidator_ValidateCreateDeviceRequest(t *testing.T) {
	t.Run("accepts a valid qr request without a phone", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.CreateDeviceRequest{Name: "sales-team", Method: "qr"}

		assert.NoError(t, dv.ValidateCreateDeviceRequest(req))
	})

	t.Run("requires a phone number when method is pairing", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.CreateDeviceRequest{Name: "sales-team", Method: "pairing"}

		err := dv.ValidateCreateDeviceRequest(req)

		require.Error(t, err)
		assert.IsType(t, dto.ValidationError{}, err)
	})

	t.Run("accepts a pairing request with a well-formed phone", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.CreateDeviceRequest{Name: "sales-team", Method: "pairing", Phone: "5511999999999"}

		assert.NoError(t, dv.ValidateCreateDeviceRequest(req))
	})

	t.Run("rejects a name that is too short via the struct tag path", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.CreateDeviceRequest{Name: "ab", Method: "qr"}

		assert.Error(t, dv.ValidateCreateDeviceRequest(req))
	})
}

func TestDTOValidator_ValidateSetProxyRequest(t *testing.T) {
	t.Run("accepts an empty proxy request", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.SetProxyRequest{}

		assert.NoError(t, dv.ValidateSetProxyRequest(req))
	})

	t.Run("accepts a well-formed proxy", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.SetProxyRequest{ProxyHost: "proxy.example.com", ProxyPort: 8080, ProxyType: dto.ProxyTypeHTTP}

		assert.NoError(t, dv.ValidateSetProxyRequest(req))
	})

	t.Run("rejects username without a password", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.SetProxyRequest{ProxyHost: "proxy.example.com", ProxyPort: 8080, Username: "user"}

		err := dv.ValidateSetProxyRequest(req)

		require.Error(t, err)
		ve, ok := err.(dto.ValidationError)
		require.True(t, ok)
		assert.Equal(t, "password", ve.Field)
	})

	t.Run("rejects password without a username", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.SetProxyRequest{ProxyHost: "proxy.example.com", ProxyPort: 8080, Password: "pw"}

		err := dv.ValidateSetProxyRequest(req)

		require.Error(t, err)
		ve, ok := err.(dto.ValidationError)
		require.True(t, ok)
		assert.Equal(t, "username", ve.Field)
	})
}

func TestDTOValidator_ValidatePairDeviceRequest(t *testing.T) {
	t.Run("rejects an empty phone number", func(t *testing.T) {
		dv := newDTOValidator()
		err := dv.ValidatePairDeviceRequest(&dto.PairDeviceRequest{})
		assert.Error(t, err)
	})

	t.Run("accepts a valid phone number", func(t *testing.T) {
		dv := newDTOValidator()
		err := dv.ValidatePairDeviceRequest(&dto.PairDeviceRequest{Phone: "+55 (11) 99999-9999"})
		assert.NoError(t, err)
	})
}

func TestDTOValidator_ValidatePaginationRequest(t *testing.T) {
	t.Run("fills in defaults for a zero-valued request", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.PaginationRequest{}

		err := dv.ValidatePaginationRequest(req)

		require.NoError(t, err)
		assert.Equal(t, 50, req.Limit)
		assert.Equal(t, 0, req.Offset)
	})

	t.Run("caps an overly large limit at 100", func(t *testing.T) {
		dv := newDTOValidator()
		req := &dto.PaginationRequest{Limit: 500}

		require.NoError(t, dv.ValidatePaginationRequest(req))
		assert.Equal(t, 100, req.Limit)
	})
}
