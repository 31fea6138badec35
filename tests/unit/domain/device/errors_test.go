package domain_device_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsfleet/internal/domain/device"
)

func TestError_Error(t *testing.T) {
	t.Run("without a cause, renders just the message", func(t *testing.T) {
		e := &device.Error{Message: "something broke"}
		assert.Equal(t, "something broke", e.Error())
	})

	t.Run("with a cause, includes it", func(t *testing.T) {
		cause := errors.New("underlying failure")
		e := &device.Error{Message: "repository operation failed", Cause: cause}
		assert.Contains(t, e.Error(), "underlying failure")
	})

	t.Run("Unwrap exposes the cause", func(t *testing.T) {
		cause := errors.New("underlying failure")
		e := &device.Error{Cause: cause}
		assert.Equal(t, cause, e.Unwrap())
	})
}

func TestError_WithContext(t *testing.T) {
	e := (&device.Error{Message: "x"}).WithContext("device_id", "abc").WithContext("op", "create")

	assert.Equal(t, "abc", e.Context["device_id"])
	assert.Equal(t, "create", e.Context["op"])
}

func TestNewNotFoundError(t *testing.T) {
	id := device.NewID()
	err := device.NewNotFoundError(id)

	assert.Equal(t, device.ErrCodeNotFound, err.Code)
	assert.Equal(t, id.String(), err.Context["device_id"])
}

func TestIsNotFoundError(t *testing.T) {
	t.Run("true for the structured not-found error", func(t *testing.T) {
		err := device.NewNotFoundError(device.NewID())
		assert.True(t, device.IsNotFoundError(err))
	})

	t.Run("true for the sentinel not-found error", func(t *testing.T) {
		assert.True(t, device.IsNotFoundError(device.ErrDeviceNotFound))
	})

	t.Run("false for an unrelated error", func(t *testing.T) {
		assert.False(t, device.IsNotFoundError(errors.New("some other failure")))
	})

	t.Run("false for a structured error with a different code", func(t *testing.T) {
		err := device.NewRepositoryError("find", errors.New("db down"))
		require.NotNil(t, err)
		assert.False(t, device.IsNotFoundError(err))
	})
}

func TestNewRepositoryError(t *testing.T) {
	cause := errors.New("connection refused")
	err := device.NewRepositoryError("create", cause)

	assert.Equal(t, device.ErrCodeRepository, err.Code)
	assert.Equal(t, "create", err.Context["operation"])
	assert.ErrorIs(t, err, cause)
}
