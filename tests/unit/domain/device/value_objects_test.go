package domain_device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsfleet/internal/domain/device"
)

func TestID(t *testing.T) {
	t.Run("NewID produces a non-empty, unique value", func(t *testing.T) {
		id1 := device.NewID()
		id2 := device.NewID()

		assert.False(t, id1.IsEmpty())
		assert.False(t, id1.Equals(id2))
	})

	t.Run("IDFromString rejects an empty string", func(t *testing.T) {
		_, err := device.IDFromString("")
		assert.ErrorIs(t, err, device.ErrInvalidDeviceID)
	})

	t.Run("IDFromString rejects a non-UUID string", func(t *testing.T) {
		_, err := device.IDFromString("not-a-uuid")
		assert.ErrorIs(t, err, device.ErrInvalidDeviceID)
	})

	t.Run("IDFromString round-trips a valid UUID", func(t *testing.T) {
		original := device.NewID()

		parsed, err := device.IDFromString(original.String())

		require.NoError(t, err)
		assert.True(t, original.Equals(parsed))
	})
}

func TestStatus(t *testing.T) {
	t.Run("String renders each known status", func(t *testing.T) {
		cases := map[device.Status]string{
			device.StatusDisconnected:   "disconnected",
			device.StatusConnecting:     "connecting",
			device.StatusWaitingPairing: "waiting_pairing",
			device.StatusConnected:      "connected",
			device.StatusError:          "error",
		}
		for status, want := range cases {
			assert.Equal(t, want, status.String())
		}
	})

	t.Run("StatusFromString parses known values case-insensitively", func(t *testing.T) {
		status, err := device.StatusFromString("CONNECTED")
		require.NoError(t, err)
		assert.Equal(t, device.StatusConnected, status)
	})

	t.Run("StatusFromString rejects unknown values", func(t *testing.T) {
		_, err := device.StatusFromString("bogus")
		assert.Error(t, err)
	})
}

func TestConnMethod(t *testing.T) {
	t.Run("ConnMethodFromString defaults an empty string to QR", func(t *testing.T) {
		method, err := device.ConnMethodFromString("")
		require.NoError(t, err)
		assert.Equal(t, device.ConnMethodQR, method)
	})

	t.Run("ConnMethodFromString parses pairing", func(t *testing.T) {
		method, err := device.ConnMethodFromString("pairing")
		require.NoError(t, err)
		assert.Equal(t, device.ConnMethodPairing, method)
	})

	t.Run("ConnMethodFromString rejects unknown values", func(t *testing.T) {
		_, err := device.ConnMethodFromString("carrier-pigeon")
		assert.Error(t, err)
	})
}

func TestName(t *testing.T) {
	t.Run("rejects names shorter than 3 characters", func(t *testing.T) {
		_, err := device.NewName("ab")
		assert.ErrorIs(t, err, device.ErrDeviceNameTooShort)
	})

	t.Run("rejects names longer than 50 characters", func(t *testing.T) {
		long := make([]byte, 51)
		for i := range long {
			long[i] = 'a'
		}
		_, err := device.NewName(string(long))
		assert.ErrorIs(t, err, device.ErrDeviceNameTooLong)
	})

	t.Run("rejects names with invalid characters", func(t *testing.T) {
		_, err := device.NewName("bad!name")
		assert.ErrorIs(t, err, device.ErrInvalidDeviceNameChars)
	})

	t.Run("accepts a well-formed name", func(t *testing.T) {
		name, err := device.NewName("sales-team_01")
		require.NoError(t, err)
		assert.Equal(t, "sales-team_01", name.String())
	})
}

func TestWhatsAppJID(t *testing.T) {
	t.Run("rejects an empty JID", func(t *testing.T) {
		_, err := device.NewWhatsAppJID("")
		assert.ErrorIs(t, err, device.ErrInvalidWhatsAppJID)
	})

	t.Run("rejects a JID without an @ separator", func(t *testing.T) {
		_, err := device.NewWhatsAppJID("1234567890")
		assert.ErrorIs(t, err, device.ErrInvalidWhatsAppJID)
	})

	t.Run("accepts a well-formed JID", func(t *testing.T) {
		jid, err := device.NewWhatsAppJID("1234567890@s.whatsapp.net")
		require.NoError(t, err)
		assert.Equal(t, "1234567890@s.whatsapp.net", jid.String())
	})
}

func TestNormalizePhone(t *testing.T) {
	t.Run("rewrites a leading 0 to the 62 country code", func(t *testing.T) {
		n, err := device.NormalizePhone("081234567890")
		require.NoError(t, err)
		assert.Equal(t, "6281234567890", n)
	})

	t.Run("prepends 62 to a bare local number", func(t *testing.T) {
		n, err := device.NormalizePhone("81234567890")
		require.NoError(t, err)
		assert.Equal(t, "6281234567890", n)
	})

	t.Run("leaves an already-prefixed number untouched", func(t *testing.T) {
		n, err := device.NormalizePhone("6281234567890")
		require.NoError(t, err)
		assert.Equal(t, "6281234567890", n)
	})

	t.Run("strips formatting characters before validating", func(t *testing.T) {
		n, err := device.NormalizePhone("+62 812-3456-7890")
		require.NoError(t, err)
		assert.Equal(t, "6281234567890", n)
	})

	t.Run("rejects a string with no digits", func(t *testing.T) {
		_, err := device.NormalizePhone("abc")
		assert.ErrorIs(t, err, device.ErrInvalidPhoneNumber)
	})

	t.Run("rejects a number that's too short after normalization", func(t *testing.T) {
		_, err := device.NormalizePhone("123")
		assert.ErrorIs(t, err, device.ErrInvalidPhoneNumber)
	})
}
