package domain_broadcast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsfleet/internal/domain/broadcast"
)

func validRecipients() []broadcast.Recipient {
	return []broadcast.Recipient{{Phone: "6281234567890"}}
}

func TestNew(t *testing.T) {
	t.Run("creates a draft broadcast", func(t *testing.T) {
		b, err := broadcast.New("owner-1", "device-1", "campaign", "hello {{nama}}", validRecipients(), broadcast.DefaultPacing(), time.Time{})

		require.NoError(t, err)
		assert.NotEmpty(t, b.ID())
		assert.Equal(t, broadcast.StatusDraft, b.Status())
		assert.Equal(t, 0, b.SentCount())
		assert.Equal(t, 0, b.FailedCount())
	})

	t.Run("rejects an empty template", func(t *testing.T) {
		_, err := broadcast.New("owner-1", "device-1", "campaign", "", validRecipients(), broadcast.DefaultPacing(), time.Time{})
		assert.ErrorIs(t, err, broadcast.ErrEmptyTemplate)
	})

	t.Run("rejects a broadcast with no recipients", func(t *testing.T) {
		_, err := broadcast.New("owner-1", "device-1", "campaign", "hello", nil, broadcast.DefaultPacing(), time.Time{})
		assert.ErrorIs(t, err, broadcast.ErrNoRecipients)
	})
}

func TestBroadcast_IsDue(t *testing.T) {
	t.Run("draft with a past scheduled time is due", func(t *testing.T) {
		b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, b.IsDue(time.Now()))
	})

	t.Run("draft scheduled in the future is not due", func(t *testing.T) {
		b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, b.IsDue(time.Now()))
	})

	t.Run("a non-draft broadcast is never due", func(t *testing.T) {
		b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Time{})
		require.NoError(t, err)
		require.NoError(t, b.BeginProcessing())
		assert.False(t, b.IsDue(time.Now()))
	})
}

func TestBroadcast_Transitions(t *testing.T) {
	t.Run("BeginProcessing moves draft to processing", func(t *testing.T) {
		b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Time{})
		require.NoError(t, err)

		require.NoError(t, b.BeginProcessing())
		assert.Equal(t, broadcast.StatusProcessing, b.Status())
	})

	t.Run("BeginProcessing on a non-draft broadcast fails", func(t *testing.T) {
		b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Time{})
		require.NoError(t, err)
		require.NoError(t, b.BeginProcessing())

		assert.ErrorIs(t, b.BeginProcessing(), broadcast.ErrInvalidTransition)
	})

	t.Run("Cancel succeeds from a non-terminal state", func(t *testing.T) {
		b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Time{})
		require.NoError(t, err)

		require.NoError(t, b.Cancel())
		assert.Equal(t, broadcast.StatusCancelled, b.Status())
	})

	t.Run("Cancel fails once a broadcast is terminal", func(t *testing.T) {
		b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Time{})
		require.NoError(t, err)
		b.Complete()

		assert.ErrorIs(t, b.Cancel(), broadcast.ErrInvalidTransition)
	})

	t.Run("Fail moves to the failed terminal state", func(t *testing.T) {
		b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Time{})
		require.NoError(t, err)
		b.Fail()
		assert.Equal(t, broadcast.StatusFailed, b.Status())
		assert.True(t, b.Status().IsTerminal())
	})
}

func TestBroadcast_Counters(t *testing.T) {
	b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Time{})
	require.NoError(t, err)

	b.RecordSent(3)
	b.RecordSent(2)
	b.RecordFailed(1)

	assert.Equal(t, 5, b.SentCount())
	assert.Equal(t, 1, b.FailedCount())
}

func TestBaseDelayFor(t *testing.T) {
	cases := []struct {
		count int
		want  time.Duration
	}{
		{5, 3 * time.Second},
		{20, 3 * time.Second},
		{21, 5 * time.Second},
		{50, 5 * time.Second},
		{51, 8 * time.Second},
		{100, 8 * time.Second},
		{101, 12 * time.Second},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, broadcast.BaseDelayFor(c.count))
	}
}

func TestBroadcast_SetMedia(t *testing.T) {
	b, err := broadcast.New("o", "d", "n", "hi", validRecipients(), broadcast.DefaultPacing(), time.Time{})
	require.NoError(t, err)

	b.SetMedia("https://example.com/img.png", "image/png")

	assert.Equal(t, "https://example.com/img.png", b.MediaURL())
	assert.Equal(t, "image/png", b.MediaType())
}
