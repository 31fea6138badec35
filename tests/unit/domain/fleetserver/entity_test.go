package domain_fleetserver_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsfleet/internal/domain/fleetserver"
)

func TestValidateID(t *testing.T) {
	t.Run("rejects an id shorter than 3 characters", func(t *testing.T) {
		assert.ErrorIs(t, fleetserver.ValidateID("ab"), fleetserver.ErrInvalidID)
	})

	t.Run("rejects an id longer than 128 characters", func(t *testing.T) {
		long := make([]byte, 129)
		for i := range long {
			long[i] = 'a'
		}
		assert.ErrorIs(t, fleetserver.ValidateID(string(long)), fleetserver.ErrInvalidID)
	})

	t.Run("rejects characters outside the allowed set", func(t *testing.T) {
		assert.ErrorIs(t, fleetserver.ValidateID("server#1"), fleetserver.ErrInvalidID)
	})

	t.Run("rejects reserved tokens", func(t *testing.T) {
		assert.ErrorIs(t, fleetserver.ValidateID("admin"), fleetserver.ErrReservedID)
	})

	t.Run("accepts a well-formed id", func(t *testing.T) {
		assert.NoError(t, fleetserver.ValidateID("worker-east.01"))
	})
}

func TestServer_New(t *testing.T) {
	s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 100)

	assert.Equal(t, "worker-1", s.ID())
	assert.True(t, s.IsActive())
	assert.True(t, s.IsHealthy())
	assert.Equal(t, 0, s.CurrentLoad())
}

func TestServer_Touch(t *testing.T) {
	s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 100)
	s.Touch(false, 1500)

	assert.False(t, s.IsHealthy())
	assert.Equal(t, int64(1500), s.ResponseTimeMs())
}

func TestServer_ActivateDeactivate(t *testing.T) {
	s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 100)

	s.Deactivate()
	assert.False(t, s.IsActive())

	s.Activate()
	assert.True(t, s.IsActive())
}

func TestServer_IsStale(t *testing.T) {
	t.Run("a healthy server is never stale", func(t *testing.T) {
		s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 100)
		assert.False(t, s.IsStale(time.Millisecond))
	})

	t.Run("an unhealthy server becomes stale after maxAge", func(t *testing.T) {
		s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 100)
		s.Touch(false, 0)
		time.Sleep(2 * time.Millisecond)

		assert.True(t, s.IsStale(time.Millisecond))
	})
}

func TestServer_IsEligible(t *testing.T) {
	t.Run("eligible when active, healthy, and under capacity", func(t *testing.T) {
		s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 100)
		assert.True(t, s.IsEligible())
	})

	t.Run("ineligible once at capacity", func(t *testing.T) {
		s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 10)
		s.SetLoad(10)
		assert.False(t, s.IsEligible())
	})

	t.Run("ineligible when deactivated", func(t *testing.T) {
		s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 100)
		s.Deactivate()
		assert.False(t, s.IsEligible())
	})

	t.Run("ineligible when unhealthy", func(t *testing.T) {
		s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 100)
		s.Touch(false, 0)
		assert.False(t, s.IsEligible())
	})
}

func TestBestOf(t *testing.T) {
	t.Run("returns nil when no candidates are eligible", func(t *testing.T) {
		s := fleetserver.New("worker-1", "https://worker1.internal", "us-east", 10, 100)
		s.Deactivate()
		assert.Nil(t, fleetserver.BestOf([]*fleetserver.Server{s}))
	})

	t.Run("prefers higher priority first", func(t *testing.T) {
		low := fleetserver.New("low", "url", "r", 1, 100)
		high := fleetserver.New("high", "url", "r", 10, 100)

		best := fleetserver.BestOf([]*fleetserver.Server{low, high})

		assert.Equal(t, "high", best.ID())
	})

	t.Run("breaks priority ties on lower load", func(t *testing.T) {
		busy := fleetserver.New("busy", "url", "r", 5, 100)
		busy.SetLoad(50)
		idle := fleetserver.New("idle", "url", "r", 5, 100)

		best := fleetserver.BestOf([]*fleetserver.Server{busy, idle})

		assert.Equal(t, "idle", best.ID())
	})

	t.Run("breaks load ties on lower response time", func(t *testing.T) {
		slow := fleetserver.New("slow", "url", "r", 5, 100)
		slow.Touch(true, 500)
		fast := fleetserver.New("fast", "url", "r", 5, 100)
		fast.Touch(true, 50)

		best := fleetserver.BestOf([]*fleetserver.Server{slow, fast})

		assert.Equal(t, "fast", best.ID())
	})

	t.Run("breaks remaining ties on id ascending", func(t *testing.T) {
		b := fleetserver.New("b-server", "url", "r", 5, 100)
		a := fleetserver.New("a-server", "url", "r", 5, 100)

		best := fleetserver.BestOf([]*fleetserver.Server{b, a})

		assert.Equal(t, "a-server", best.ID())
	})
}

func TestServer_Restore(t *testing.T) {
	now := time.Now()
	s := fleetserver.Restore("id", "url", "region", 5, 100, 20, true, true, 100, now, now, now)

	require.Equal(t, "id", s.ID())
	assert.Equal(t, 20, s.CurrentLoad())
	assert.Equal(t, now, s.LastHealthCheck())
}
