// Package fleetserver models the backend servers that the assignment
// controller (C3) elects to drive devices. It is named fleetserver rather
// than server to avoid colliding with the HTTP server package.
package fleetserver

import (
	"errors"
	"time"
)

var (
	ErrInvalidID       = errors.New("invalid server id")
	ErrReservedID      = errors.New("server id uses a reserved token")
	ErrInvalidURL      = errors.New("invalid server url")
	ErrServerNotFound  = errors.New("server not found")
)

var reservedIDs = map[string]bool{
	"admin": true, "root": true, "system": true, "null": true,
}

// ValidateID enforces the identity-derivation contract from §4.2: 3-128 chars
// of letters, digits, underscore, dot or hyphen, excluding reserved tokens.
func ValidateID(id string) error {
	if len(id) < 3 || len(id) > 128 {
		return ErrInvalidID
	}
	for _, r := range id {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '.' || r == '-'
		if !ok {
			return ErrInvalidID
		}
	}
	if reservedIDs[id] {
		return ErrReservedID
	}
	return nil
}

// Server is a backend process participating in device assignment.
type Server struct {
	id              string
	url             string
	region          string
	priority        int
	maxCapacity     int
	currentLoad     int
	isActive        bool
	isHealthy       bool
	responseTimeMs  int64
	lastHealthCheck time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

// New creates a server identity record for registration at boot.
func New(id, url, region string, priority, maxCapacity int) *Server {
	now := time.Now()
	return &Server{
		id: id, url: url, region: region, priority: priority, maxCapacity: maxCapacity,
		isActive: true, isHealthy: true, lastHealthCheck: now, createdAt: now, updatedAt: now,
	}
}

func Restore(id, url, region string, priority, maxCapacity, currentLoad int, isActive, isHealthy bool, responseTimeMs int64, lastHealthCheck, createdAt, updatedAt time.Time) *Server {
	return &Server{
		id: id, url: url, region: region, priority: priority, maxCapacity: maxCapacity,
		currentLoad: currentLoad, isActive: isActive, isHealthy: isHealthy,
		responseTimeMs: responseTimeMs, lastHealthCheck: lastHealthCheck,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Touch refreshes the health-check heartbeat (§4.2 health tick, every 60s).
func (s *Server) Touch(healthy bool, responseTimeMs int64) {
	s.isHealthy = healthy
	s.responseTimeMs = responseTimeMs
	s.lastHealthCheck = time.Now()
	s.updatedAt = time.Now()
}

func (s *Server) Deactivate() {
	s.isActive = false
	s.updatedAt = time.Now()
}

func (s *Server) Activate() {
	s.isActive = true
	s.updatedAt = time.Now()
}

// IsStale reports whether this server is marked unhealthy and its last health
// check is older than maxAge, the condition the reaper uses to reclaim its
// devices (§4.2, 120s = 2x tick). A healthy server is never stale.
func (s *Server) IsStale(maxAge time.Duration) bool {
	return !s.isHealthy && time.Since(s.lastHealthCheck) > maxAge
}

// IsEligible reports whether this server may accept new device claims.
func (s *Server) IsEligible() bool {
	return s.isActive && s.isHealthy && s.currentLoad < s.maxCapacity
}

func (s *Server) SetLoad(load int) {
	s.currentLoad = load
	s.updatedAt = time.Now()
}

func (s *Server) ID() string                     { return s.id }
func (s *Server) URL() string                    { return s.url }
func (s *Server) Region() string                 { return s.region }
func (s *Server) Priority() int                  { return s.priority }
func (s *Server) MaxCapacity() int               { return s.maxCapacity }
func (s *Server) CurrentLoad() int               { return s.currentLoad }
func (s *Server) IsActive() bool                 { return s.isActive }
func (s *Server) IsHealthy() bool                { return s.isHealthy }
func (s *Server) ResponseTimeMs() int64          { return s.responseTimeMs }
func (s *Server) LastHealthCheck() time.Time     { return s.lastHealthCheck }
func (s *Server) CreatedAt() time.Time           { return s.createdAt }
func (s *Server) UpdatedAt() time.Time           { return s.updatedAt }

// BestOf selects the highest-scoring eligible server per §4.2's ordering:
// priority desc, load asc, response time asc, id asc as the final tiebreak.
func BestOf(candidates []*Server) *Server {
	var best *Server
	for _, c := range candidates {
		if !c.IsEligible() {
			continue
		}
		if best == nil || better(c, best) {
			best = c
		}
	}
	return best
}

func better(a, b *Server) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if a.currentLoad != b.currentLoad {
		return a.currentLoad < b.currentLoad
	}
	if a.responseTimeMs != b.responseTimeMs {
		return a.responseTimeMs < b.responseTimeMs
	}
	return a.id < b.id
}
