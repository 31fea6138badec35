package database

import (
	"time"

	"github.com/uptrace/bun"

	"whatsfleet/internal/domain/fleetserver"
)

// ServerModel is the persisted form of a fleetserver.Server (§6).
type ServerModel struct {
	bun.BaseModel `bun:"table:backend_servers"`

	ID              string    `bun:"id,pk,type:varchar(128)" json:"id"`
	URL             string    `bun:"url,type:varchar(255)" json:"url"`
	Region          string    `bun:"region,type:varchar(50)" json:"region"`
	Priority        int       `bun:"priority,notnull,default:0" json:"priority"`
	MaxCapacity     int       `bun:"max_capacity,notnull,default:0" json:"max_capacity"`
	CurrentLoad     int       `bun:"current_load,notnull,default:0" json:"current_load"`
	IsActive        bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	IsHealthy       bool      `bun:"is_healthy,notnull,default:true" json:"is_healthy"`
	ResponseTimeMs  int64     `bun:"response_time_ms,notnull,default:0" json:"response_time_ms"`
	LastHealthCheck time.Time `bun:"last_health_check,type:datetime" json:"last_health_check"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp,type:datetime" json:"updated_at"`
}

func ToServerModel(s *fleetserver.Server) *ServerModel {
	return &ServerModel{
		ID:              s.ID(),
		URL:             s.URL(),
		Region:          s.Region(),
		Priority:        s.Priority(),
		MaxCapacity:     s.MaxCapacity(),
		CurrentLoad:     s.CurrentLoad(),
		IsActive:        s.IsActive(),
		IsHealthy:       s.IsHealthy(),
		ResponseTimeMs:  s.ResponseTimeMs(),
		LastHealthCheck: s.LastHealthCheck(),
		CreatedAt:       s.CreatedAt(),
		UpdatedAt:       s.UpdatedAt(),
	}
}

func FromServerModel(model *ServerModel) *fleetserver.Server {
	return fleetserver.Restore(
		model.ID, model.URL, model.Region, model.Priority, model.MaxCapacity, model.CurrentLoad,
		model.IsActive, model.IsHealthy, model.ResponseTimeMs,
		model.LastHealthCheck, model.CreatedAt, model.UpdatedAt,
	)
}

// ServerActionModel logs assignment/reaper actions for operator visibility (§6).
type ServerActionModel struct {
	bun.BaseModel `bun:"table:server_actions"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	ServerID  string    `bun:"server_id,notnull,type:varchar(128)" json:"server_id"`
	Action    string    `bun:"action,notnull,type:varchar(40)" json:"action"`
	DeviceID  string    `bun:"device_id,type:varchar(36)" json:"device_id,omitempty"`
	Detail    string    `bun:"detail,type:text" json:"detail,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
}
