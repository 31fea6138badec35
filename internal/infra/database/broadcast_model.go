package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"whatsfleet/internal/domain/broadcast"
)

// BroadcastModel is the persisted form of a broadcast.Broadcast (§6).
// Recipients and pacing are stored as JSON text, mirroring the teacher's
// ProxyConfig JSON-column convention in models.go.
type BroadcastModel struct {
	bun.BaseModel `bun:"table:broadcasts"`

	ID          string    `bun:"id,pk,type:varchar(36)" json:"id"`
	OwnerID     string    `bun:"owner_id,notnull,type:varchar(100)" json:"owner_id"`
	DeviceID    string    `bun:"device_id,notnull,type:varchar(36)" json:"device_id"`
	Name        string    `bun:"name,type:varchar(100)" json:"name"`
	Template    string    `bun:"template,notnull,type:text" json:"template"`
	MediaURL    string    `bun:"media_url,type:text" json:"media_url,omitempty"`
	MediaType   string    `bun:"media_type,type:varchar(100)" json:"media_type,omitempty"`
	Recipients  string    `bun:"recipients,notnull,type:text" json:"-"`
	PacingJSON  string    `bun:"pacing,notnull,type:text" json:"-"`
	ScheduledAt time.Time `bun:"scheduled_at,type:datetime" json:"scheduled_at"`
	Status      string    `bun:"status,notnull,type:varchar(20),default:'draft'" json:"status"`
	SentCount   int       `bun:"sent_count,notnull,default:0" json:"sent_count"`
	FailedCount int       `bun:"failed_count,notnull,default:0" json:"failed_count"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp,type:datetime" json:"updated_at"`
}

// ToBroadcastModel converts a domain broadcast to its database model.
func ToBroadcastModel(b *broadcast.Broadcast) (*BroadcastModel, error) {
	recipientsJSON, err := json.Marshal(b.Recipients())
	if err != nil {
		return nil, fmt.Errorf("marshal recipients: %w", err)
	}
	pacingJSON, err := json.Marshal(b.Pacing())
	if err != nil {
		return nil, fmt.Errorf("marshal pacing: %w", err)
	}
	return &BroadcastModel{
		ID:          b.ID(),
		OwnerID:     b.OwnerID(),
		DeviceID:    b.DeviceID(),
		Name:        b.Name(),
		Template:    b.Template(),
		MediaURL:    b.MediaURL(),
		MediaType:   b.MediaType(),
		Recipients:  string(recipientsJSON),
		PacingJSON:  string(pacingJSON),
		ScheduledAt: b.ScheduledAt(),
		Status:      string(b.Status()),
		SentCount:   b.SentCount(),
		FailedCount: b.FailedCount(),
		CreatedAt:   b.CreatedAt(),
		UpdatedAt:   b.UpdatedAt(),
	}, nil
}

// FromBroadcastModel converts a database model back into a domain broadcast.
func FromBroadcastModel(model *BroadcastModel) (*broadcast.Broadcast, error) {
	var recipients []broadcast.Recipient
	if err := json.Unmarshal([]byte(model.Recipients), &recipients); err != nil {
		return nil, fmt.Errorf("unmarshal recipients: %w", err)
	}
	var pacing broadcast.PacingConfig
	if err := json.Unmarshal([]byte(model.PacingJSON), &pacing); err != nil {
		return nil, fmt.Errorf("unmarshal pacing: %w", err)
	}
	return broadcast.Restore(
		model.ID, model.OwnerID, model.DeviceID, model.Name, model.Template,
		model.MediaURL, model.MediaType, recipients, pacing, model.ScheduledAt,
		broadcast.Status(model.Status), model.SentCount, model.FailedCount,
		model.CreatedAt, model.UpdatedAt,
	), nil
}

// BroadcastJobModel is the persisted form of broadcast.Job, the literal queue
// table C6 claims against with the conditional-update idiom (§4.5, §6).
type BroadcastJobModel struct {
	bun.BaseModel `bun:"table:broadcast_jobs"`

	ID            string    `bun:"id,pk,type:varchar(36)" json:"id"`
	BroadcastID   string    `bun:"broadcast_id,notnull,type:varchar(36)" json:"broadcast_id"`
	Status        string    `bun:"status,notnull,type:varchar(20),default:'queued'" json:"status"`
	Attempt       int       `bun:"attempt,notnull,default:0" json:"attempt"`
	NextAttemptAt int64     `bun:"next_attempt_at,notnull,default:0" json:"next_attempt_at"`
	LastError     string    `bun:"last_error,type:text" json:"last_error,omitempty"`
	ClaimedBy     string    `bun:"claimed_by,type:varchar(128)" json:"claimed_by,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp,type:datetime" json:"updated_at"`
}

func ToBroadcastJobModel(j *broadcast.Job) *BroadcastJobModel {
	return &BroadcastJobModel{
		ID:            j.ID,
		BroadcastID:   j.BroadcastID,
		Status:        string(j.Status),
		Attempt:       j.Attempt,
		NextAttemptAt: j.NextAttemptAt,
		LastError:     j.LastError,
		ClaimedBy:     j.ClaimedBy,
	}
}

func FromBroadcastJobModel(model *BroadcastJobModel) *broadcast.Job {
	return &broadcast.Job{
		ID:            model.ID,
		BroadcastID:   model.BroadcastID,
		Attempt:       model.Attempt,
		NextAttemptAt: model.NextAttemptAt,
		Status:        broadcast.JobStatus(model.Status),
		LastError:     model.LastError,
		ClaimedBy:     model.ClaimedBy,
	}
}
