package broadcast

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus       = errors.New("invalid broadcast status")
	ErrInvalidTransition   = errors.New("invalid broadcast status transition")
	ErrNoRecipients        = errors.New("broadcast has no recipients")
	ErrBroadcastNotFound   = errors.New("broadcast not found")
	ErrEmptyTemplate       = errors.New("broadcast message template cannot be empty")
)

// Status is a broadcast's lifecycle state, forming the DAG
// draft -> processing -> {completed, failed, cancelled}, plus draft -> cancelled.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Recipient is a single target of a broadcast, carrying personalization slots.
type Recipient struct {
	Phone string
	Var1  string
	Var2  string
	Var3  string
}

// DelayMode controls how the worker paces sends (§4.5 step 3).
type DelayMode string

const (
	DelayModeFixed   DelayMode = "fixed"
	DelayModeAdaptive DelayMode = "adaptive"
)

// PacingConfig governs the worker's send cadence for one broadcast.
type PacingConfig struct {
	DelayMode           DelayMode
	BaseDelay           time.Duration
	BatchSize           int
	PauseBetweenBatches time.Duration
	Randomize           bool
}

// DefaultPacing returns the adaptive defaults described in §4.5 step 3.
func DefaultPacing() PacingConfig {
	return PacingConfig{
		DelayMode:           DelayModeAdaptive,
		BatchSize:           20,
		PauseBetweenBatches: 60 * time.Second,
		Randomize:           true,
	}
}

// BaseDelayFor returns the adaptive base delay for a recipient count, per the
// thresholds in §4.5: <=20 -> 3s, <=50 -> 5s, <=100 -> 8s, else 12s.
func BaseDelayFor(recipientCount int) time.Duration {
	switch {
	case recipientCount <= 20:
		return 3 * time.Second
	case recipientCount <= 50:
		return 5 * time.Second
	case recipientCount <= 100:
		return 8 * time.Second
	default:
		return 12 * time.Second
	}
}

// Broadcast is a personalized message fan-out job bound to one device.
type Broadcast struct {
	id           string
	ownerID      string
	deviceID     string
	name         string
	template     string
	mediaURL     string
	mediaType    string
	recipients   []Recipient
	pacing       PacingConfig
	scheduledAt  time.Time
	status       Status
	sentCount    int
	failedCount  int
	createdAt    time.Time
	updatedAt    time.Time
}

// New creates a draft broadcast scheduled for immediate (zero-value) or future dispatch.
func New(ownerID, deviceID, name, template string, recipients []Recipient, pacing PacingConfig, scheduledAt time.Time) (*Broadcast, error) {
	if template == "" {
		return nil, ErrEmptyTemplate
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	now := time.Now()
	return &Broadcast{
		id: uuid.New().String(), ownerID: ownerID, deviceID: deviceID, name: name,
		template: template, recipients: recipients, pacing: pacing, scheduledAt: scheduledAt,
		status: StatusDraft, createdAt: now, updatedAt: now,
	}, nil
}

func Restore(
	id, ownerID, deviceID, name, template, mediaURL, mediaType string,
	recipients []Recipient, pacing PacingConfig, scheduledAt time.Time,
	status Status, sentCount, failedCount int, createdAt, updatedAt time.Time,
) *Broadcast {
	return &Broadcast{
		id: id, ownerID: ownerID, deviceID: deviceID, name: name, template: template,
		mediaURL: mediaURL, mediaType: mediaType, recipients: recipients, pacing: pacing,
		scheduledAt: scheduledAt, status: status, sentCount: sentCount, failedCount: failedCount,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

func (b *Broadcast) SetMedia(url, mediaType string) {
	b.mediaURL = url
	b.mediaType = mediaType
	b.updatedAt = time.Now()
}

// IsDue reports whether a draft broadcast's scheduled time has elapsed,
// the condition the scheduler tick (C8, §4.5) promotes on.
func (b *Broadcast) IsDue(now time.Time) bool {
	return b.status == StatusDraft && !b.scheduledAt.After(now)
}

// BeginProcessing transitions draft -> processing.
func (b *Broadcast) BeginProcessing() error {
	if b.status != StatusDraft {
		return ErrInvalidTransition
	}
	b.status = StatusProcessing
	b.updatedAt = time.Now()
	return nil
}

func (b *Broadcast) Cancel() error {
	if b.status.IsTerminal() {
		return ErrInvalidTransition
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now()
	return nil
}

func (b *Broadcast) RecordSent(n int) {
	b.sentCount += n
	b.updatedAt = time.Now()
}

func (b *Broadcast) RecordFailed(n int) {
	b.failedCount += n
	b.updatedAt = time.Now()
}

func (b *Broadcast) Complete() {
	b.status = StatusCompleted
	b.updatedAt = time.Now()
}

func (b *Broadcast) Fail() {
	b.status = StatusFailed
	b.updatedAt = time.Now()
}

func (b *Broadcast) ID() string                 { return b.id }
func (b *Broadcast) OwnerID() string            { return b.ownerID }
func (b *Broadcast) DeviceID() string           { return b.deviceID }
func (b *Broadcast) Name() string               { return b.name }
func (b *Broadcast) Template() string           { return b.template }
func (b *Broadcast) MediaURL() string           { return b.mediaURL }
func (b *Broadcast) MediaType() string          { return b.mediaType }
func (b *Broadcast) Recipients() []Recipient    { return b.recipients }
func (b *Broadcast) Pacing() PacingConfig       { return b.pacing }
func (b *Broadcast) ScheduledAt() time.Time     { return b.scheduledAt }
func (b *Broadcast) Status() Status             { return b.status }
func (b *Broadcast) SentCount() int             { return b.sentCount }
func (b *Broadcast) FailedCount() int           { return b.failedCount }
func (b *Broadcast) CreatedAt() time.Time       { return b.createdAt }
func (b *Broadcast) UpdatedAt() time.Time       { return b.updatedAt }
