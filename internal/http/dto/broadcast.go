package dto

import (
	"time"

	"whatsfleet/internal/domain/broadcast"
)

// RecipientRequest mirrors broadcast.Recipient at the HTTP boundary.
type RecipientRequest struct {
	Phone string `json:"phone" validate:"required,phone_number" example:"5511999999999"`
	Var1  string `json:"var1,omitempty"`
	Var2  string `json:"var2,omitempty"`
	Var3  string `json:"var3,omitempty"`
}

// CreateBroadcastRequest represents the HTTP request to draft a broadcast.
// @Description Dados para criação de um disparo em massa
type CreateBroadcastRequest struct {
	DeviceID    string             `json:"deviceId" validate:"required"`
	Name        string             `json:"name" validate:"required"`
	Template    string             `json:"template" validate:"required" example:"Olá {{name}}, sua proposta {{var1}} está pronta."`
	MediaURL    string             `json:"mediaUrl,omitempty" validate:"omitempty,url"`
	Recipients  []RecipientRequest `json:"recipients" validate:"required,min=1,dive"`
	ScheduledAt time.Time          `json:"scheduledAt,omitempty"`
}

// BroadcastResponse represents a broadcast as returned over HTTP.
type BroadcastResponse struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"deviceId"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Template    string    `json:"template"`
	MediaURL    string    `json:"mediaUrl,omitempty"`
	Recipients  int       `json:"recipients"`
	Sent        int       `json:"sent"`
	Failed      int       `json:"failed"`
	ScheduledAt time.Time `json:"scheduledAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewBroadcastResponse converts a domain broadcast into its HTTP representation.
func NewBroadcastResponse(b *broadcast.Broadcast) *BroadcastResponse {
	return &BroadcastResponse{
		ID:          b.ID(),
		DeviceID:    b.DeviceID(),
		Name:        b.Name(),
		Status:      string(b.Status()),
		Template:    b.Template(),
		MediaURL:    b.MediaURL(),
		Recipients:  len(b.Recipients()),
		Sent:        b.SentCount(),
		Failed:      b.FailedCount(),
		ScheduledAt: b.ScheduledAt(),
		UpdatedAt:   b.UpdatedAt(),
	}
}

// BroadcastListResponse is a paginated list of broadcasts.
type BroadcastListResponse struct {
	Broadcasts []*BroadcastResponse `json:"broadcasts"`
	Total      int                  `json:"total"`
}

// NewBroadcastListResponse converts a slice of domain broadcasts.
func NewBroadcastListResponse(items []*broadcast.Broadcast, total int) *BroadcastListResponse {
	out := make([]*BroadcastResponse, 0, len(items))
	for _, b := range items {
		out = append(out, NewBroadcastResponse(b))
	}
	return &BroadcastListResponse{Broadcasts: out, Total: total}
}
