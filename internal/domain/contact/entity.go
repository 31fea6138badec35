// Package contact models the per-user address book entries broadcast
// personalization draws on (the contact/var1..var3 lookups in §3/§4.5).
package contact

import (
	"context"
	"time"
)

// Contact is one user's saved recipient, carrying custom fields used by the
// broadcast template engine's {var1}/{var2}/{var3} substitutions.
type Contact struct {
	OwnerID   string
	Phone     string
	Name      string
	Var1      string
	Var2      string
	Var3      string
	UpdatedAt time.Time
}

// Repository persists contacts.
type Repository interface {
	Upsert(ctx context.Context, c *Contact) error
	GetByPhone(ctx context.Context, ownerID, phone string) (*Contact, error)
	List(ctx context.Context, ownerID string) ([]*Contact, error)
	Delete(ctx context.Context, ownerID, phone string) error
}
