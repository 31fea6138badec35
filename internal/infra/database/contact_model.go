package database

import (
	"time"

	"github.com/uptrace/bun"

	"whatsfleet/internal/domain/contact"
)

// ContactModel is the persisted form of a contact.Contact (§6, personalization
// data feeding the broadcast template engine's {nama}/{var1..3} lookups).
type ContactModel struct {
	bun.BaseModel `bun:"table:contacts"`

	OwnerID   string    `bun:"owner_id,pk,type:varchar(100)" json:"owner_id"`
	Phone     string    `bun:"phone,pk,type:varchar(20)" json:"phone"`
	Name      string    `bun:"name,type:varchar(100)" json:"name"`
	Var1      string    `bun:"var1,type:varchar(255)" json:"var1,omitempty"`
	Var2      string    `bun:"var2,type:varchar(255)" json:"var2,omitempty"`
	Var3      string    `bun:"var3,type:varchar(255)" json:"var3,omitempty"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp,type:datetime" json:"updated_at"`
}

func ToContactModel(c *contact.Contact) *ContactModel {
	return &ContactModel{
		OwnerID:   c.OwnerID,
		Phone:     c.Phone,
		Name:      c.Name,
		Var1:      c.Var1,
		Var2:      c.Var2,
		Var3:      c.Var3,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromContactModel(model *ContactModel) *contact.Contact {
	return &contact.Contact{
		OwnerID:   model.OwnerID,
		Phone:     model.Phone,
		Name:      model.Name,
		Var1:      model.Var1,
		Var2:      model.Var2,
		Var3:      model.Var3,
		UpdatedAt: model.UpdatedAt,
	}
}
