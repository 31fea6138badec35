package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"whatsfleet/internal/domain/contact"
	"whatsfleet/internal/infra/database"
	"whatsfleet/pkg/logger"
)

// ContactRepository implements contact.Repository using Bun ORM.
type ContactRepository struct {
	db     *bun.DB
	logger logger.Logger
}

func NewContactRepository(db *bun.DB, log logger.Logger) contact.Repository {
	return &ContactRepository{db: db, logger: log}
}

func (r *ContactRepository) Upsert(ctx context.Context, c *contact.Contact) error {
	model := database.ToContactModel(c)

	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (owner_id, phone) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("var1 = EXCLUDED.var1").
		Set("var2 = EXCLUDED.var2").
		Set("var3 = EXCLUDED.var3").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		r.logger.ErrorWithError("failed to upsert contact", err, logger.Fields{"owner_id": c.OwnerID, "phone": c.Phone})
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) GetByPhone(ctx context.Context, ownerID, phone string) (*contact.Contact, error) {
	var model database.ContactModel
	err := r.db.NewSelect().Model(&model).
		Where("owner_id = ?", ownerID).
		Where("phone = ?", phone).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact by phone: %w", err)
	}
	return database.FromContactModel(&model), nil
}

func (r *ContactRepository) List(ctx context.Context, ownerID string) ([]*contact.Contact, error) {
	var models []database.ContactModel
	err := r.db.NewSelect().Model(&models).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	contacts := make([]*contact.Contact, 0, len(models))
	for i := range models {
		contacts = append(contacts, database.FromContactModel(&models[i]))
	}
	return contacts, nil
}

func (r *ContactRepository) Delete(ctx context.Context, ownerID, phone string) error {
	_, err := r.db.NewDelete().Model((*database.ContactModel)(nil)).
		Where("owner_id = ?", ownerID).
		Where("phone = ?", phone).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}
