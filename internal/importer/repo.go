package importer

import (
	"context"

	"gorm.io/gorm"

	"github.com/licenzia/inventory-importer/pkg/db"
	"github.com/licenzia/inventory-importer/pkg/db/models"
	pkgerrors "github.com/licenzia/inventory-importer/pkg/errors"
)

// Repository persists inventory items through the shared GORM client.
type Repository struct {
	client *db.Client
}

// NewRepository constructs an inventory repository tied to the provided client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{client: client}
}

// ExistingActivationKeys loads every activation key currently in the store.
func (r *Repository) ExistingActivationKeys(ctx context.Context) (KeySet, error) {
	var keys []string
	err := r.client.DB().WithContext(ctx).
		Model(&models.InventoryItem{}).
		Pluck("activation_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return NewKeySet(keys...), nil
}

// CountItems returns the number of inventory rows currently stored.
func (r *Repository) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := r.client.DB().WithContext(ctx).
		Model(&models.InventoryItem{}).
		Count(&count).Error
	return count, err
}

// BulkInsert writes all items inside a single transaction. On any failure the
// transaction rolls back and nothing is kept.
func (r *Repository) BulkInsert(ctx context.Context, items []models.InventoryItem, batchSize int) error {
	if len(items) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = len(items)
	}

	err := r.client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.CreateInBatches(&items, batchSize).Error
	})
	if err == nil {
		return nil
	}

	if db.IsUniqueViolation(err, "inventory_items_activation_key_key") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "activation key already present in store")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk insert failed")
}
