package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/licenzia/inventory-importer/pkg/enums"
)

// InventoryItem is one sellable license in stock. The activation key is the
// natural key; the id sequence is storage-assigned.
type InventoryItem struct {
	ID                     uint64                `gorm:"column:id;primaryKey;autoIncrement"`
	Name                   string                `gorm:"column:name;not null"`
	ActivationKey          string                `gorm:"column:activation_key;not null;unique"`
	ProductReference       string                `gorm:"column:product_reference;not null"`
	ActivationInstructions *string               `gorm:"column:activation_instructions"`
	Status                 enums.InventoryStatus `gorm:"column:status;type:inventory_status;not null;default:'AVAILABLE'"`
	Price                  decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	SellerContact          *string               `gorm:"column:seller_contact"`
	CreatedAt              time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
