package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryItem is a stocked good. CurrentStock is a denormalized cache over
// the movement log: openingStock + the signed sum of all movements. It is
// never written except alongside a StockMovement row.
type InventoryItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index;uniqueIndex:idx_items_tenant_code,priority:1"`
	Code         string          `gorm:"column:code;not null;uniqueIndex:idx_items_tenant_code,priority:2"`
	Name         string          `gorm:"column:name;not null"`
	Category     string          `gorm:"column:category"`
	Unit         string          `gorm:"column:unit;not null"`
	PurchaseRate decimal.Decimal `gorm:"column:purchase_rate;type:numeric(20,4);not null;default:0"`
	SaleRate     decimal.Decimal `gorm:"column:sale_rate;type:numeric(20,4);not null;default:0"`
	OpeningStock decimal.Decimal `gorm:"column:opening_stock;type:numeric(20,4);not null;default:0"`
	CurrentStock decimal.Decimal `gorm:"column:current_stock;type:numeric(20,4);not null;default:0"`
	ReorderLevel decimal.Decimal `gorm:"column:reorder_level;type:numeric(20,4);not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *InventoryItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
