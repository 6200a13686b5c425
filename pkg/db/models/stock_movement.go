package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
)

// StockMovement is one immutable quantity change against an item. IN and OUT
// carry nonnegative quantities; ADJUST carries its own sign. Corrections are
// new offsetting movements, never edits.
type StockMovement struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ItemID    uuid.UUID          `gorm:"column:item_id;type:uuid;not null;index"`
	VoucherID *uuid.UUID         `gorm:"column:voucher_id;type:uuid;index"`
	Type      enums.MovementType `gorm:"column:type;type:movement_type_enum;not null"`
	Quantity  decimal.Decimal    `gorm:"column:quantity;type:numeric(20,4);not null"`
	Rate      decimal.Decimal    `gorm:"column:rate;type:numeric(20,4);not null;default:0"`
	Amount    decimal.Decimal    `gorm:"column:amount;type:numeric(20,4);not null;default:0"`
	Narration string             `gorm:"column:narration"`
	Date      time.Time          `gorm:"column:date;not null;index"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// SignedQuantity returns the stock-level effect of the movement.
func (m StockMovement) SignedQuantity() decimal.Decimal {
	return m.Quantity.Mul(decimal.NewFromInt(int64(m.Type.Sign())))
}

func (m *StockMovement) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
