package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherEntry is one debit or credit line of a voucher. Entries are created
// atomically with their parent and never updated independently of a
// voucher-level operation.
type VoucherEntry struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	VoucherID uuid.UUID       `gorm:"column:voucher_id;type:uuid;not null;index"`
	AccountID uuid.UUID       `gorm:"column:account_id;type:uuid;not null;index"`
	Debit     decimal.Decimal `gorm:"column:debit;type:numeric(20,4);not null;default:0"`
	Credit    decimal.Decimal `gorm:"column:credit;type:numeric(20,4);not null;default:0"`
	Narration string          `gorm:"column:narration"`
	Position  int             `gorm:"column:position;not null;default:0"`
}

func (e *VoucherEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
