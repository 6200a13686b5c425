package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
)

// Voucher is one balanced double-entry transaction. A voucher is posted on
// creation and immutable afterwards; the only permitted mutation is
// post-dated-cheque regularization, which touches date and PDC flags and
// nothing else. Corrections are reversing vouchers, never edits.
type Voucher struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	TenantID        uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index;uniqueIndex:idx_vouchers_tenant_number,priority:1"`
	VoucherNumber   string            `gorm:"column:voucher_number;not null;uniqueIndex:idx_vouchers_tenant_number,priority:2"`
	Type            enums.VoucherType `gorm:"column:type;type:voucher_type_enum;not null"`
	Date            time.Time         `gorm:"column:date;not null;index"`
	Narration       string            `gorm:"column:narration"`
	TotalDebit      decimal.Decimal   `gorm:"column:total_debit;type:numeric(20,4);not null;default:0"`
	TotalCredit     decimal.Decimal   `gorm:"column:total_credit;type:numeric(20,4);not null;default:0"`
	IsPosted        bool              `gorm:"column:is_posted;not null;default:true"`
	IsPostDated     bool              `gorm:"column:is_post_dated;not null;default:false"`
	PDCDate         *time.Time        `gorm:"column:pdc_date"`
	RegularizedDate *time.Time        `gorm:"column:regularized_date"`
	IsImmutable     bool              `gorm:"column:is_immutable;not null;default:true"`
	Entries         []VoucherEntry    `gorm:"foreignKey:VoucherID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Voucher) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
