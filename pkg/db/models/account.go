package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
)

// Account is one bucket in the chart of accounts. Balance is the raw net
// debit-minus-credit maintained on every posting; the debit/credit-normal
// sign convention is applied at report time only. Accounts are never hard
// deleted, only deactivated.
type Account struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	TenantID       uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index;uniqueIndex:idx_accounts_tenant_code,priority:1"`
	Code           string            `gorm:"column:code;not null;uniqueIndex:idx_accounts_tenant_code,priority:2"`
	Name           string            `gorm:"column:name;not null"`
	Type           enums.AccountType `gorm:"column:type;type:account_type_enum;not null"`
	ParentID       *uuid.UUID        `gorm:"column:parent_id;type:uuid"`
	OpeningBalance decimal.Decimal   `gorm:"column:opening_balance;type:numeric(20,4);not null;default:0"`
	Balance        decimal.Decimal   `gorm:"column:balance;type:numeric(20,4);not null;default:0"`
	TaxCategory    enums.TaxCategory `gorm:"column:tax_category;type:tax_category_enum;not null;default:'none'"`
	IsActive       bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
