package tax

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
)

// TaxEntry is the summed movement on one tax-tagged account within one
// voucher type. The voucher-type split is what lets GST separate output
// tax from input tax.
type TaxEntry struct {
	AccountID   uuid.UUID
	AccountCode string
	AccountName string
	VoucherType enums.VoucherType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Vouchers    int64
}

// Repository exposes the aggregation query the tax registers are built on.
type Repository interface {
	TaxEntries(ctx context.Context, tenantID uuid.UUID, category enums.TaxCategory, from, to time.Time) ([]TaxEntry, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a tax repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) TaxEntries(ctx context.Context, tenantID uuid.UUID, category enums.TaxCategory, from, to time.Time) ([]TaxEntry, error) {
	var rows []TaxEntry
	err := r.db.WithContext(ctx).
		Table("voucher_entries").
		Select("accounts.id AS account_id, accounts.code AS account_code, accounts.name AS account_name, vouchers.type AS voucher_type, SUM(voucher_entries.debit) AS debit, SUM(voucher_entries.credit) AS credit, COUNT(DISTINCT vouchers.id) AS vouchers").
		Joins("JOIN vouchers ON vouchers.id = voucher_entries.voucher_id").
		Joins("JOIN accounts ON accounts.id = voucher_entries.account_id").
		Where("vouchers.tenant_id = ? AND vouchers.is_post_dated = ?", tenantID, false).
		Where("accounts.tax_category = ?", category).
		Where("vouchers.date >= ? AND vouchers.date <= ?", from, to).
		Group("accounts.id, accounts.code, accounts.name, vouchers.type").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
