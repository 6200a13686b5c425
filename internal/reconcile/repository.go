package reconcile

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
)

// Repository exposes the recomputation queries and the corrective writes.
// Entry sums run over every voucher including unregularized post-dated ones,
// because account balances move at posting time regardless of PDC state.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error)
	EntrySums(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	ListItems(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryItem, error)
	MovementSums(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error
	SetItemStock(ctx context.Context, itemID uuid.UUID, stock decimal.Decimal) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reconcile repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&accounts).
		Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repositoryImpl) EntrySums(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	type row struct {
		AccountID uuid.UUID
		Net       decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("voucher_entries").
		Select("voucher_entries.account_id AS account_id, SUM(voucher_entries.debit - voucher_entries.credit) AS net").
		Joins("JOIN vouchers ON vouchers.id = voucher_entries.voucher_id").
		Where("vouchers.tenant_id = ?", tenantID).
		Group("voucher_entries.account_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.AccountID] = r.Net
	}
	return out, nil
}

func (r *repositoryImpl) ListItems(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&items).
		Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repositoryImpl) MovementSums(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	type row struct {
		ItemID uuid.UUID
		Net    decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("stock_movements").
		Select("stock_movements.item_id AS item_id, SUM(CASE WHEN stock_movements.type = 'out' THEN -stock_movements.quantity ELSE stock_movements.quantity END) AS net").
		Joins("JOIN inventory_items ON inventory_items.id = stock_movements.item_id").
		Where("inventory_items.tenant_id = ?", tenantID).
		Group("stock_movements.item_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.ItemID] = r.Net
	}
	return out, nil
}

func (r *repositoryImpl) SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		UpdateColumn("balance", balance).
		Error
}

func (r *repositoryImpl) SetItemStock(ctx context.Context, itemID uuid.UUID, stock decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", itemID).
		UpdateColumn("current_stock", stock).
		Error
}
