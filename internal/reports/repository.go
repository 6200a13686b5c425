package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
)

// Repository exposes the read-only aggregation queries reports are built on.
// Every voucher-backed query excludes unregularized post-dated vouchers.
type Repository interface {
	ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error)
	AccountActivity(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]AccountActivity, error)
	VouchersForRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.Voucher, error)
	ListItems(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryItem, error)
	LastMovementDates(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]time.Time, error)
}

// AccountActivity is the summed entry movement for one account over a range.
type AccountActivity struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Vouchers  int64
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reports repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
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

func (r *repositoryImpl) AccountActivity(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]AccountActivity, error) {
	query := r.db.WithContext(ctx).
		Table("voucher_entries").
		Select("voucher_entries.account_id AS account_id, SUM(voucher_entries.debit) AS debit, SUM(voucher_entries.credit) AS credit, COUNT(DISTINCT vouchers.id) AS vouchers").
		Joins("JOIN vouchers ON vouchers.id = voucher_entries.voucher_id").
		Where("vouchers.tenant_id = ? AND vouchers.is_post_dated = ?", tenantID, false)
	if from != nil {
		query = query.Where("vouchers.date >= ?", *from)
	}
	if to != nil {
		query = query.Where("vouchers.date <= ?", *to)
	}

	var rows []AccountActivity
	if err := query.Group("voucher_entries.account_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) VouchersForRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("tenant_id = ? AND is_post_dated = ? AND date >= ? AND date <= ?", tenantID, false, from, to).
		Order("created_at ASC").
		Find(&vouchers).
		Error
	if err != nil {
		return nil, err
	}
	return vouchers, nil
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

func (r *repositoryImpl) LastMovementDates(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]time.Time, error) {
	type row struct {
		ItemID uuid.UUID
		Last   time.Time
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("stock_movements").
		Select("stock_movements.item_id AS item_id, MAX(stock_movements.date) AS last").
		Joins("JOIN inventory_items ON inventory_items.id = stock_movements.item_id").
		Where("inventory_items.tenant_id = ?", tenantID).
		Group("stock_movements.item_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]time.Time, len(rows))
	for _, r := range rows {
		out[r.ItemID] = r.Last
	}
	return out, nil
}
