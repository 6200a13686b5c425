package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/pagination"
)

// Repository exposes persistence helpers for stocked items and movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	FindItemByID(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error)
	ListItems(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryItem, error)
	AdjustStock(ctx context.Context, itemID uuid.UUID, delta decimal.Decimal) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, itemID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.StockMovement, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) FindItemByID(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND tenant_id = ?", itemID, tenantID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
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

// AdjustStock moves current_stock by delta in a single statement so
// concurrent postings never lose updates.
func (r *repositoryImpl) AdjustStock(ctx context.Context, itemID uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", itemID).
		UpdateColumn("current_stock", gorm.Expr("current_stock + ?", delta)).
		Error
}

func (r *repositoryImpl) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repositoryImpl) ListMovements(ctx context.Context, itemID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.StockMovement, *pagination.Cursor, error) {
	bufferedLimit := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).Model(&models.StockMovement{}).Where("item_id = ?", itemID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var movements []models.StockMovement
	if err := query.Order("created_at DESC, id DESC").Limit(bufferedLimit).Find(&movements).Error; err != nil {
		return nil, nil, err
	}

	if len(movements) > normalized {
		next := movements[normalized]
		movements = movements[:normalized]
		return movements, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return movements, nil, nil
}
