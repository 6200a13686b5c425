package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/pagination"
)

const entityTypeItem = "inventory_item"

// openingStockNarration labels the synthetic movement that seeds an item's
// stock from its opening balance.
const openingStockNarration = "Opening Stock"

// Service exposes inventory ledger operations.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error)
	GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error)
	ListItems(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryItem, error)
	RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error)
	RecordMovementTx(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error)
	ListMovements(ctx context.Context, params ListMovementsParams) (*MovementListResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error
}

// CreateItemInput holds the validated payload to create a stocked item.
type CreateItemInput struct {
	TenantID     uuid.UUID
	Code         string
	Name         string
	Category     string
	Unit         string
	PurchaseRate decimal.Decimal
	SaleRate     decimal.Decimal
	OpeningStock decimal.Decimal
	ReorderLevel decimal.Decimal
	Actor        audit.Actor
}

// RecordMovementInput captures one stock movement. Amount defaults to
// quantity times rate when left zero.
type RecordMovementInput struct {
	TenantID  uuid.UUID
	ItemID    uuid.UUID
	VoucherID *uuid.UUID
	Type      enums.MovementType
	Quantity  decimal.Decimal
	Rate      decimal.Decimal
	Amount    decimal.Decimal
	Narration string
	Date      time.Time
}

// ListMovementsParams configures pagination for an item's movement log.
type ListMovementsParams struct {
	TenantID uuid.UUID
	ItemID   uuid.UUID
	Limit    int
	Cursor   string
}

// MovementListResult wraps returned movements and the cursor for the next page.
type MovementListResult struct {
	Items  []models.StockMovement `json:"items"`
	Cursor string                 `json:"cursor"`
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor auditRecorder
	log     *logger.Logger
}

// NewService constructs an inventory service instance.
func NewService(repo Repository, tx txRunner, auditor auditRecorder, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, auditor: auditor, log: log}, nil
}

type itemSnapshot struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	OpeningStock string `json:"opening_stock"`
	CurrentStock string `json:"current_stock"`
	PurchaseRate string `json:"purchase_rate"`
	SaleRate     string `json:"sale_rate"`
}

func snapshotOf(item *models.InventoryItem) itemSnapshot {
	return itemSnapshot{
		Code:         item.Code,
		Name:         item.Name,
		Unit:         item.Unit,
		OpeningStock: item.OpeningStock.String(),
		CurrentStock: item.CurrentStock.String(),
		PurchaseRate: item.PurchaseRate.String(),
		SaleRate:     item.SaleRate.String(),
	}
}

// CreateItem inserts the item and, when opening stock is positive, seeds the
// movement log with a synthetic IN movement in the same transaction.
// CurrentStock is only ever written alongside a movement row.
func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item unit required")
	}
	if input.OpeningStock.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening stock cannot be negative")
	}

	item := &models.InventoryItem{
		TenantID:     input.TenantID,
		Code:         code,
		Name:         name,
		Category:     strings.TrimSpace(input.Category),
		Unit:         unit,
		PurchaseRate: input.PurchaseRate,
		SaleRate:     input.SaleRate,
		OpeningStock: input.OpeningStock,
		ReorderLevel: input.ReorderLevel,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateItem(ctx, item); err != nil {
			return err
		}

		if input.OpeningStock.IsPositive() {
			movement := &models.StockMovement{
				ItemID:    item.ID,
				Type:      enums.MovementTypeIn,
				Quantity:  input.OpeningStock,
				Rate:      input.PurchaseRate,
				Amount:    input.OpeningStock.Mul(input.PurchaseRate),
				Narration: openingStockNarration,
				Date:      time.Now().UTC(),
			}
			if err := txRepo.CreateMovement(ctx, movement); err != nil {
				return err
			}
			if err := txRepo.AdjustStock(ctx, item.ID, input.OpeningStock); err != nil {
				return err
			}
			item.CurrentStock = input.OpeningStock
		}

		s.recordAudit(ctx, tx, audit.RecordInput{
			TenantID:    input.TenantID,
			EntityType:  entityTypeItem,
			EntityID:    item.ID,
			Action:      enums.AuditActionCreate,
			NewValue:    snapshotOf(item),
			Actor:       input.Actor,
			Description: fmt.Sprintf("item %s created", item.Code),
		})
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_items_tenant_code") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateCode, "item code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error) {
	return s.loadItem(ctx, s.repo, tenantID, itemID)
}

func (s *service) ListItems(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryItem, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	items, err := s.repo.ListItems(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return items, nil
}

// RecordMovement applies a standalone movement in its own transaction.
func (s *service) RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error) {
	var movement *models.StockMovement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		movement, txErr = s.RecordMovementTx(ctx, tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// RecordMovementTx applies a movement inside the caller's transaction. The
// voucher engine uses this to keep stock changes atomic with postings.
func (s *service) RecordMovementTx(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement type")
	}
	if input.Type != enums.MovementTypeAdjust && input.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement quantity cannot be negative")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement date required")
	}

	txRepo := s.repo.WithTx(tx)
	item, err := s.loadItem(ctx, txRepo, input.TenantID, input.ItemID)
	if err != nil {
		return nil, err
	}

	amount := input.Amount
	if amount.IsZero() {
		amount = input.Quantity.Mul(input.Rate).Abs()
	}

	movement := &models.StockMovement{
		ItemID:    item.ID,
		VoucherID: input.VoucherID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Rate:      input.Rate,
		Amount:    amount,
		Narration: input.Narration,
		Date:      input.Date,
	}
	if err := txRepo.CreateMovement(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert movement")
	}
	if err := txRepo.AdjustStock(ctx, item.ID, movement.SignedQuantity()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: adjust stock")
	}
	return movement, nil
}

func (s *service) ListMovements(ctx context.Context, params ListMovementsParams) (*MovementListResult, error) {
	item, err := s.loadItem(ctx, s.repo, params.TenantID, params.ItemID)
	if err != nil {
		return nil, err
	}

	var cursor *pagination.Cursor
	if params.Cursor != "" {
		cursor, err = pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
	}

	movements, next, err := s.repo.ListMovements(ctx, item.ID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list movements")
	}

	encoded := ""
	if next != nil {
		encoded = pagination.EncodeCursor(*next)
	}
	return &MovementListResult{Items: movements, Cursor: encoded}, nil
}

func (s *service) loadItem(ctx context.Context, repo Repository, tenantID, itemID uuid.UUID) (*models.InventoryItem, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := repo.FindItemByID(ctx, tenantID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func (s *service) recordAudit(ctx context.Context, tx *gorm.DB, input audit.RecordInput) {
	if err := s.auditor.RecordTx(ctx, tx, input); err != nil {
		s.log.Warn(s.log.WithField(ctx, "entity_id", input.EntityID.String()), "audit write failed: "+err.Error())
	}
}
