package inventory

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/pagination"
)

type stubRepo struct {
	items        map[uuid.UUID]*models.InventoryItem
	movements    []*models.StockMovement
	createItemFn func(ctx context.Context, item *models.InventoryItem) error
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: make(map[uuid.UUID]*models.InventoryItem)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRepo) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	if s.createItemFn != nil {
		return s.createItemFn(ctx, item)
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return nil
}

func (s *stubRepo) FindItemByID(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, ok := s.items[itemID]
	if !ok || item.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubRepo) ListItems(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	for _, item := range s.items {
		if item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubRepo) AdjustStock(ctx context.Context, itemID uuid.UUID, delta decimal.Decimal) error {
	item, ok := s.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.CurrentStock = item.CurrentStock.Add(delta)
	return nil
}

func (s *stubRepo) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	s.movements = append(s.movements, movement)
	return nil
}

func (s *stubRepo) ListMovements(ctx context.Context, itemID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.StockMovement, *pagination.Cursor, error) {
	var filtered []models.StockMovement
	for _, movement := range s.movements {
		if movement.ItemID == itemID {
			filtered = append(filtered, *movement)
		}
	}
	normalized := pagination.NormalizeLimit(limit)
	if len(filtered) > normalized {
		next := filtered[normalized]
		return filtered[:normalized], &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return filtered, nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubAuditor struct {
	records []audit.RecordInput
}

func (s *stubAuditor) RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error {
	s.records = append(s.records, input)
	return nil
}

func newTestService(t *testing.T, repo Repository, auditor auditRecorder) Service {
	t.Helper()
	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, auditor, log)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestCreateItemSeedsOpeningStock(t *testing.T) {
	repo := newStubRepo()
	auditor := &stubAuditor{}
	svc := newTestService(t, repo, auditor)

	item, err := svc.CreateItem(context.Background(), CreateItemInput{
		TenantID:     uuid.New(),
		Code:         "WID-01",
		Name:         "Widget",
		Unit:         "pcs",
		PurchaseRate: decimal.NewFromInt(40),
		SaleRate:     decimal.NewFromInt(60),
		OpeningStock: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("CreateItem error: %v", err)
	}

	if !item.CurrentStock.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected current stock 100, got %s", item.CurrentStock)
	}
	if len(repo.movements) != 1 {
		t.Fatalf("expected 1 opening movement, got %d", len(repo.movements))
	}
	movement := repo.movements[0]
	if movement.Type != enums.MovementTypeIn {
		t.Fatalf("opening movement should be IN, got %s", movement.Type)
	}
	if movement.Narration != "Opening Stock" {
		t.Fatalf("unexpected narration %q", movement.Narration)
	}
	if !movement.Amount.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("expected opening amount 4000, got %s", movement.Amount)
	}
	if len(auditor.records) != 1 || auditor.records[0].Action != enums.AuditActionCreate {
		t.Fatalf("expected create audit record, got %+v", auditor.records)
	}
}

func TestCreateItemZeroOpeningStockHasNoMovement(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubAuditor{})

	item, err := svc.CreateItem(context.Background(), CreateItemInput{
		TenantID: uuid.New(),
		Code:     "WID-02",
		Name:     "Widget",
		Unit:     "pcs",
	})
	if err != nil {
		t.Fatalf("CreateItem error: %v", err)
	}
	if !item.CurrentStock.IsZero() {
		t.Fatalf("expected zero stock, got %s", item.CurrentStock)
	}
	if len(repo.movements) != 0 {
		t.Fatalf("expected no movements, got %d", len(repo.movements))
	}
}

func TestCreateItemDuplicateCode(t *testing.T) {
	repo := newStubRepo()
	repo.createItemFn = func(ctx context.Context, item *models.InventoryItem) error {
		return errors.New(`duplicate key value violates unique constraint "idx_items_tenant_code"`)
	}
	svc := newTestService(t, repo, &stubAuditor{})

	_, err := svc.CreateItem(context.Background(), CreateItemInput{
		TenantID: uuid.New(),
		Code:     "WID-01",
		Name:     "Widget",
		Unit:     "pcs",
	})
	if err == nil {
		t.Fatal("expected duplicate code error")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeDuplicateCode {
		t.Fatalf("expected DUPLICATE_CODE, got %v", err)
	}
}

func TestCreateItemValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubAuditor{})

	tests := []struct {
		name  string
		input CreateItemInput
	}{
		{name: "missing tenant", input: CreateItemInput{Code: "A", Name: "A", Unit: "pcs"}},
		{name: "missing code", input: CreateItemInput{TenantID: uuid.New(), Name: "A", Unit: "pcs"}},
		{name: "missing name", input: CreateItemInput{TenantID: uuid.New(), Code: "A", Unit: "pcs"}},
		{name: "missing unit", input: CreateItemInput{TenantID: uuid.New(), Code: "A", Name: "A"}},
		{
			name: "negative opening stock",
			input: CreateItemInput{
				TenantID:     uuid.New(),
				Code:         "A",
				Name:         "A",
				Unit:         "pcs",
				OpeningStock: decimal.NewFromInt(-1),
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateItem(context.Background(), tc.input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRecordMovementConservesStock(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubAuditor{})

	tenantID := uuid.New()
	item := &models.InventoryItem{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Code:         "WID-01",
		Name:         "Widget",
		Unit:         "pcs",
		OpeningStock: decimal.NewFromInt(10),
		CurrentStock: decimal.NewFromInt(10),
	}
	repo.items[item.ID] = item

	date := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	steps := []struct {
		movementType enums.MovementType
		quantity     decimal.Decimal
	}{
		{enums.MovementTypeIn, decimal.NewFromInt(25)},
		{enums.MovementTypeOut, decimal.NewFromInt(8)},
		{enums.MovementTypeAdjust, decimal.NewFromInt(-2)},
	}
	for _, step := range steps {
		_, err := svc.RecordMovement(context.Background(), RecordMovementInput{
			TenantID: tenantID,
			ItemID:   item.ID,
			Type:     step.movementType,
			Quantity: step.quantity,
			Date:     date,
		})
		if err != nil {
			t.Fatalf("RecordMovement(%s) error: %v", step.movementType, err)
		}
	}

	// opening 10 + 25 - 8 - 2
	expected := item.OpeningStock
	for _, movement := range repo.movements {
		expected = expected.Add(movement.SignedQuantity())
	}
	if !item.CurrentStock.Equal(expected) {
		t.Fatalf("stock not conserved: current %s, derived %s", item.CurrentStock, expected)
	}
	if !item.CurrentStock.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected stock 25, got %s", item.CurrentStock)
	}
}

func TestRecordMovementDefaultsAmount(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubAuditor{})

	tenantID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), TenantID: tenantID, Code: "W", Name: "W", Unit: "pcs"}
	repo.items[item.ID] = item

	movement, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		TenantID: tenantID,
		ItemID:   item.ID,
		Type:     enums.MovementTypeIn,
		Quantity: decimal.NewFromInt(5),
		Rate:     decimal.NewFromInt(12),
		Date:     time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordMovement error: %v", err)
	}
	if !movement.Amount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected amount 60, got %s", movement.Amount)
	}
}

func TestRecordMovementValidation(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubAuditor{})

	tenantID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), TenantID: tenantID, Code: "W", Name: "W", Unit: "pcs"}
	repo.items[item.ID] = item

	if _, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		TenantID: tenantID,
		ItemID:   item.ID,
		Type:     enums.MovementTypeOut,
		Quantity: decimal.NewFromInt(-3),
		Date:     time.Now(),
	}); err == nil {
		t.Fatal("expected negative quantity rejection for out movement")
	}

	if _, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		TenantID: tenantID,
		ItemID:   uuid.New(),
		Type:     enums.MovementTypeIn,
		Quantity: decimal.NewFromInt(1),
		Date:     time.Now(),
	}); err == nil {
		t.Fatal("expected not found for unknown item")
	}
}
