package reconcile

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
)

type stubRepo struct {
	accounts     []models.Account
	entrySums    map[uuid.UUID]decimal.Decimal
	items        []models.InventoryItem
	movementSums map[uuid.UUID]decimal.Decimal

	balanceWrites map[uuid.UUID]decimal.Decimal
	stockWrites   map[uuid.UUID]decimal.Decimal
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		entrySums:     make(map[uuid.UUID]decimal.Decimal),
		movementSums:  make(map[uuid.UUID]decimal.Decimal),
		balanceWrites: make(map[uuid.UUID]decimal.Decimal),
		stockWrites:   make(map[uuid.UUID]decimal.Decimal),
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error) {
	return s.accounts, nil
}

func (s *stubRepo) EntrySums(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return s.entrySums, nil
}

func (s *stubRepo) ListItems(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryItem, error) {
	return s.items, nil
}

func (s *stubRepo) MovementSums(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return s.movementSums, nil
}

func (s *stubRepo) SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	s.balanceWrites[accountID] = balance
	return nil
}

func (s *stubRepo) SetItemStock(ctx context.Context, itemID uuid.UUID, stock decimal.Decimal) error {
	s.stockWrites[itemID] = stock
	return nil
}

type stubTxRunner struct{}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubAuditor struct {
	records []audit.RecordInput
}

func (s *stubAuditor) RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error {
	s.records = append(s.records, input)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo *stubRepo, auditor *stubAuditor) Service {
	t.Helper()
	svc, err := NewService(repo, &stubTxRunner{}, auditor, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestCheckAccountsConsistent(t *testing.T) {
	repo := newStubRepo()
	cash := models.Account{ID: uuid.New(), Code: "CAS001", Name: "Cash", OpeningBalance: dec("100"), Balance: dec("350")}
	repo.accounts = []models.Account{cash}
	repo.entrySums[cash.ID] = dec("250")
	svc := newTestService(t, repo, &stubAuditor{})

	report, err := svc.CheckAccounts(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckAccounts: %v", err)
	}
	if report.Checked != 1 || len(report.Mismatches) != 0 {
		t.Fatalf("report = %+v, want clean", report)
	}
	if report.Err() != nil {
		t.Fatalf("Err() = %v, want nil", report.Err())
	}
}

func TestCheckAccountsFindsDrift(t *testing.T) {
	repo := newStubRepo()
	cash := models.Account{ID: uuid.New(), Code: "CAS001", Name: "Cash", OpeningBalance: decimal.Zero, Balance: dec("500")}
	rent := models.Account{ID: uuid.New(), Code: "REN001", Name: "Rent", OpeningBalance: decimal.Zero, Balance: dec("200")}
	repo.accounts = []models.Account{cash, rent}
	repo.entrySums[cash.ID] = dec("450")
	repo.entrySums[rent.ID] = dec("200")
	svc := newTestService(t, repo, &stubAuditor{})

	report, err := svc.CheckAccounts(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckAccounts: %v", err)
	}
	if len(report.Mismatches) != 1 {
		t.Fatalf("mismatches = %d, want 1", len(report.Mismatches))
	}
	m := report.Mismatches[0]
	if m.EntityID != cash.ID || m.Stored.String() != "500" || m.Computed.String() != "450" {
		t.Fatalf("unexpected mismatch %+v", m)
	}
	if report.Err() == nil || !strings.Contains(report.Err().Error(), "CAS001") {
		t.Fatalf("Err() = %v, want mention of CAS001", report.Err())
	}
	if len(repo.balanceWrites) != 0 {
		t.Fatal("check must not write")
	}
}

func TestRebuildAccountsRepairsAndAudits(t *testing.T) {
	repo := newStubRepo()
	cash := models.Account{ID: uuid.New(), Code: "CAS001", Name: "Cash", OpeningBalance: dec("100"), Balance: dec("999")}
	repo.accounts = []models.Account{cash}
	repo.entrySums[cash.ID] = dec("250")
	auditor := &stubAuditor{}
	svc := newTestService(t, repo, auditor)

	actor := audit.Actor{UserID: uuid.New(), Name: "Ops"}
	report, err := svc.RebuildAccounts(context.Background(), uuid.New(), actor)
	if err != nil {
		t.Fatalf("RebuildAccounts: %v", err)
	}
	if !report.Repaired {
		t.Fatal("expected repaired report")
	}
	if got := repo.balanceWrites[cash.ID]; got.String() != "350" {
		t.Fatalf("written balance = %s, want 350", got)
	}
	if len(auditor.records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(auditor.records))
	}
	record := auditor.records[0]
	if record.Action != enums.AuditActionUpdate || record.EntityType != entityTypeAccount {
		t.Fatalf("unexpected audit record %+v", record)
	}
	if record.Actor.Name != "Ops" {
		t.Fatalf("actor = %q, want Ops", record.Actor.Name)
	}
}

func TestRebuildAccountsNoopWhenConsistent(t *testing.T) {
	repo := newStubRepo()
	cash := models.Account{ID: uuid.New(), Code: "CAS001", Name: "Cash", OpeningBalance: decimal.Zero, Balance: dec("100")}
	repo.accounts = []models.Account{cash}
	repo.entrySums[cash.ID] = dec("100")
	auditor := &stubAuditor{}
	svc := newTestService(t, repo, auditor)

	report, err := svc.RebuildAccounts(context.Background(), uuid.New(), audit.Actor{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("RebuildAccounts: %v", err)
	}
	if report.Repaired {
		t.Fatal("nothing to repair, report must not claim it did")
	}
	if len(repo.balanceWrites) != 0 || len(auditor.records) != 0 {
		t.Fatal("consistent caches must not be rewritten")
	}
}

func TestCheckStock(t *testing.T) {
	repo := newStubRepo()
	good := models.InventoryItem{ID: uuid.New(), Code: "WID-1", Name: "Widget", CurrentStock: dec("25")}
	bad := models.InventoryItem{ID: uuid.New(), Code: "WID-2", Name: "Gadget", CurrentStock: dec("10")}
	unmoved := models.InventoryItem{ID: uuid.New(), Code: "WID-3", Name: "Sprocket", CurrentStock: decimal.Zero}
	repo.items = []models.InventoryItem{good, bad, unmoved}
	repo.movementSums[good.ID] = dec("25")
	repo.movementSums[bad.ID] = dec("7")
	svc := newTestService(t, repo, &stubAuditor{})

	report, err := svc.CheckStock(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckStock: %v", err)
	}
	if report.Checked != 3 || len(report.Mismatches) != 1 {
		t.Fatalf("report = %+v, want 3 checked / 1 mismatch", report)
	}
	if m := report.Mismatches[0]; m.EntityID != bad.ID || m.Computed.String() != "7" {
		t.Fatalf("unexpected mismatch %+v", m)
	}
}

func TestRebuildStock(t *testing.T) {
	repo := newStubRepo()
	bad := models.InventoryItem{ID: uuid.New(), Code: "WID-2", Name: "Gadget", CurrentStock: dec("10")}
	repo.items = []models.InventoryItem{bad}
	repo.movementSums[bad.ID] = dec("7")
	auditor := &stubAuditor{}
	svc := newTestService(t, repo, auditor)

	report, err := svc.RebuildStock(context.Background(), uuid.New(), audit.Actor{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("RebuildStock: %v", err)
	}
	if !report.Repaired {
		t.Fatal("expected repaired report")
	}
	if got := repo.stockWrites[bad.ID]; got.String() != "7" {
		t.Fatalf("written stock = %s, want 7", got)
	}
	if len(auditor.records) != 1 || auditor.records[0].EntityType != entityTypeItem {
		t.Fatalf("unexpected audit records %+v", auditor.records)
	}
}
