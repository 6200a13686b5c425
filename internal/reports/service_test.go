package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
)

type stubRepo struct {
	accounts  []models.Account
	activity  []AccountActivity
	vouchers  []models.Voucher
	items     []models.InventoryItem
	lastDates map[uuid.UUID]time.Time
}

func (s *stubRepo) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]models.Account, error) {
	return s.accounts, nil
}

func (s *stubRepo) AccountActivity(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]AccountActivity, error) {
	return s.activity, nil
}

func (s *stubRepo) VouchersForRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.Voucher, error) {
	var out []models.Voucher
	for _, voucher := range s.vouchers {
		if voucher.Date.Before(from) || voucher.Date.After(to) {
			continue
		}
		out = append(out, voucher)
	}
	return out, nil
}

func (s *stubRepo) ListItems(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryItem, error) {
	return s.items, nil
}

func (s *stubRepo) LastMovementDates(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]time.Time, error) {
	if s.lastDates == nil {
		return map[uuid.UUID]time.Time{}, nil
	}
	return s.lastDates, nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func account(name string, accountType enums.AccountType, opening string) models.Account {
	return models.Account{
		ID:             uuid.New(),
		Code:           name,
		Name:           name,
		Type:           accountType,
		OpeningBalance: dec(opening),
		IsActive:       true,
	}
}

// A small but consistent ledger used across the financial report tests:
// capital 500 in, loan 400 in, sales 1000 in, rent 300 out, all via cash.
func seedLedger() (*stubRepo, map[string]models.Account) {
	cash := account("Cash", enums.AccountTypeAsset, "0")
	loan := account("Bank Loan", enums.AccountTypeLiability, "0")
	capital := account("Capital", enums.AccountTypeEquity, "0")
	sales := account("Sales", enums.AccountTypeRevenue, "0")
	rent := account("Rent", enums.AccountTypeExpense, "0")

	repo := &stubRepo{
		accounts: []models.Account{cash, loan, capital, sales, rent},
		activity: []AccountActivity{
			{AccountID: cash.ID, Debit: dec("1900"), Credit: dec("300"), Vouchers: 4},
			{AccountID: loan.ID, Debit: decimal.Zero, Credit: dec("400"), Vouchers: 1},
			{AccountID: capital.ID, Debit: decimal.Zero, Credit: dec("500"), Vouchers: 1},
			{AccountID: sales.ID, Debit: decimal.Zero, Credit: dec("1000"), Vouchers: 1},
			{AccountID: rent.ID, Debit: dec("300"), Credit: decimal.Zero, Vouchers: 1},
		},
	}
	byName := map[string]models.Account{
		"cash": cash, "loan": loan, "capital": capital, "sales": sales, "rent": rent,
	}
	return repo, byName
}

func TestTrialBalanceColumnsAgree(t *testing.T) {
	repo, byName := seedLedger()
	svc := newTestService(t, repo)

	report, err := svc.TrialBalance(context.Background(), uuid.New(), nil, nil)
	if err != nil {
		t.Fatalf("TrialBalance: %v", err)
	}

	if !report.Balanced {
		t.Fatalf("expected balanced trial balance, debit=%s credit=%s", report.TotalDebit, report.TotalCredit)
	}
	if got, want := report.TotalDebit.String(), "1900"; got != want {
		t.Fatalf("total debit = %s, want %s", got, want)
	}
	if got, want := report.TotalCredit.String(), "1900"; got != want {
		t.Fatalf("total credit = %s, want %s", got, want)
	}

	byAccount := make(map[uuid.UUID]TrialBalanceRow)
	for _, row := range report.Rows {
		byAccount[row.AccountID] = row
	}
	if row := byAccount[byName["cash"].ID]; row.Debit.String() != "1600" || !row.Credit.IsZero() {
		t.Fatalf("cash row = %s/%s, want 1600/0", row.Debit, row.Credit)
	}
	if row := byAccount[byName["sales"].ID]; row.Credit.String() != "1000" || !row.Debit.IsZero() {
		t.Fatalf("sales row = %s/%s, want 0/1000", row.Debit, row.Credit)
	}
}

func TestTrialBalanceSkipsIdleAccounts(t *testing.T) {
	idle := account("Suspense", enums.AccountTypeAsset, "0")
	active := account("Cash", enums.AccountTypeAsset, "0")
	repo := &stubRepo{
		accounts: []models.Account{idle, active},
		activity: []AccountActivity{{AccountID: active.ID, Debit: dec("50"), Credit: decimal.Zero}},
	}
	svc := newTestService(t, repo)

	report, err := svc.TrialBalance(context.Background(), uuid.New(), nil, nil)
	if err != nil {
		t.Fatalf("TrialBalance: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(report.Rows))
	}
	if report.Rows[0].AccountID != active.ID {
		t.Fatalf("unexpected row account %s", report.Rows[0].AccountID)
	}
}

func TestTrialBalanceIncludesOpeningBalances(t *testing.T) {
	cash := account("Cash", enums.AccountTypeAsset, "1000")
	capital := account("Capital", enums.AccountTypeEquity, "-1000")
	repo := &stubRepo{accounts: []models.Account{cash, capital}}
	svc := newTestService(t, repo)

	report, err := svc.TrialBalance(context.Background(), uuid.New(), nil, nil)
	if err != nil {
		t.Fatalf("TrialBalance: %v", err)
	}
	if !report.Balanced {
		t.Fatalf("expected balanced, debit=%s credit=%s", report.TotalDebit, report.TotalCredit)
	}
	if report.TotalDebit.String() != "1000" || report.TotalCredit.String() != "1000" {
		t.Fatalf("totals = %s/%s, want 1000/1000", report.TotalDebit, report.TotalCredit)
	}
}

func TestBalanceSheetEquationCloses(t *testing.T) {
	repo, _ := seedLedger()
	svc := newTestService(t, repo)

	report, err := svc.BalanceSheet(context.Background(), uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("BalanceSheet: %v", err)
	}

	if got, want := report.TotalAssets.String(), "1600"; got != want {
		t.Fatalf("assets = %s, want %s", got, want)
	}
	if got, want := report.TotalLiabilities.String(), "400"; got != want {
		t.Fatalf("liabilities = %s, want %s", got, want)
	}
	if got, want := report.RetainedEarnings.String(), "700"; got != want {
		t.Fatalf("retained earnings = %s, want %s", got, want)
	}
	if got, want := report.TotalEquity.String(), "1200"; got != want {
		t.Fatalf("equity = %s, want %s", got, want)
	}
	if !report.Balanced {
		t.Fatal("expected the balance sheet to balance")
	}
	if len(report.Assets) != 1 || len(report.Liabilities) != 1 || len(report.Equity) != 1 {
		t.Fatalf("section sizes = %d/%d/%d, want 1/1/1",
			len(report.Assets), len(report.Liabilities), len(report.Equity))
	}
}

func TestProfitAndLoss(t *testing.T) {
	repo, _ := seedLedger()
	svc := newTestService(t, repo)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	report, err := svc.ProfitAndLoss(context.Background(), uuid.New(), from, to)
	if err != nil {
		t.Fatalf("ProfitAndLoss: %v", err)
	}

	if got, want := report.TotalRevenue.String(), "1000"; got != want {
		t.Fatalf("revenue = %s, want %s", got, want)
	}
	if got, want := report.TotalExpenses.String(), "300"; got != want {
		t.Fatalf("expenses = %s, want %s", got, want)
	}
	if got, want := report.NetProfit.String(), "700"; got != want {
		t.Fatalf("net profit = %s, want %s", got, want)
	}
	if got, want := report.NetProfitPercentage.String(), "70"; got != want {
		t.Fatalf("net profit %% = %s, want %s", got, want)
	}
}

func TestProfitAndLossZeroRevenue(t *testing.T) {
	rent := account("Rent", enums.AccountTypeExpense, "0")
	repo := &stubRepo{
		accounts: []models.Account{rent},
		activity: []AccountActivity{{AccountID: rent.ID, Debit: dec("300"), Credit: decimal.Zero}},
	}
	svc := newTestService(t, repo)

	report, err := svc.ProfitAndLoss(context.Background(), uuid.New(), time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("ProfitAndLoss: %v", err)
	}
	if got, want := report.NetProfit.String(), "-300"; got != want {
		t.Fatalf("net profit = %s, want %s", got, want)
	}
	if !report.NetProfitPercentage.IsZero() {
		t.Fatalf("net profit %% = %s, want 0", report.NetProfitPercentage)
	}
}

func TestReportsRequireTenant(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	_, err := svc.TrialBalance(context.Background(), uuid.Nil, nil, nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func dayBookVoucher(voucherType enums.VoucherType, number string, date time.Time, amount string, entries []models.VoucherEntry) models.Voucher {
	return models.Voucher{
		ID:            uuid.New(),
		VoucherNumber: number,
		Type:          voucherType,
		Date:          date,
		TotalDebit:    dec(amount),
		TotalCredit:   dec(amount),
		Entries:       entries,
	}
}

func TestDayBook(t *testing.T) {
	cash := account("Cash", enums.AccountTypeAsset, "0")
	rent := account("Rent", enums.AccountTypeExpense, "0")
	sales := account("Sales", enums.AccountTypeRevenue, "0")

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	payment := dayBookVoucher(enums.VoucherTypePayment, "PAY-290826000001", day.Add(9*time.Hour), "300", []models.VoucherEntry{
		{AccountID: rent.ID, Debit: dec("300")},
		{AccountID: cash.ID, Credit: dec("300")},
	})
	sale := dayBookVoucher(enums.VoucherTypeSales, "SAL-290826000001", day.Add(11*time.Hour), "1000", []models.VoucherEntry{
		{AccountID: cash.ID, Debit: dec("1000")},
		{AccountID: sales.ID, Credit: dec("1000")},
	})
	outside := dayBookVoucher(enums.VoucherTypeReceipt, "RCT-300826000001", day.Add(25*time.Hour), "50", nil)

	repo := &stubRepo{
		accounts: []models.Account{cash, rent, sales},
		vouchers: []models.Voucher{payment, sale, outside},
	}
	svc := newTestService(t, repo)

	report, err := svc.DayBook(context.Background(), uuid.New(), day.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("DayBook: %v", err)
	}

	if report.Count != 2 {
		t.Fatalf("count = %d, want 2", report.Count)
	}
	if got, want := report.TotalAmount.String(), "1300"; got != want {
		t.Fatalf("total = %s, want %s", got, want)
	}
	if got, want := report.Rows[0].Particulars, "Rent"; got != want {
		t.Fatalf("payment particulars = %q, want %q", got, want)
	}
	if got, want := report.Rows[1].Particulars, "Sales"; got != want {
		t.Fatalf("sales particulars = %q, want %q", got, want)
	}
}

func TestDefaultParticularsMultipleAccounts(t *testing.T) {
	cash := account("Cash", enums.AccountTypeAsset, "0")
	rent := account("Rent", enums.AccountTypeExpense, "0")
	power := account("Electricity", enums.AccountTypeExpense, "0")
	byID := map[uuid.UUID]models.Account{cash.ID: cash, rent.ID: rent, power.ID: power}

	voucher := dayBookVoucher(enums.VoucherTypePayment, "PAY-290826000002", time.Now(), "500", []models.VoucherEntry{
		{AccountID: rent.ID, Debit: dec("300")},
		{AccountID: power.ID, Debit: dec("200")},
		{AccountID: cash.ID, Credit: dec("500")},
	})

	if got := DefaultParticulars(voucher, byID); got != multipleAccountsLabel {
		t.Fatalf("particulars = %q, want %q", got, multipleAccountsLabel)
	}
}

func item(code string, current, rate, reorder string) models.InventoryItem {
	return models.InventoryItem{
		ID:           uuid.New(),
		Code:         code,
		Name:         code,
		Unit:         "pcs",
		CurrentStock: dec(current),
		PurchaseRate: dec(rate),
		ReorderLevel: dec(reorder),
	}
}

func TestStockSummary(t *testing.T) {
	repo := &stubRepo{items: []models.InventoryItem{
		item("WID-1", "25", "40", "10"),
		item("WID-2", "5", "100", "10"),
	}}
	svc := newTestService(t, repo)

	report, err := svc.StockSummary(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("StockSummary: %v", err)
	}

	if got, want := report.TotalValue.String(), "1500"; got != want {
		t.Fatalf("total value = %s, want %s", got, want)
	}
	if report.LowStock != 1 {
		t.Fatalf("low stock count = %d, want 1", report.LowStock)
	}
	if report.Rows[0].IsLowStock || !report.Rows[1].IsLowStock {
		t.Fatalf("low stock flags = %v/%v, want false/true", report.Rows[0].IsLowStock, report.Rows[1].IsLowStock)
	}
	if got, want := report.Rows[0].StockValue.String(), "1000"; got != want {
		t.Fatalf("stock value = %s, want %s", got, want)
	}
}

func TestStockAgingBuckets(t *testing.T) {
	asOf := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	fresh := item("FRESH", "10", "5", "0")
	stale := item("STALE", "4", "25", "0")
	dead := item("DEAD", "2", "50", "0")
	never := item("NEVER", "1", "10", "0")
	never.CreatedAt = asOf.AddDate(0, 0, -45)
	empty := item("EMPTY", "0", "10", "0")

	repo := &stubRepo{
		items: []models.InventoryItem{fresh, stale, dead, never, empty},
		lastDates: map[uuid.UUID]time.Time{
			fresh.ID: asOf.AddDate(0, 0, -10),
			stale.ID: asOf.AddDate(0, 0, -70),
			dead.ID:  asOf.AddDate(0, 0, -120),
		},
	}
	svc := newTestService(t, repo)

	report, err := svc.StockAging(context.Background(), uuid.New(), asOf)
	if err != nil {
		t.Fatalf("StockAging: %v", err)
	}

	if len(report.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(report.Rows))
	}
	byCode := make(map[string]StockAgingRow)
	for _, row := range report.Rows {
		byCode[row.Code] = row
	}
	if got, want := byCode["FRESH"].Bucket, "0-30"; got != want {
		t.Fatalf("fresh bucket = %s, want %s", got, want)
	}
	if got, want := byCode["STALE"].Bucket, "61-90"; got != want {
		t.Fatalf("stale bucket = %s, want %s", got, want)
	}
	if got, want := byCode["DEAD"].Bucket, "90+"; got != want {
		t.Fatalf("dead bucket = %s, want %s", got, want)
	}
	if got, want := byCode["NEVER"].Bucket, "31-60"; got != want {
		t.Fatalf("unmoved bucket = %s, want %s", got, want)
	}
	if got, want := report.Buckets["0-30"].String(), "50"; got != want {
		t.Fatalf("0-30 value = %s, want %s", got, want)
	}
	if got, want := report.Buckets["90+"].String(), "100"; got != want {
		t.Fatalf("90+ value = %s, want %s", got, want)
	}
}

func TestTrialBalanceXLSX(t *testing.T) {
	repo, _ := seedLedger()
	svc := newTestService(t, repo)

	var buf bytes.Buffer
	if err := svc.TrialBalanceXLSX(context.Background(), uuid.New(), nil, nil, &buf); err != nil {
		t.Fatalf("TrialBalanceXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	// header + 5 accounts + totals
	if len(rows) != 7 {
		t.Fatalf("rows = %d, want 7", len(rows))
	}
	if rows[0][0] != "Code" || rows[0][3] != "Debit" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	last := rows[len(rows)-1]
	if last[1] != "Total" || last[3] != "1900" || last[4] != "1900" {
		t.Fatalf("unexpected totals row %v", last)
	}
}
