package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
)

// balanceEpsilon is the largest tolerated drift between report columns.
var balanceEpsilon = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// Service exposes the reporting engine. Reports are pure aggregations over
// vouchers, entries, and movements; unregularized post-dated vouchers are
// excluded everywhere.
type Service interface {
	TrialBalance(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*TrialBalance, error)
	BalanceSheet(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*BalanceSheet, error)
	ProfitAndLoss(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*ProfitAndLoss, error)
	DayBook(ctx context.Context, tenantID uuid.UUID, day time.Time) (*DayBook, error)
	StockSummary(ctx context.Context, tenantID uuid.UUID) (*StockSummary, error)
	StockAging(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*StockAging, error)
	TrialBalanceXLSX(ctx context.Context, tenantID uuid.UUID, from, to *time.Time, w io.Writer) error
	DayBookXLSX(ctx context.Context, tenantID uuid.UUID, day time.Time, w io.Writer) error
}

type service struct {
	repo        Repository
	particulars ParticularsResolver
}

// NewService constructs the reporting service. A nil resolver falls back to
// the default day book particulars heuristic.
func NewService(repo Repository, particulars ParticularsResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if particulars == nil {
		particulars = DefaultParticulars
	}
	return &service{repo: repo, particulars: particulars}, nil
}

// TrialBalanceRow is one account line: net balance shown in the column
// matching its sign.
type TrialBalanceRow struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalance lists per-account nets with agreeing column totals.
type TrialBalance struct {
	From        *time.Time        `json:"from,omitempty"`
	To          *time.Time        `json:"to,omitempty"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}

func (s *service) TrialBalance(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*TrialBalance, error) {
	accounts, activity, err := s.loadActivity(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	report := &TrialBalance{
		From:        from,
		To:          to,
		Rows:        make([]TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, account := range accounts {
		act := activity[account.ID]
		net := account.OpeningBalance.Add(act.Debit).Sub(act.Credit)
		if net.IsZero() && act.Debit.IsZero() && act.Credit.IsZero() {
			continue
		}

		row := TrialBalanceRow{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Type:      string(account.Type),
			Debit:     decimal.Zero,
			Credit:    decimal.Zero,
		}
		if net.IsNegative() {
			row.Credit = net.Neg()
		} else {
			row.Debit = net
		}
		report.Rows = append(report.Rows, row)
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
	}

	report.Balanced = report.TotalDebit.Sub(report.TotalCredit).Abs().LessThanOrEqual(balanceEpsilon)
	return report, nil
}

// BalanceSheetRow is one account line shown at its natural sign.
type BalanceSheetRow struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// BalanceSheet groups closing balances as of a date. Retained earnings fold
// the lifetime profit into equity so the equation closes.
type BalanceSheet struct {
	AsOf             time.Time         `json:"as_of"`
	Assets           []BalanceSheetRow `json:"assets"`
	Liabilities      []BalanceSheetRow `json:"liabilities"`
	Equity           []BalanceSheetRow `json:"equity"`
	RetainedEarnings decimal.Decimal   `json:"retained_earnings"`
	TotalAssets      decimal.Decimal   `json:"total_assets"`
	TotalLiabilities decimal.Decimal   `json:"total_liabilities"`
	TotalEquity      decimal.Decimal   `json:"total_equity"`
	Balanced         bool              `json:"balanced"`
}

func (s *service) BalanceSheet(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*BalanceSheet, error) {
	accounts, activity, err := s.loadActivity(ctx, tenantID, nil, &asOf)
	if err != nil {
		return nil, err
	}

	report := &BalanceSheet{
		AsOf:             asOf,
		RetainedEarnings: decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, account := range accounts {
		act := activity[account.ID]
		net := account.OpeningBalance.Add(act.Debit).Sub(act.Credit)
		if net.IsZero() {
			continue
		}

		// flip credit-normal balances to their natural sign for display
		natural := net
		if !account.Type.IsDebitNormal() {
			natural = net.Neg()
		}

		switch account.Type {
		case enums.AccountTypeAsset:
			row := BalanceSheetRow{AccountID: account.ID, Code: account.Code, Name: account.Name, Amount: natural}
			report.Assets = append(report.Assets, row)
			report.TotalAssets = report.TotalAssets.Add(natural)
		case enums.AccountTypeLiability:
			row := BalanceSheetRow{AccountID: account.ID, Code: account.Code, Name: account.Name, Amount: natural}
			report.Liabilities = append(report.Liabilities, row)
			report.TotalLiabilities = report.TotalLiabilities.Add(natural)
		case enums.AccountTypeEquity:
			row := BalanceSheetRow{AccountID: account.ID, Code: account.Code, Name: account.Name, Amount: natural}
			report.Equity = append(report.Equity, row)
			report.TotalEquity = report.TotalEquity.Add(natural)
		case enums.AccountTypeRevenue:
			report.RetainedEarnings = report.RetainedEarnings.Add(natural)
		case enums.AccountTypeExpense:
			report.RetainedEarnings = report.RetainedEarnings.Sub(natural)
		}
	}

	report.TotalEquity = report.TotalEquity.Add(report.RetainedEarnings)
	diff := report.TotalAssets.Sub(report.TotalLiabilities.Add(report.TotalEquity))
	report.Balanced = diff.Abs().LessThanOrEqual(balanceEpsilon)
	return report, nil
}

// ProfitAndLossRow is one revenue or expense line over the period.
type ProfitAndLossRow struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ProfitAndLoss summarizes period performance. Opening balances are not
// part of the period figures.
type ProfitAndLoss struct {
	From                time.Time          `json:"from"`
	To                  time.Time          `json:"to"`
	Revenue             []ProfitAndLossRow `json:"revenue"`
	Expenses            []ProfitAndLossRow `json:"expenses"`
	TotalRevenue        decimal.Decimal    `json:"total_revenue"`
	TotalExpenses       decimal.Decimal    `json:"total_expenses"`
	NetProfit           decimal.Decimal    `json:"net_profit"`
	NetProfitPercentage decimal.Decimal    `json:"net_profit_percentage"`
}

func (s *service) ProfitAndLoss(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*ProfitAndLoss, error) {
	accounts, activity, err := s.loadActivity(ctx, tenantID, &from, &to)
	if err != nil {
		return nil, err
	}

	report := &ProfitAndLoss{
		From:                from,
		To:                  to,
		TotalRevenue:        decimal.Zero,
		TotalExpenses:       decimal.Zero,
		NetProfit:           decimal.Zero,
		NetProfitPercentage: decimal.Zero,
	}
	for _, account := range accounts {
		act := activity[account.ID]
		switch account.Type {
		case enums.AccountTypeRevenue:
			amount := act.Credit.Sub(act.Debit)
			if amount.IsZero() {
				continue
			}
			report.Revenue = append(report.Revenue, ProfitAndLossRow{AccountID: account.ID, Code: account.Code, Name: account.Name, Amount: amount})
			report.TotalRevenue = report.TotalRevenue.Add(amount)
		case enums.AccountTypeExpense:
			amount := act.Debit.Sub(act.Credit)
			if amount.IsZero() {
				continue
			}
			report.Expenses = append(report.Expenses, ProfitAndLossRow{AccountID: account.ID, Code: account.Code, Name: account.Name, Amount: amount})
			report.TotalExpenses = report.TotalExpenses.Add(amount)
		}
	}

	report.NetProfit = report.TotalRevenue.Sub(report.TotalExpenses)
	if !report.TotalRevenue.IsZero() {
		report.NetProfitPercentage = report.NetProfit.Div(report.TotalRevenue).Mul(hundred).Round(2)
	}
	return report, nil
}

func (s *service) loadActivity(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]models.Account, map[uuid.UUID]AccountActivity, error) {
	if tenantID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	accounts, err := s.repo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	rows, err := s.repo.AccountActivity(ctx, tenantID, from, to)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate entries")
	}
	activity := make(map[uuid.UUID]AccountActivity, len(rows))
	for _, row := range rows {
		activity[row.AccountID] = row
	}
	return accounts, activity, nil
}
