package tax

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
)

// Service exposes the statutory tax registers. All three read the same
// voucher log through accounts tagged with a tax category; nothing here
// writes.
type Service interface {
	GSTSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*GSTSummary, error)
	TDSSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*RegisterSummary, error)
	TCSSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*RegisterSummary, error)
}

type service struct {
	repo Repository
}

// NewService constructs the tax service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tax repository required")
	}
	return &service{repo: repo}, nil
}

// GSTRow is one gst-tagged account with its output and input sides.
type GSTRow struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	OutputTax   decimal.Decimal `json:"output_tax"`
	InputTax    decimal.Decimal `json:"input_tax"`
}

// GSTSummary opposes tax collected on sales against tax paid on purchases.
type GSTSummary struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Rows       []GSTRow        `json:"rows"`
	OutputTax  decimal.Decimal `json:"output_tax"`
	InputTax   decimal.Decimal `json:"input_tax"`
	NetPayable decimal.Decimal `json:"net_payable"`
}

func (s *service) GSTSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*GSTSummary, error) {
	entries, err := s.loadEntries(ctx, tenantID, enums.TaxCategoryGST, from, to)
	if err != nil {
		return nil, err
	}

	summary := &GSTSummary{
		From:       from,
		To:         to,
		OutputTax:  decimal.Zero,
		InputTax:   decimal.Zero,
		NetPayable: decimal.Zero,
	}
	byAccount := make(map[uuid.UUID]int)
	for _, entry := range entries {
		idx, ok := byAccount[entry.AccountID]
		if !ok {
			summary.Rows = append(summary.Rows, GSTRow{
				AccountID:   entry.AccountID,
				AccountCode: entry.AccountCode,
				AccountName: entry.AccountName,
				OutputTax:   decimal.Zero,
				InputTax:    decimal.Zero,
			})
			idx = len(summary.Rows) - 1
			byAccount[entry.AccountID] = idx
		}

		switch entry.VoucherType {
		case enums.VoucherTypeSales, enums.VoucherTypeReceipt:
			summary.Rows[idx].OutputTax = summary.Rows[idx].OutputTax.Add(entry.Credit)
			summary.OutputTax = summary.OutputTax.Add(entry.Credit)
		case enums.VoucherTypePurchase, enums.VoucherTypePayment:
			summary.Rows[idx].InputTax = summary.Rows[idx].InputTax.Add(entry.Debit)
			summary.InputTax = summary.InputTax.Add(entry.Debit)
		}
	}
	summary.NetPayable = summary.OutputTax.Sub(summary.InputTax)
	return summary, nil
}

// RegisterRow is one tax-tagged account with its period totals.
type RegisterRow struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Net         decimal.Decimal `json:"net"`
	Vouchers    int64           `json:"vouchers"`
}

// RegisterSummary is the TDS or TCS register: per-account totals with the
// net amount accrued over the period. Net is credit minus debit, the
// liability still owed to the department.
type RegisterSummary struct {
	Category enums.TaxCategory `json:"category"`
	From     time.Time         `json:"from"`
	To       time.Time         `json:"to"`
	Rows     []RegisterRow     `json:"rows"`
	Total    decimal.Decimal   `json:"total"`
	Vouchers int64             `json:"vouchers"`
}

func (s *service) TDSSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*RegisterSummary, error) {
	return s.register(ctx, tenantID, enums.TaxCategoryTDS, from, to)
}

func (s *service) TCSSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*RegisterSummary, error) {
	return s.register(ctx, tenantID, enums.TaxCategoryTCS, from, to)
}

func (s *service) register(ctx context.Context, tenantID uuid.UUID, category enums.TaxCategory, from, to time.Time) (*RegisterSummary, error) {
	entries, err := s.loadEntries(ctx, tenantID, category, from, to)
	if err != nil {
		return nil, err
	}

	summary := &RegisterSummary{
		Category: category,
		From:     from,
		To:       to,
		Total:    decimal.Zero,
	}
	byAccount := make(map[uuid.UUID]int)
	for _, entry := range entries {
		idx, ok := byAccount[entry.AccountID]
		if !ok {
			summary.Rows = append(summary.Rows, RegisterRow{
				AccountID:   entry.AccountID,
				AccountCode: entry.AccountCode,
				AccountName: entry.AccountName,
				Debit:       decimal.Zero,
				Credit:      decimal.Zero,
				Net:         decimal.Zero,
			})
			idx = len(summary.Rows) - 1
			byAccount[entry.AccountID] = idx
		}

		row := &summary.Rows[idx]
		row.Debit = row.Debit.Add(entry.Debit)
		row.Credit = row.Credit.Add(entry.Credit)
		row.Net = row.Credit.Sub(row.Debit)
		row.Vouchers += entry.Vouchers
		summary.Vouchers += entry.Vouchers
	}
	for _, row := range summary.Rows {
		summary.Total = summary.Total.Add(row.Net)
	}
	return summary, nil
}

func (s *service) loadEntries(ctx context.Context, tenantID uuid.UUID, category enums.TaxCategory, from, to time.Time) ([]TaxEntry, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range end precedes start")
	}
	entries, err := s.repo.TaxEntries(ctx, tenantID, category, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate tax entries")
	}
	return entries, nil
}
