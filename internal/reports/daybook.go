package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
)

const multipleAccountsLabel = "Multiple Accounts"

// ParticularsResolver names the counterparty column of a day book row.
type ParticularsResolver func(voucher models.Voucher, accounts map[uuid.UUID]models.Account) string

// DefaultParticulars picks the account opposite the cash/stock leg: the
// debit side for outflows (payment, purchase, debit note) and the credit
// side for inflows (receipt, sales, credit note). Journal and contra
// vouchers read their debit side. More than one candidate collapses to a
// generic label.
func DefaultParticulars(voucher models.Voucher, accounts map[uuid.UUID]models.Account) string {
	wantDebit := true
	switch voucher.Type {
	case enums.VoucherTypeReceipt, enums.VoucherTypeSales, enums.VoucherTypeCreditNote:
		wantDebit = false
	}

	var name string
	var matches int
	for _, entry := range voucher.Entries {
		onDebit := !entry.Debit.IsZero()
		if onDebit != wantDebit {
			continue
		}
		matches++
		if matches > 1 {
			return multipleAccountsLabel
		}
		if account, ok := accounts[entry.AccountID]; ok {
			name = account.Name
		} else {
			name = multipleAccountsLabel
		}
	}
	if matches == 0 {
		return multipleAccountsLabel
	}
	return name
}

// DayBookRow is one voucher in the day's chronological register.
type DayBookRow struct {
	VoucherID     uuid.UUID       `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	Type          string          `json:"type"`
	Particulars   string          `json:"particulars"`
	Narration     string          `json:"narration,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
}

// DayBook lists every voucher posted for a single calendar day.
type DayBook struct {
	Date        time.Time       `json:"date"`
	Rows        []DayBookRow    `json:"rows"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
}

func (s *service) DayBook(ctx context.Context, tenantID uuid.UUID, day time.Time) (*DayBook, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)

	accounts, err := s.repo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	byID := make(map[uuid.UUID]models.Account, len(accounts))
	for _, account := range accounts {
		byID[account.ID] = account
	}

	vouchers, err := s.repo.VouchersForRange(ctx, tenantID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}

	report := &DayBook{
		Date:        start,
		Rows:        make([]DayBookRow, 0, len(vouchers)),
		TotalAmount: decimal.Zero,
	}
	for _, voucher := range vouchers {
		report.Rows = append(report.Rows, DayBookRow{
			VoucherID:     voucher.ID,
			VoucherNumber: voucher.VoucherNumber,
			Type:          string(voucher.Type),
			Particulars:   s.particulars(voucher, byID),
			Narration:     voucher.Narration,
			Amount:        voucher.TotalDebit,
		})
		report.TotalAmount = report.TotalAmount.Add(voucher.TotalDebit)
	}
	report.Count = len(report.Rows)
	return report, nil
}
