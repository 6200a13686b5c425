package reports

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
)

// XLSXContentType is the MIME type controllers should serve workbooks with.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const exportSheet = "Sheet1"

func (s *service) TrialBalanceXLSX(ctx context.Context, tenantID uuid.UUID, from, to *time.Time, w io.Writer) error {
	report, err := s.TrialBalance(ctx, tenantID, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	rows := make([][]any, 0, len(report.Rows)+2)
	rows = append(rows, []any{"Code", "Account", "Type", "Debit", "Credit"})
	for _, row := range report.Rows {
		rows = append(rows, []any{row.Code, row.Name, row.Type, row.Debit.String(), row.Credit.String()})
	}
	rows = append(rows, []any{"", "Total", "", report.TotalDebit.String(), report.TotalCredit.String()})

	if err := writeSheet(f, rows); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write workbook")
	}
	return nil
}

func (s *service) DayBookXLSX(ctx context.Context, tenantID uuid.UUID, day time.Time, w io.Writer) error {
	report, err := s.DayBook(ctx, tenantID, day)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	rows := make([][]any, 0, len(report.Rows)+2)
	rows = append(rows, []any{"Voucher No", "Type", "Particulars", "Narration", "Amount"})
	for _, row := range report.Rows {
		rows = append(rows, []any{row.VoucherNumber, row.Type, row.Particulars, row.Narration, row.Amount.String()})
	}
	rows = append(rows, []any{"", "", "Total", "", report.TotalAmount.String()})

	if err := writeSheet(f, rows); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write workbook")
	}
	return nil
}

func writeSheet(f *excelize.File, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "address cell")
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write row")
		}
	}
	return nil
}
