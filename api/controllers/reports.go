package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/vnkt045/LekhyaAI-sub003/api/responses"
	"github.com/vnkt045/LekhyaAI-sub003/internal/reports"
	"github.com/vnkt045/LekhyaAI-sub003/internal/tax"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
)

const formatXLSX = "xlsx"

func exportFormat(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
}

// ReportTrialBalance serves the trial balance as JSON or, with ?format=xlsx,
// as a workbook download.
func ReportTrialBalance(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := queryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := queryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if exportFormat(r) == formatXLSX {
			w.Header().Set("Content-Type", reports.XLSXContentType)
			w.Header().Set("Content-Disposition", `attachment; filename="trial-balance.xlsx"`)
			if err := svc.TrialBalanceXLSX(r.Context(), tenantID, from, to, w); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
			}
			return
		}

		report, err := svc.TrialBalance(r.Context(), tenantID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportBalanceSheet serves closing balances as of a date, default today.
func ReportBalanceSheet(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asOf, err := queryDate(r, "as_of")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		at := time.Now().UTC()
		if asOf != nil {
			at = *asOf
		}

		report, err := svc.BalanceSheet(r.Context(), tenantID, at)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportProfitAndLoss serves period performance over a required date range.
func ReportProfitAndLoss(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := requireQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := requireQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if to.Before(from) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "range end precedes start"))
			return
		}

		report, err := svc.ProfitAndLoss(r.Context(), tenantID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportDayBook serves one calendar day's voucher register as JSON or XLSX.
func ReportDayBook(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := queryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		at := time.Now().UTC()
		if day != nil {
			at = *day
		}

		if exportFormat(r) == formatXLSX {
			w.Header().Set("Content-Type", reports.XLSXContentType)
			w.Header().Set("Content-Disposition", `attachment; filename="day-book.xlsx"`)
			if err := svc.DayBookXLSX(r.Context(), tenantID, at, w); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
			}
			return
		}

		report, err := svc.DayBook(r.Context(), tenantID, at)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportStockSummary serves the on-hand valuation.
func ReportStockSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.StockSummary(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportStockAging serves stocked items grouped by staleness.
func ReportStockAging(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asOf, err := queryDate(r, "as_of")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		at := time.Now().UTC()
		if asOf != nil {
			at = *asOf
		}

		report, err := svc.StockAging(r.Context(), tenantID, at)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func taxPeriod(r *http.Request) (time.Time, time.Time, error) {
	from, err := requireQueryDate(r, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := requireQueryDate(r, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// ReportGST serves the GST register for a period.
func ReportGST(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, to, err := taxPeriod(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.GSTSummary(r.Context(), tenantID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportTDS serves the TDS register for a period.
func ReportTDS(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, to, err := taxPeriod(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.TDSSummary(r.Context(), tenantID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportTCS serves the TCS register for a period.
func ReportTCS(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, to, err := taxPeriod(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.TCSSummary(r.Context(), tenantID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
