package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vnkt045/LekhyaAI-sub003/api/responses"
	"github.com/vnkt045/LekhyaAI-sub003/api/validators"
	"github.com/vnkt045/LekhyaAI-sub003/internal/vouchers"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/pagination"
)

type voucherEntryRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
	Debit     string `json:"debit" validate:"omitempty"`
	Credit    string `json:"credit" validate:"omitempty"`
	Narration string `json:"narration" validate:"omitempty,max=500"`
}

type stockLineRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity string `json:"quantity" validate:"required"`
	Rate     string `json:"rate" validate:"omitempty"`
}

type createVoucherRequest struct {
	Type         string                `json:"type" validate:"required"`
	Date         string                `json:"date" validate:"required"`
	Narration    string                `json:"narration" validate:"omitempty,max=1000"`
	ManualNumber string                `json:"manual_number" validate:"omitempty,max=50"`
	IsPostDated  bool                  `json:"is_post_dated"`
	PDCDate      *string               `json:"pdc_date" validate:"omitempty"`
	Entries      []voucherEntryRequest `json:"entries" validate:"required,min=2,dive"`
	StockLines   []stockLineRequest    `json:"stock_lines" validate:"omitempty,dive"`
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount must be numeric").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

// VoucherCreate validates and posts one balanced voucher.
func VoucherCreate(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createVoucherRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucherType, err := enums.ParseVoucherType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid voucher type"))
			return
		}
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
			return
		}

		input := vouchers.CreateVoucherInput{
			TenantID:     tenantID,
			Type:         voucherType,
			Date:         date,
			Narration:    validators.SanitizeString(req.Narration, 1000),
			ManualNumber: req.ManualNumber,
			IsPostDated:  req.IsPostDated,
			Actor:        actorFrom(r),
		}
		if req.PDCDate != nil {
			pdcDate, err := time.Parse(dateLayout, *req.PDCDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "pdc_date must be YYYY-MM-DD"))
				return
			}
			input.PDCDate = &pdcDate
		}

		for i, entry := range req.Entries {
			accountID, err := uuid.Parse(entry.AccountID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account id"))
				return
			}
			debit, err := parseAmount(entry.Debit, "entries["+strconv.Itoa(i)+"].debit")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			credit, err := parseAmount(entry.Credit, "entries["+strconv.Itoa(i)+"].credit")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Entries = append(input.Entries, vouchers.EntryInput{
				AccountID: accountID,
				Debit:     debit,
				Credit:    credit,
				Narration: validators.SanitizeString(entry.Narration, 500),
			})
		}

		for i, line := range req.StockLines {
			itemID, err := uuid.Parse(line.ItemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
				return
			}
			quantity, err := parseAmount(line.Quantity, "stock_lines["+strconv.Itoa(i)+"].quantity")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rate, err := parseAmount(line.Rate, "stock_lines["+strconv.Itoa(i)+"].rate")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.StockLines = append(input.StockLines, vouchers.StockLineInput{
				ItemID:   itemID,
				Quantity: quantity,
				Rate:     rate,
			})
		}

		voucher, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toVoucherResponse(voucher))
	}
}

type regularizeVoucherRequest struct {
	Date *string `json:"date" validate:"omitempty"`
}

// VoucherRegularize converts a post-dated voucher into a regular one.
func VoucherRegularize(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		voucherID, err := pathUUID(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := vouchers.RegularizeInput{
			TenantID:  tenantID,
			VoucherID: voucherID,
			Actor:     actorFrom(r),
		}
		if r.ContentLength > 0 {
			var req regularizeVoucherRequest
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if req.Date != nil {
				date, err := time.Parse(dateLayout, *req.Date)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
					return
				}
				input.Date = &date
			}
		}

		voucher, err := svc.Regularize(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toVoucherResponse(voucher))
	}
}

// VoucherDetail returns one voucher with its entries.
func VoucherDetail(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		voucherID, err := pathUUID(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Get(r.Context(), tenantID, voucherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toVoucherResponse(voucher))
	}
}

// VoucherList returns paginated vouchers, optionally filtered by type and
// date range.
func VoucherList(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := vouchers.ListParams{TenantID: tenantID}

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			voucherType, err := enums.ParseVoucherType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid voucher type"))
				return
			}
			params.Type = &voucherType
		}
		if params.From, err = queryDate(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.To, err = queryDate(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Limit, err = validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := voucherListResponse{
			Items:  make([]voucherResponse, 0, len(result.Items)),
			Cursor: result.Cursor,
		}
		for i := range result.Items {
			out.Items = append(out.Items, toVoucherResponse(&result.Items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
