package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vnkt045/LekhyaAI-sub003/api/responses"
	"github.com/vnkt045/LekhyaAI-sub003/api/validators"
	"github.com/vnkt045/LekhyaAI-sub003/internal/accounts"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
)

type createAccountRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	Type           string  `json:"type" validate:"required"`
	Code           string  `json:"code" validate:"omitempty,max=30"`
	ParentID       *string `json:"parent_id" validate:"omitempty,uuid"`
	OpeningBalance string  `json:"opening_balance" validate:"omitempty"`
	TaxCategory    string  `json:"tax_category" validate:"omitempty"`
}

// AccountCreate adds one account to the tenant's chart.
func AccountCreate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createAccountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountType, err := enums.ParseAccountType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type"))
			return
		}
		taxCategory, err := enums.ParseTaxCategory(req.TaxCategory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax category"))
			return
		}

		input := accounts.CreateAccountInput{
			TenantID:    tenantID,
			Name:        req.Name,
			Type:        accountType,
			Code:        strings.TrimSpace(req.Code),
			TaxCategory: taxCategory,
			Actor:       actorFrom(r),
		}
		if req.OpeningBalance != "" {
			opening, err := decimal.NewFromString(req.OpeningBalance)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid opening balance"))
				return
			}
			input.OpeningBalance = opening
		}
		if req.ParentID != nil {
			parentID, err := uuid.Parse(*req.ParentID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid parent id"))
				return
			}
			input.ParentID = &parentID
		}

		account, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toAccountResponse(account))
	}
}

// AccountList returns the tenant's chart of accounts, active only unless
// includeInactive is set.
func AccountList(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		includeInactive := false
		if raw := strings.TrimSpace(r.URL.Query().Get("includeInactive")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid includeInactive value"))
				return
			}
			includeInactive = value
		}

		list, err := svc.List(r.Context(), tenantID, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]accountResponse, 0, len(list))
		for i := range list {
			out = append(out, toAccountResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AccountDetail returns one account.
func AccountDetail(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accountID, err := pathUUID(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Get(r.Context(), tenantID, accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAccountResponse(account))
	}
}

// AccountDeactivate soft-disables an account. Accounts are never deleted.
func AccountDeactivate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accountID, err := pathUUID(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Deactivate(r.Context(), tenantID, accountID, actorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAccountResponse(account))
	}
}
