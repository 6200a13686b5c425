package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/vnkt045/LekhyaAI-sub003/api/responses"
	"github.com/vnkt045/LekhyaAI-sub003/api/validators"
	"github.com/vnkt045/LekhyaAI-sub003/internal/inventory"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/pagination"
)

type createItemRequest struct {
	Code         string `json:"code" validate:"required,max=30"`
	Name         string `json:"name" validate:"required,max=200"`
	Category     string `json:"category" validate:"omitempty,max=100"`
	Unit         string `json:"unit" validate:"required,max=20"`
	PurchaseRate string `json:"purchase_rate" validate:"omitempty"`
	SaleRate     string `json:"sale_rate" validate:"omitempty"`
	OpeningStock string `json:"opening_stock" validate:"omitempty"`
	ReorderLevel string `json:"reorder_level" validate:"omitempty"`
}

// ItemCreate registers an inventory item; a positive opening stock seeds the
// movement log.
func ItemCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := inventory.CreateItemInput{
			TenantID: tenantID,
			Code:     strings.TrimSpace(req.Code),
			Name:     req.Name,
			Category: req.Category,
			Unit:     req.Unit,
			Actor:    actorFrom(r),
		}
		if input.PurchaseRate, err = parseAmount(req.PurchaseRate, "purchase_rate"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.SaleRate, err = parseAmount(req.SaleRate, "sale_rate"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.OpeningStock, err = parseAmount(req.OpeningStock, "opening_stock"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.ReorderLevel, err = parseAmount(req.ReorderLevel, "reorder_level"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toItemResponse(item))
	}
}

// ItemList returns the tenant's inventory items.
func ItemList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListItems(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]itemResponse, 0, len(items))
		for i := range items {
			out = append(out, toItemResponse(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ItemDetail returns one inventory item.
func ItemDetail(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), tenantID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toItemResponse(item))
	}
}

type recordMovementRequest struct {
	Type      string `json:"type" validate:"required"`
	Quantity  string `json:"quantity" validate:"required"`
	Rate      string `json:"rate" validate:"omitempty"`
	Amount    string `json:"amount" validate:"omitempty"`
	Narration string `json:"narration" validate:"omitempty,max=500"`
	Date      string `json:"date" validate:"required"`
}

// MovementRecord appends a manual stock movement to an item's log.
func MovementRecord(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req recordMovementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movementType, err := enums.ParseMovementType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
			return
		}

		input := inventory.RecordMovementInput{
			TenantID:  tenantID,
			ItemID:    itemID,
			Type:      movementType,
			Narration: validators.SanitizeString(req.Narration, 500),
			Date:      date,
		}
		if input.Quantity, err = parseAmount(req.Quantity, "quantity"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Rate, err = parseAmount(req.Rate, "rate"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Amount, err = parseAmount(req.Amount, "amount"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.RecordMovement(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toMovementResponse(movement))
	}
}

// MovementList returns an item's paginated movement log, newest first.
func MovementList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := inventory.ListMovementsParams{TenantID: tenantID, ItemID: itemID}
		if params.Limit, err = validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		result, err := svc.ListMovements(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := movementListResponse{
			Items:  make([]movementResponse, 0, len(result.Items)),
			Cursor: result.Cursor,
		}
		for i := range result.Items {
			out.Items = append(out.Items, toMovementResponse(&result.Items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
