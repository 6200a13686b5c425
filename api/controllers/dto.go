package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
)

type accountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	ParentID       *uuid.UUID      `json:"parent_id,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Balance        decimal.Decimal `json:"balance"`
	TaxCategory    string          `json:"tax_category"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toAccountResponse(account *models.Account) accountResponse {
	return accountResponse{
		ID:             account.ID,
		Code:           account.Code,
		Name:           account.Name,
		Type:           string(account.Type),
		ParentID:       account.ParentID,
		OpeningBalance: account.OpeningBalance,
		Balance:        account.Balance,
		TaxCategory:    string(account.TaxCategory),
		IsActive:       account.IsActive,
		CreatedAt:      account.CreatedAt,
	}
}

type entryResponse struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration,omitempty"`
	Position  int             `json:"position"`
}

type voucherResponse struct {
	ID              uuid.UUID       `json:"id"`
	VoucherNumber   string          `json:"voucher_number"`
	Type            string          `json:"type"`
	Date            string          `json:"date"`
	Narration       string          `json:"narration,omitempty"`
	TotalDebit      decimal.Decimal `json:"total_debit"`
	TotalCredit     decimal.Decimal `json:"total_credit"`
	IsPosted        bool            `json:"is_posted"`
	IsPostDated     bool            `json:"is_post_dated"`
	PDCDate         *string         `json:"pdc_date,omitempty"`
	RegularizedDate *time.Time      `json:"regularized_date,omitempty"`
	Entries         []entryResponse `json:"entries"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toVoucherResponse(voucher *models.Voucher) voucherResponse {
	resp := voucherResponse{
		ID:              voucher.ID,
		VoucherNumber:   voucher.VoucherNumber,
		Type:            string(voucher.Type),
		Date:            voucher.Date.Format(dateLayout),
		Narration:       voucher.Narration,
		TotalDebit:      voucher.TotalDebit,
		TotalCredit:     voucher.TotalCredit,
		IsPosted:        voucher.IsPosted,
		IsPostDated:     voucher.IsPostDated,
		RegularizedDate: voucher.RegularizedDate,
		Entries:         make([]entryResponse, 0, len(voucher.Entries)),
		CreatedAt:       voucher.CreatedAt,
	}
	if voucher.PDCDate != nil {
		formatted := voucher.PDCDate.Format(dateLayout)
		resp.PDCDate = &formatted
	}
	for _, entry := range voucher.Entries {
		resp.Entries = append(resp.Entries, entryResponse{
			ID:        entry.ID,
			AccountID: entry.AccountID,
			Debit:     entry.Debit,
			Credit:    entry.Credit,
			Narration: entry.Narration,
			Position:  entry.Position,
		})
	}
	return resp
}

type voucherListResponse struct {
	Items  []voucherResponse `json:"items"`
	Cursor string            `json:"cursor,omitempty"`
}

type itemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Unit         string          `json:"unit"`
	PurchaseRate decimal.Decimal `json:"purchase_rate"`
	SaleRate     decimal.Decimal `json:"sale_rate"`
	OpeningStock decimal.Decimal `json:"opening_stock"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toItemResponse(item *models.InventoryItem) itemResponse {
	return itemResponse{
		ID:           item.ID,
		Code:         item.Code,
		Name:         item.Name,
		Category:     item.Category,
		Unit:         item.Unit,
		PurchaseRate: item.PurchaseRate,
		SaleRate:     item.SaleRate,
		OpeningStock: item.OpeningStock,
		CurrentStock: item.CurrentStock,
		ReorderLevel: item.ReorderLevel,
		CreatedAt:    item.CreatedAt,
	}
}

type movementResponse struct {
	ID        uuid.UUID       `json:"id"`
	ItemID    uuid.UUID       `json:"item_id"`
	VoucherID *uuid.UUID      `json:"voucher_id,omitempty"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
	Narration string          `json:"narration,omitempty"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

func toMovementResponse(movement *models.StockMovement) movementResponse {
	return movementResponse{
		ID:        movement.ID,
		ItemID:    movement.ItemID,
		VoucherID: movement.VoucherID,
		Type:      string(movement.Type),
		Quantity:  movement.Quantity,
		Rate:      movement.Rate,
		Amount:    movement.Amount,
		Narration: movement.Narration,
		Date:      movement.Date.Format(dateLayout),
		CreatedAt: movement.CreatedAt,
	}
}

type movementListResponse struct {
	Items  []movementResponse `json:"items"`
	Cursor string             `json:"cursor,omitempty"`
}
