package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
)

// StockSummaryRow is one item's on-hand position valued at purchase rate.
type StockSummaryRow struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	PurchaseRate decimal.Decimal `json:"purchase_rate"`
	StockValue   decimal.Decimal `json:"stock_value"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	IsLowStock   bool            `json:"is_low_stock"`
}

// StockSummary values every item at purchase rate.
type StockSummary struct {
	Rows       []StockSummaryRow `json:"rows"`
	TotalValue decimal.Decimal   `json:"total_value"`
	LowStock   int               `json:"low_stock_count"`
}

func (s *service) StockSummary(ctx context.Context, tenantID uuid.UUID) (*StockSummary, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	items, err := s.repo.ListItems(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	report := &StockSummary{
		Rows:       make([]StockSummaryRow, 0, len(items)),
		TotalValue: decimal.Zero,
	}
	for _, item := range items {
		row := StockSummaryRow{
			ItemID:       item.ID,
			Code:         item.Code,
			Name:         item.Name,
			Unit:         item.Unit,
			CurrentStock: item.CurrentStock,
			PurchaseRate: item.PurchaseRate,
			StockValue:   item.CurrentStock.Mul(item.PurchaseRate),
			ReorderLevel: item.ReorderLevel,
		}
		row.IsLowStock = item.ReorderLevel.IsPositive() && item.CurrentStock.LessThanOrEqual(item.ReorderLevel)
		if row.IsLowStock {
			report.LowStock++
		}
		report.Rows = append(report.Rows, row)
		report.TotalValue = report.TotalValue.Add(row.StockValue)
	}
	return report, nil
}

// agingBuckets are the day ranges items are grouped into, oldest-last.
var agingBuckets = []struct {
	label string
	max   int
}{
	{"0-30", 30},
	{"31-60", 60},
	{"61-90", 90},
	{"90+", -1},
}

// StockAgingRow is one item with the days since its last movement.
type StockAgingRow struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	StockValue   decimal.Decimal `json:"stock_value"`
	LastMovement time.Time       `json:"last_movement"`
	AgeDays      int             `json:"age_days"`
	Bucket       string          `json:"bucket"`
}

// StockAging groups stocked items by staleness of their last movement.
type StockAging struct {
	AsOf    time.Time                 `json:"as_of"`
	Rows    []StockAgingRow           `json:"rows"`
	Buckets map[string]decimal.Decimal `json:"buckets"`
}

func (s *service) StockAging(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*StockAging, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	items, err := s.repo.ListItems(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	lastDates, err := s.repo.LastMovementDates(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate movements")
	}

	report := &StockAging{
		AsOf:    asOf,
		Rows:    make([]StockAgingRow, 0, len(items)),
		Buckets: make(map[string]decimal.Decimal, len(agingBuckets)),
	}
	for _, bucket := range agingBuckets {
		report.Buckets[bucket.label] = decimal.Zero
	}

	for _, item := range items {
		if !item.CurrentStock.IsPositive() {
			continue
		}
		// Items with no movements age from their creation.
		last, ok := lastDates[item.ID]
		if !ok {
			last = item.CreatedAt
		}
		age := int(asOf.Sub(last).Hours() / 24)
		if age < 0 {
			age = 0
		}

		row := StockAgingRow{
			ItemID:       item.ID,
			Code:         item.Code,
			Name:         item.Name,
			CurrentStock: item.CurrentStock,
			StockValue:   item.CurrentStock.Mul(item.PurchaseRate),
			LastMovement: last,
			AgeDays:      age,
			Bucket:       bucketFor(age),
		}
		report.Rows = append(report.Rows, row)
		report.Buckets[row.Bucket] = report.Buckets[row.Bucket].Add(row.StockValue)
	}
	return report, nil
}

func bucketFor(ageDays int) string {
	for _, bucket := range agingBuckets {
		if bucket.max >= 0 && ageDays <= bucket.max {
			return bucket.label
		}
	}
	return agingBuckets[len(agingBuckets)-1].label
}
