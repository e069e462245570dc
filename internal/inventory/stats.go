package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
)

// Totals summarises the value of the whole inventory.
type Totals struct {
	TotalValue   decimal.Decimal `json:"total_value"`
	ProductCount int             `json:"product_count"`
}

// ComputeTotals sums current_stock × price over all products.
func ComputeTotals(products []model.Product) Totals {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.StockValue())
	}

	return Totals{
		TotalValue:   total,
		ProductCount: len(products),
	}
}

// ComputeTodayInbound sums the quantity of inbound transactions created on
// today's calendar date, evaluated in today's location.
func ComputeTodayInbound(transactions []model.StockTransaction, today time.Time) int {
	start, end := DayBounds(today)

	sum := 0
	for _, t := range transactions {
		if t.TransactionType != model.TransactionTypeIn {
			continue
		}
		if t.CreatedAt.Before(start) || !t.CreatedAt.Before(end) {
			continue
		}
		sum += t.Quantity
	}

	return sum
}

// DayBounds returns the half-open interval [start, end) of t's calendar date
// in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
