package inventory

import (
	"strings"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
)

// Filter selects products on the inventory list. Zero values match everything.
type Filter struct {
	// Search matches name or SKU, case-insensitively.
	Search   string
	Category string
	Status   *StockStatus
}

func (f Filter) Match(p model.Product) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Sku), term) {
			return false
		}
	}

	if f.Category != "" && p.Category != f.Category {
		return false
	}

	if f.Status != nil && Classify(p.CurrentStock, p.MinStock) != *f.Status {
		return false
	}

	return true
}

// Apply returns the matching products in their original order.
func (f Filter) Apply(products []model.Product) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
