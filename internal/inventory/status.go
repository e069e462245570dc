// Package inventory holds the pure stock rules: status classification,
// aggregate statistics, list filtering and SKU generation.
package inventory

import (
	"fmt"
	"strings"
)

// StockStatus is the derived availability of a product.
type StockStatus uint8

const (
	StatusNormal StockStatus = iota
	StatusLow
	StatusOutOfStock
)

// Classify maps a stock level and its minimum threshold to a status.
// Zero stock is out of stock whatever the threshold; negative stock, which
// only exists when negative stock is allowed, is treated the same way.
func Classify(currentStock, minStock int) StockStatus {
	if currentStock <= 0 {
		return StatusOutOfStock
	}
	if currentStock <= minStock {
		return StatusLow
	}
	return StatusNormal
}

func (s StockStatus) String() string {
	switch s {
	case StatusLow:
		return "low"
	case StatusOutOfStock:
		return "out_of_stock"
	default:
		return "normal"
	}
}

// Label is the display text used on the inventory pages and alerts.
func (s StockStatus) Label() string {
	switch s {
	case StatusLow:
		return "低库存"
	case StatusOutOfStock:
		return "缺货"
	default:
		return "正常"
	}
}

func (s StockStatus) Validate() error {
	if s > StatusOutOfStock {
		return fmt.Errorf("unknown stock status: %d", s)
	}
	return nil
}

// NeedsRestock reports whether an alert should be raised for the status.
func (s StockStatus) NeedsRestock() bool {
	return s == StatusLow || s == StatusOutOfStock
}

// ParseStockStatus accepts the API names plus the short "out" filter value
// used by the inventory page.
func ParseStockStatus(s string) (StockStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return StatusNormal, nil
	case "low":
		return StatusLow, nil
	case "out", "out_of_stock":
		return StatusOutOfStock, nil
	default:
		return 0, fmt.Errorf("unknown stock status: %q", s)
	}
}

func (s StockStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *StockStatus) UnmarshalText(text []byte) error {
	v, err := ParseStockStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
