package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a stock transaction.
type TransactionType string

const (
	TransactionTypeIn  TransactionType = "in"
	TransactionTypeOut TransactionType = "out"
)

// TransactionTypeFromDelta derives the direction from a signed quantity change.
func TransactionTypeFromDelta(delta int) TransactionType {
	if delta < 0 {
		return TransactionTypeOut
	}
	return TransactionTypeIn
}

func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypeIn, TransactionTypeOut:
		return nil
	default:
		return fmt.Errorf("unknown transaction type: %q", string(t))
	}
}

// Sign is +1 for inbound and -1 for outbound transactions.
func (t TransactionType) Sign() int {
	if t == TransactionTypeOut {
		return -1
	}
	return 1
}

// StockTransaction is an append-only record of one stock change.
type StockTransaction struct {
	ID              uuid.UUID        `json:"id"`
	ProductID       uuid.UUID        `json:"product_id"`
	TransactionType TransactionType  `json:"transaction_type"`
	Quantity        int              `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	BatchNumber     string           `json:"batch_number,omitempty"`
	Supplier        string           `json:"supplier,omitempty"`
	Operator        string           `json:"operator,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`

	// Product name and SKU, filled by listing queries. Empty when the
	// product has since been deleted.
	ProductName string `json:"product_name,omitempty"`
	ProductSku  string `json:"product_sku,omitempty"`
}

// SignedQuantity returns the stock delta this transaction represents.
func (t StockTransaction) SignedQuantity() int {
	return t.TransactionType.Sign() * t.Quantity
}

// TotalPrice is quantity times unit price, zero when no unit price was recorded.
func (t StockTransaction) TotalPrice() decimal.Decimal {
	if t.UnitPrice == nil {
		return decimal.Zero
	}
	return t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
}
