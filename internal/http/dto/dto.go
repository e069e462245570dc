// Package dto holds the JSON request and response bodies of the HTTP API.
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *[]FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type StockMeta struct {
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty"`
	Supplier    string           `json:"supplier,omitempty"`
	Operator    string           `json:"operator,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

type NewProduct struct {
	Name        string           `json:"name"`
	Sku         string           `json:"sku"`
	AutoSku     bool             `json:"auto_sku"`
	Category    string           `json:"category"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	MinStock    *int             `json:"min_stock,omitempty"`
	Description string           `json:"description"`
}

type RegisterProductRequest struct {
	NewProduct
	StockMeta
	InitialQuantity int `json:"initial_quantity"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	MinStock    *int             `json:"min_stock,omitempty"`
	Description *string          `json:"description,omitempty"`
}

type StockChangeRequest struct {
	StockMeta
	// Delta is positive for stock-in and negative for stock-out.
	Delta int `json:"delta"`
}

type StockInRequest struct {
	StockMeta
	ProductID  *uuid.UUID  `json:"product_id,omitempty"`
	NewProduct *NewProduct `json:"new_product,omitempty"`
	Quantity   int         `json:"quantity"`
}

type ProductResponse struct {
	ID           uuid.UUID             `json:"id"`
	Sku          string                `json:"sku"`
	Name         string                `json:"name"`
	Category     string                `json:"category"`
	Price        decimal.Decimal       `json:"price"`
	CurrentStock int                   `json:"current_stock"`
	MinStock     int                   `json:"min_stock"`
	Description  string                `json:"description"`
	Status       inventory.StockStatus `json:"status"`
	StatusLabel  string                `json:"status_label"`
	TotalValue   decimal.Decimal       `json:"total_value"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func NewProductResponse(p model.Product) ProductResponse {
	status := inventory.Classify(p.CurrentStock, p.MinStock)
	return ProductResponse{
		ID:           p.ID,
		Sku:          p.Sku,
		Name:         p.Name,
		Category:     p.Category,
		Price:        p.Price,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		Description:  p.Description,
		Status:       status,
		StatusLabel:  status.Label(),
		TotalValue:   p.StockValue(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func NewProductResponses(products []model.Product) []ProductResponse {
	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, NewProductResponse(p))
	}
	return items
}

type TransactionResponse struct {
	ID              uuid.UUID             `json:"id"`
	ProductID       uuid.UUID             `json:"product_id"`
	ProductName     string                `json:"product_name"`
	ProductSku      string                `json:"product_sku"`
	TransactionType model.TransactionType `json:"transaction_type"`
	Quantity        int                   `json:"quantity"`
	UnitPrice       *decimal.Decimal      `json:"unit_price,omitempty"`
	TotalPrice      *decimal.Decimal      `json:"total_price,omitempty"`
	BatchNumber     string                `json:"batch_number,omitempty"`
	Supplier        string                `json:"supplier,omitempty"`
	Operator        string                `json:"operator,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// unknownProduct names transactions whose product has been deleted.
const unknownProduct = "未知商品"

func NewTransactionResponse(t model.StockTransaction) TransactionResponse {
	res := TransactionResponse{
		ID:              t.ID,
		ProductID:       t.ProductID,
		ProductName:     t.ProductName,
		ProductSku:      t.ProductSku,
		TransactionType: t.TransactionType,
		Quantity:        t.Quantity,
		UnitPrice:       t.UnitPrice,
		BatchNumber:     t.BatchNumber,
		Supplier:        t.Supplier,
		Operator:        t.Operator,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
	}
	if res.ProductName == "" {
		res.ProductName = unknownProduct
	}
	if t.UnitPrice != nil {
		total := t.TotalPrice()
		res.TotalPrice = &total
	}
	return res
}

func NewTransactionResponses(txns []model.StockTransaction) []TransactionResponse {
	items := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		items = append(items, NewTransactionResponse(t))
	}
	return items
}

type StockChangeResponse struct {
	Product     ProductResponse      `json:"product"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type DashboardResponse struct {
	TotalValue         decimal.Decimal       `json:"total_value"`
	CurrencySymbol     string                `json:"currency_symbol"`
	ProductCount       int                   `json:"product_count"`
	TodayInbound       int                   `json:"today_inbound"`
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
	GeneratedAt        time.Time             `json:"generated_at"`
}
