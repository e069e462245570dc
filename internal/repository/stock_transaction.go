package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
)

type ListStockTransactionsParams struct {
	TransactionType *model.TransactionType
	ProductID       *uuid.UUID
	// CreatedFrom and CreatedTo bound created_at as [from, to).
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	// Limit of zero returns every matching row.
	Limit int32
}

type StockTransactionRepository interface {
	WithDB(db db.DB) StockTransactionRepository
	CreateStockTransaction(ctx context.Context, txn model.StockTransaction) error
	// ListStockTransactions returns matching transactions newest first, with
	// the referenced product's name and SKU when it still exists.
	ListStockTransactions(ctx context.Context, params ListStockTransactionsParams) ([]model.StockTransaction, error)
}

type stockTransactionRepository struct {
	db db.DB
}

func NewStockTransactionRepository(db db.DB) StockTransactionRepository {
	return &stockTransactionRepository{db: db}
}

func (r stockTransactionRepository) WithDB(db db.DB) StockTransactionRepository {
	return &stockTransactionRepository{db: db}
}

func (r stockTransactionRepository) CreateStockTransaction(ctx context.Context, txn model.StockTransaction) error {
	var unitPrice *string
	if txn.UnitPrice != nil {
		s := txn.UnitPrice.String()
		unitPrice = &s
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO stock_transactions (
			id, product_id, transaction_type, quantity, unit_price,
			batch_number, supplier, operator, notes, created_at
		)
		VALUES (
			@id, @product_id, @transaction_type, @quantity, @unit_price::numeric,
			@batch_number, @supplier, @operator, @notes, @created_at
		)
	`, pgx.NamedArgs{
		"id":               txn.ID,
		"product_id":       txn.ProductID,
		"transaction_type": string(txn.TransactionType),
		"quantity":         txn.Quantity,
		"unit_price":       unitPrice,
		"batch_number":     nullIfEmpty(txn.BatchNumber),
		"supplier":         nullIfEmpty(txn.Supplier),
		"operator":         nullIfEmpty(txn.Operator),
		"notes":            nullIfEmpty(txn.Notes),
		"created_at":       txn.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert stock transaction: %w", db.Classify(err))
	}

	return nil
}

func (r stockTransactionRepository) ListStockTransactions(ctx context.Context, params ListStockTransactionsParams) ([]model.StockTransaction, error) {
	var txType *string
	if params.TransactionType != nil {
		s := string(*params.TransactionType)
		txType = &s
	}

	var limit *int32
	if params.Limit > 0 {
		limit = &params.Limit
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			t.id,
			t.product_id,
			t.transaction_type,
			t.quantity,
			t.unit_price::text,
			COALESCE(t.batch_number, ''),
			COALESCE(t.supplier, ''),
			COALESCE(t.operator, ''),
			COALESCE(t.notes, ''),
			t.created_at,
			COALESCE(p.name, ''),
			COALESCE(p.sku, '')
		FROM stock_transactions AS t
		LEFT JOIN products AS p ON p.id = t.product_id
		WHERE (@transaction_type::text IS NULL OR t.transaction_type = @transaction_type::text)
			AND (@product_id::uuid IS NULL OR t.product_id = @product_id::uuid)
			AND (@created_from::timestamptz IS NULL OR t.created_at >= @created_from::timestamptz)
			AND (@created_to::timestamptz IS NULL OR t.created_at < @created_to::timestamptz)
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT @limit::integer
	`, pgx.NamedArgs{
		"transaction_type": txType,
		"product_id":       params.ProductID,
		"created_from":     params.CreatedFrom,
		"created_to":       params.CreatedTo,
		"limit":            limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", db.Classify(err))
	}

	txns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.StockTransaction, error) {
		var (
			t         model.StockTransaction
			txType    string
			unitPrice *string
		)
		if err := row.Scan(
			&t.ID,
			&t.ProductID,
			&txType,
			&t.Quantity,
			&unitPrice,
			&t.BatchNumber,
			&t.Supplier,
			&t.Operator,
			&t.Notes,
			&t.CreatedAt,
			&t.ProductName,
			&t.ProductSku,
		); err != nil {
			return model.StockTransaction{}, err
		}

		t.TransactionType = model.TransactionType(txType)
		if unitPrice != nil {
			price, err := decimal.NewFromString(*unitPrice)
			if err != nil {
				return model.StockTransaction{}, fmt.Errorf("parse unit price %q: %w", *unitPrice, err)
			}
			t.UnitPrice = &price
		}

		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect stock transactions: %w", db.Classify(err))
	}

	return txns, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
