package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
)

// ErrInsufficientStock is returned by AdjustStock when the change would
// drive stock below zero and negative stock is not allowed.
var ErrInsufficientStock = errors.New("insufficient stock")

type UpdateProductParams struct {
	ID          uuid.UUID
	Name        *string
	Category    *string
	Price       *decimal.Decimal
	MinStock    *int
	Description *string
	UpdatedAt   time.Time
}

type AdjustStockParams struct {
	ID            uuid.UUID
	Delta         int
	AllowNegative bool
	UpdatedAt     time.Time
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	// ListProducts returns all products, newest first.
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// AdjustStock adds Delta to current_stock in a single statement and
	// returns the updated product.
	AdjustStock(ctx context.Context, params AdjustStockParams) (model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, sku, name, category, price::text, current_stock, min_stock, description, created_at, updated_at`

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, sku, name, category, price, current_stock, min_stock, description, created_at, updated_at)
		VALUES (@id, @sku, @name, @category, @price::numeric, @current_stock, @min_stock, @description, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":            product.ID,
		"sku":           product.Sku,
		"name":          product.Name,
		"category":      product.Category,
		"price":         product.Price.String(),
		"current_stock": product.CurrentStock,
		"min_stock":     product.MinStock,
		"description":   product.Description,
		"created_at":    product.CreatedAt,
		"updated_at":    product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert product: %w", db.Classify(err))
	}

	return nil
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})

	product, err := scanProduct(row)
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", db.Classify(err))
	}

	return product, nil
}

func (r productRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", db.Classify(err))
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", db.Classify(err))
	}

	return products, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, params UpdateProductParams) (model.Product, error) {
	var price *string
	if params.Price != nil {
		s := params.Price.String()
		price = &s
	}

	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET
			name        = COALESCE(@name, name),
			category    = COALESCE(@category, category),
			price       = COALESCE(@price::numeric, price),
			min_stock   = COALESCE(@min_stock, min_stock),
			description = COALESCE(@description, description),
			updated_at  = @updated_at
		WHERE id = @id
		RETURNING `+productColumns, pgx.NamedArgs{
		"id":          params.ID,
		"name":        params.Name,
		"category":    params.Category,
		"price":       price,
		"min_stock":   params.MinStock,
		"description": params.Description,
		"updated_at":  params.UpdatedAt,
	})

	product, err := scanProduct(row)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", db.Classify(err))
	}

	return product, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", db.Classify(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete product: %w", db.ErrNotFound)
	}

	return nil
}

func (r productRepository) AdjustStock(ctx context.Context, params AdjustStockParams) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET
			current_stock = current_stock + @delta,
			updated_at    = @updated_at
		WHERE id = @id
			AND (@allow_negative::boolean OR current_stock + @delta >= 0)
		RETURNING `+productColumns, pgx.NamedArgs{
		"id":             params.ID,
		"delta":          params.Delta,
		"allow_negative": params.AllowNegative,
		"updated_at":     params.UpdatedAt,
	})

	product, err := scanProduct(row)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, fmt.Errorf("adjust stock: %w", db.Classify(err))
	}

	// No row updated: either the product is missing or the guard rejected the change.
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = @id)`,
		pgx.NamedArgs{"id": params.ID},
	).Scan(&exists); err != nil {
		return model.Product{}, fmt.Errorf("check product exists: %w", db.Classify(err))
	}

	if !exists {
		return model.Product{}, fmt.Errorf("adjust stock: %w", db.ErrNotFound)
	}

	return model.Product{}, fmt.Errorf("adjust stock: %w", ErrInsufficientStock)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (model.Product, error) {
	var (
		p     model.Product
		price string
	)

	if err := row.Scan(
		&p.ID,
		&p.Sku,
		&p.Name,
		&p.Category,
		&price,
		&p.CurrentStock,
		&p.MinStock,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return model.Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}

	return p, nil
}
