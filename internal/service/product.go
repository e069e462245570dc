package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/config"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/event"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/repository"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/ptr"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/validator"
)

type RegisterProductParams struct {
	Name     string `validate:"required,max=255"`
	Sku      string `validate:"required,max=64,sku"`
	Category string `validate:"required,max=64"`
	// AutoSku generates a SKU when Sku is empty.
	AutoSku     bool
	Price       decimal.Decimal `validate:"gte=0,lt=10000000000"`
	MinStock    int             `validate:"gte=0,lte=2147483647"`
	Description string          `validate:"max=2000"`
	// InitialQuantity is booked as a stock-in when positive.
	InitialQuantity int `validate:"gte=0,lte=2147483647"`
	Meta            StockMeta
}

type UpdateProductParams struct {
	ID          uuid.UUID
	Name        *string          `validate:"omitempty,min=1,max=255"`
	Category    *string          `validate:"omitempty,min=1,max=64"`
	Price       *decimal.Decimal `validate:"omitempty,gte=0,lt=10000000000"`
	MinStock    *int             `validate:"omitempty,gte=0,lte=2147483647"`
	Description *string          `validate:"omitempty,max=2000"`
}

// RegisterProductResult carries the new product and, when an initial
// quantity was booked, its stock-in transaction.
type RegisterProductResult struct {
	Product     model.Product
	Transaction *model.StockTransaction
}

type ProductService interface {
	RegisterProduct(ctx context.Context, params RegisterProductParams) (RegisterProductResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	// ListProducts returns the products matching filter, newest first.
	ListProducts(ctx context.Context, filter inventory.Filter) ([]model.Product, error)
	UpdateProduct(ctx context.Context, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	db          db.DB
	productRepo repository.ProductRepository
	ledger      stockLedger
	validator   validator.Validator
	now         func() time.Time
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	stockTxRepo repository.StockTransactionRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	validator validator.Validator,
	cfg config.Inventory,
) ProductService {
	return &productService{
		db:          db,
		productRepo: productRepo,
		ledger: stockLedger{
			productRepo:   productRepo,
			stockTxRepo:   stockTxRepo,
			outboxMsgRepo: outboxMsgRepo,
			allowNegative: cfg.AllowNegativeStock,
		},
		validator: validator,
		now:       time.Now,
	}
}

func (p *RegisterProductParams) prepare(now time.Time) {
	p.Name = strings.TrimSpace(p.Name)
	p.Sku = strings.TrimSpace(p.Sku)
	p.Category = strings.TrimSpace(p.Category)
	if p.Sku == "" && p.AutoSku {
		p.Sku = inventory.GenerateSKU(now, nil)
	}
}

func (s *productService) RegisterProduct(ctx context.Context, params RegisterProductParams) (RegisterProductResult, error) {
	now := s.now()
	params.prepare(now)

	if err := s.validator.Validate(params); err != nil {
		return RegisterProductResult{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return RegisterProductResult{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	product := model.Product{
		ID:          id,
		Sku:         params.Sku,
		Name:        params.Name,
		Category:    params.Category,
		Price:       params.Price.Round(2),
		MinStock:    params.MinStock,
		Description: params.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ev := event.ProductCreatedEvent{
		ProductID: product.ID.String(),
		Sku:       product.Sku,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price.StringFixed(2),
		MinStock:  product.MinStock,
	}

	result := RegisterProductResult{Product: product}
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.
			WithDB(tx).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		if err := s.ledger.publish(ctx, tx, event.TopicProductCreated, ev, ptr.New(product.ID.String())); err != nil {
			return err
		}

		if params.InitialQuantity > 0 {
			change, err := s.ledger.apply(ctx, tx, product.ID, params.InitialQuantity, params.Meta, now)
			if err != nil {
				return err
			}
			result.Product = change.Product
			result.Transaction = &change.Transaction
		}

		return nil
	}); err != nil {
		return RegisterProductResult{}, translateErr(fmt.Errorf("db with tx: %w", err))
	}

	return result, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, translateErr(fmt.Errorf("product repository get product: %w", err))
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter inventory.Filter) ([]model.Product, error) {
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, translateErr(fmt.Errorf("product repository list products: %w", err))
	}

	return filter.Apply(products), nil
}

func (s *productService) UpdateProduct(ctx context.Context, params UpdateProductParams) (model.Product, error) {
	if params.Name != nil {
		params.Name = ptr.New(strings.TrimSpace(*params.Name))
	}
	if params.Category != nil {
		params.Category = ptr.New(strings.TrimSpace(*params.Category))
	}

	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, err
	}

	if params.Price != nil {
		params.Price = ptr.New(params.Price.Round(2))
	}

	product, err := s.productRepo.UpdateProduct(ctx, repository.UpdateProductParams{
		ID:          params.ID,
		Name:        params.Name,
		Category:    params.Category,
		Price:       params.Price,
		MinStock:    params.MinStock,
		Description: params.Description,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return model.Product{}, translateErr(fmt.Errorf("product repository update product: %w", err))
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return translateErr(fmt.Errorf("product repository delete product: %w", err))
	}

	return nil
}
