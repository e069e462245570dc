package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/config"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/repository"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/ptr"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/validator"
)

type ApplyStockChangeParams struct {
	ProductID uuid.UUID `validate:"required"`
	// Delta is positive for stock-in and negative for stock-out.
	Delta int `validate:"ne=0,gte=-2147483647,lte=2147483647"`
	Meta  StockMeta
}

// StockInParams books inbound stock against an existing product or a new one.
type StockInParams struct {
	ProductID  *uuid.UUID             `validate:"required_without=NewProduct,excluded_with=NewProduct"`
	NewProduct *RegisterProductParams `validate:"omitempty"`
	Quantity   int                    `validate:"gt=0,lte=2147483647"`
	Meta       StockMeta
}

type ListTransactionsParams struct {
	TransactionType *model.TransactionType `validate:"omitempty,enum"`
	ProductID       *uuid.UUID
	// Today keeps only transactions created on the current calendar day.
	Today bool
	Limit int `validate:"gte=0,lte=500"`
}

type StockService interface {
	// ApplyStockChange adds Delta to the product's stock and records the
	// transaction in one database transaction.
	ApplyStockChange(ctx context.Context, params ApplyStockChangeParams) (StockChange, error)
	StockIn(ctx context.Context, params StockInParams) (StockChange, error)
	ListTransactions(ctx context.Context, params ListTransactionsParams) ([]model.StockTransaction, error)
}

type stockService struct {
	db             db.DB
	productService ProductService
	stockTxRepo    repository.StockTransactionRepository
	ledger         stockLedger
	validator      validator.Validator
	location       *time.Location
	now            func() time.Time
}

func NewStockService(
	db db.DB,
	productService ProductService,
	productRepo repository.ProductRepository,
	stockTxRepo repository.StockTransactionRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	validator validator.Validator,
	cfg config.Inventory,
) StockService {
	return &stockService{
		db:             db,
		productService: productService,
		stockTxRepo:    stockTxRepo,
		ledger: stockLedger{
			productRepo:   productRepo,
			stockTxRepo:   stockTxRepo,
			outboxMsgRepo: outboxMsgRepo,
			allowNegative: cfg.AllowNegativeStock,
		},
		validator: validator,
		location:  &cfg.Timezone,
		now:       time.Now,
	}
}

func (s *stockService) ApplyStockChange(ctx context.Context, params ApplyStockChangeParams) (StockChange, error) {
	if err := s.validator.Validate(params); err != nil {
		return StockChange{}, err
	}

	var change StockChange
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		var err error
		change, err = s.ledger.apply(ctx, tx, params.ProductID, params.Delta, params.Meta, s.now())
		return err
	}); err != nil {
		return StockChange{}, translateErr(fmt.Errorf("db with tx: %w", err))
	}

	return change, nil
}

func (s *stockService) StockIn(ctx context.Context, params StockInParams) (StockChange, error) {
	if params.NewProduct != nil {
		params.NewProduct.prepare(s.now())
	}

	if err := s.validator.Validate(params); err != nil {
		return StockChange{}, err
	}

	if params.ProductID != nil {
		return s.ApplyStockChange(ctx, ApplyStockChangeParams{
			ProductID: *params.ProductID,
			Delta:     params.Quantity,
			Meta:      params.Meta,
		})
	}

	newProduct := *params.NewProduct
	newProduct.InitialQuantity = params.Quantity
	newProduct.Meta = params.Meta

	result, err := s.productService.RegisterProduct(ctx, newProduct)
	if err != nil {
		return StockChange{}, err
	}

	return StockChange{Product: result.Product, Transaction: ptr.Deref(result.Transaction, model.StockTransaction{})}, nil
}

func (s *stockService) ListTransactions(ctx context.Context, params ListTransactionsParams) ([]model.StockTransaction, error) {
	if err := s.validator.Validate(params); err != nil {
		return nil, err
	}

	listParams := repository.ListStockTransactionsParams{
		TransactionType: params.TransactionType,
		ProductID:       params.ProductID,
		Limit:           int32(params.Limit),
	}
	if params.Today {
		start, end := inventory.DayBounds(s.now().In(s.location))
		listParams.CreatedFrom = &start
		listParams.CreatedTo = &end
	}

	txns, err := s.stockTxRepo.ListStockTransactions(ctx, listParams)
	if err != nil {
		return nil, translateErr(fmt.Errorf("stock transaction repository list stock transactions: %w", err))
	}

	return txns, nil
}
