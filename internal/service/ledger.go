package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/event"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/repository"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/operator"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/outbox"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/ptr"
)

// StockMeta describes where a stock change came from. Every field is optional.
type StockMeta struct {
	UnitPrice   *decimal.Decimal `validate:"omitempty,gte=0,lt=10000000000"`
	BatchNumber string           `validate:"max=64"`
	Supplier    string           `validate:"max=128"`
	Operator    string           `validate:"max=64"`
	Notes       string           `validate:"max=1000"`
}

// StockChange is the outcome of a stock mutation.
type StockChange struct {
	Product     model.Product
	Transaction model.StockTransaction
}

// stockLedger applies stock changes. It must be called with a transactional
// db so the product update, the transaction row and the outbox message
// commit together.
type stockLedger struct {
	productRepo   repository.ProductRepository
	stockTxRepo   repository.StockTransactionRepository
	outboxMsgRepo repository.OutboxMsgRepository
	allowNegative bool
}

func (l stockLedger) apply(ctx context.Context, tx db.DB, productID uuid.UUID, delta int, meta StockMeta, now time.Time) (StockChange, error) {
	product, err := l.productRepo.
		WithDB(tx).
		AdjustStock(ctx, repository.AdjustStockParams{
			ID:            productID,
			Delta:         delta,
			AllowNegative: l.allowNegative,
			UpdatedAt:     now,
		})
	if err != nil {
		return StockChange{}, fmt.Errorf("product repository adjust stock: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return StockChange{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	quantity := delta
	if quantity < 0 {
		quantity = -quantity
	}

	txn := model.StockTransaction{
		ID:              id,
		ProductID:       product.ID,
		TransactionType: model.TransactionTypeFromDelta(delta),
		Quantity:        quantity,
		UnitPrice:       meta.UnitPrice,
		BatchNumber:     meta.BatchNumber,
		Supplier:        meta.Supplier,
		Operator:        operator.Resolve(ctx, meta.Operator),
		Notes:           meta.Notes,
		CreatedAt:       now,
		ProductName:     product.Name,
		ProductSku:      product.Sku,
	}

	if err := l.stockTxRepo.
		WithDB(tx).
		CreateStockTransaction(ctx, txn); err != nil {
		return StockChange{}, fmt.Errorf("stock transaction repository create: %w", err)
	}

	status := inventory.Classify(product.CurrentStock, product.MinStock)
	ev := event.StockChangedEvent{
		ProductID:       product.ID.String(),
		Sku:             product.Sku,
		Name:            product.Name,
		TransactionID:   txn.ID.String(),
		TransactionType: string(txn.TransactionType),
		Quantity:        txn.Quantity,
		CurrentStock:    product.CurrentStock,
		MinStock:        product.MinStock,
		Status:          status.String(),
		Operator:        txn.Operator,
		OccurredAt:      now,
	}

	if err := l.publish(ctx, tx, event.TopicStockChanged, ev, ptr.New(product.ID.String())); err != nil {
		return StockChange{}, err
	}

	return StockChange{Product: product, Transaction: txn}, nil
}

func (l stockLedger) publish(ctx context.Context, tx db.DB, topic string, ev any, partitionKey *string) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := l.outboxMsgRepo.
		WithDB(tx).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: partitionKey,
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
