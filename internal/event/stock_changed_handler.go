package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/notify"
)

const TopicStockChanged = "stock.changed"

type StockChangedEvent struct {
	ProductID       string    `json:"product_id"`
	Sku             string    `json:"sku"`
	Name            string    `json:"name"`
	TransactionID   string    `json:"transaction_id"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	CurrentStock    int       `json:"current_stock"`
	MinStock        int       `json:"min_stock"`
	Status          string    `json:"status"`
	Operator        string    `json:"operator"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (s *Service) handleStockChangedEvent(ctx context.Context, ev StockChangedEvent) error {
	// Recomputed rather than trusting ev.Status so older producers still alert.
	status := inventory.Classify(ev.CurrentStock, ev.MinStock)
	if !status.NeedsRestock() {
		return nil
	}

	s.logger.InfoContext(ctx, "stock below threshold",
		slog.String("product_id", ev.ProductID),
		slog.Int("current_stock", ev.CurrentStock),
		slog.Int("min_stock", ev.MinStock),
		slog.String("status", status.String()),
	)

	alert := notify.LowStockAlert{
		ProductID:    ev.ProductID,
		Sku:          ev.Sku,
		Name:         ev.Name,
		CurrentStock: ev.CurrentStock,
		MinStock:     ev.MinStock,
		Status:       status,
	}
	if err := s.notifier.NotifyLowStock(ctx, alert); err != nil {
		return fmt.Errorf("notify low stock: %w", err)
	}

	return nil
}
