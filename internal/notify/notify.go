// Package notify delivers low-stock alerts to the people who restock.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
)

type LowStockAlert struct {
	ProductID    string
	Sku          string
	Name         string
	CurrentStock int
	MinStock     int
	Status       inventory.StockStatus
}

// Text renders the alert as a short chat message.
func (a LowStockAlert) Text() string {
	return fmt.Sprintf("库存预警 [%s]\n商品: %s (%s)\n当前库存: %d\n安全库存: %d",
		a.Status.Label(), a.Name, a.Sku, a.CurrentStock, a.MinStock)
}

type Notifier interface {
	NotifyLowStock(ctx context.Context, alert LowStockAlert) error
}

var _ Notifier = (*LogNotifier)(nil)

// LogNotifier writes alerts to the log. It is used when no chat is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(slog.String("notifier", "log"))}
}

func (n *LogNotifier) NotifyLowStock(ctx context.Context, alert LowStockAlert) error {
	n.logger.WarnContext(ctx, "low stock alert",
		slog.String("product_id", alert.ProductID),
		slog.String("sku", alert.Sku),
		slog.String("name", alert.Name),
		slog.Int("current_stock", alert.CurrentStock),
		slog.Int("min_stock", alert.MinStock),
		slog.String("status", alert.Status.String()),
	)
	return nil
}
