package event

import (
	"context"
	"log/slog"
)

const TopicProductCreated = "product.created"

type ProductCreatedEvent struct {
	ProductID string `json:"product_id"`
	Sku       string `json:"sku"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Price     string `json:"price"`
	MinStock  int    `json:"min_stock"`
}

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "product registered",
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku),
		slog.String("category", ev.Category),
	)
	return nil
}
