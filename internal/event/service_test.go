package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/notify"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	started  bool
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	if _, ok := c.handlers[topic]; ok {
		return errors.New("handler already registered")
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.started = true
	return func() {}, nil
}

type fakeNotifier struct {
	alerts []notify.LowStockAlert
	err    error
}

func (n *fakeNotifier) NotifyLowStock(_ context.Context, alert notify.LowStockAlert) error {
	n.alerts = append(n.alerts, alert)
	return n.err
}

func newTestService(t *testing.T, notifier notify.Notifier) (*Service, *fakeConsumer) {
	t.Helper()

	consumer := &fakeConsumer{}
	svc := New(slog.New(slog.NewTextHandler(io.Discard, nil)), consumer, notifier)

	cleanup, err := svc.Run(context.Background())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return svc, consumer
}

func deliver(t *testing.T, c *fakeConsumer, topic string, ev any) error {
	t.Helper()

	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	handler, ok := c.handlers[topic]
	require.True(t, ok, "no handler for %s", topic)

	return handler(context.Background(), topic, payload)
}

func TestService(t *testing.T) {
	t.Run("Should register both topics and start the consumer", func(t *testing.T) {
		_, consumer := newTestService(t, &fakeNotifier{})

		assert.True(t, consumer.started)
		assert.Contains(t, consumer.handlers, TopicStockChanged)
		assert.Contains(t, consumer.handlers, TopicProductCreated)
	})

	t.Run("Should alert when stock drops to the threshold", func(t *testing.T) {
		notifier := &fakeNotifier{}
		_, consumer := newTestService(t, notifier)

		err := deliver(t, consumer, TopicStockChanged, StockChangedEvent{
			ProductID:    "p-1",
			Sku:          "W-1",
			Name:         "Widget",
			CurrentStock: 3,
			MinStock:     5,
		})
		require.NoError(t, err)

		require.Len(t, notifier.alerts, 1)
		assert.Equal(t, "W-1", notifier.alerts[0].Sku)
		assert.Equal(t, inventory.StatusLow, notifier.alerts[0].Status)
	})

	t.Run("Should alert out of stock regardless of the event status", func(t *testing.T) {
		notifier := &fakeNotifier{}
		_, consumer := newTestService(t, notifier)

		err := deliver(t, consumer, TopicStockChanged, StockChangedEvent{
			ProductID:    "p-1",
			CurrentStock: 0,
			MinStock:     0,
			Status:       "normal",
		})
		require.NoError(t, err)

		require.Len(t, notifier.alerts, 1)
		assert.Equal(t, inventory.StatusOutOfStock, notifier.alerts[0].Status)
	})

	t.Run("Should not alert for normal stock", func(t *testing.T) {
		notifier := &fakeNotifier{}
		_, consumer := newTestService(t, notifier)

		err := deliver(t, consumer, TopicStockChanged, StockChangedEvent{CurrentStock: 20, MinStock: 5})
		require.NoError(t, err)

		assert.Empty(t, notifier.alerts)
	})

	t.Run("Should return notifier errors", func(t *testing.T) {
		notifier := &fakeNotifier{err: errors.New("chat unreachable")}
		_, consumer := newTestService(t, notifier)

		err := deliver(t, consumer, TopicStockChanged, StockChangedEvent{CurrentStock: 1, MinStock: 5})
		assert.ErrorContains(t, err, "chat unreachable")
	})

	t.Run("Should reject malformed payloads", func(t *testing.T) {
		_, consumer := newTestService(t, &fakeNotifier{})

		err := consumer.handlers[TopicStockChanged](context.Background(), TopicStockChanged, []byte("{"))
		assert.ErrorContains(t, err, "unmarshal stock.changed event")
	})

	t.Run("Should accept product created events", func(t *testing.T) {
		_, consumer := newTestService(t, &fakeNotifier{})

		err := deliver(t, consumer, TopicProductCreated, ProductCreatedEvent{ProductID: "p-1", Sku: "W-1"})
		assert.NoError(t, err)
	})
}
