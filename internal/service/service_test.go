package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/config"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/event"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/export"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/operator"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/ptr"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/validator"
)

var fixedNow = time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)

type services struct {
	store    *memStore
	product  *productService
	stock    *stockService
	report   *reportService
	category CategoryService
}

func newServices(t *testing.T, allowNegative bool) services {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	cfg := config.Inventory{
		Timezone:           *loc,
		AllowNegativeStock: allowNegative,
		ExportLabel:        "库存数据",
		RecentLimit:        5,
	}

	store := newMemStore()
	productRepo := memProductRepo{s: store}
	stockTxRepo := memStockTxRepo{s: store}
	outboxRepo := memOutboxRepo{s: store}
	now := func() time.Time { return fixedNow }

	ps := NewProductService(store, productRepo, stockTxRepo, outboxRepo, v, cfg).(*productService)
	ps.now = now
	ss := NewStockService(store, ps, productRepo, stockTxRepo, outboxRepo, v, cfg).(*stockService)
	ss.now = now
	rs := NewReportService(store, productRepo, stockTxRepo, cfg).(*reportService)
	rs.now = now

	return services{
		store:    store,
		product:  ps,
		stock:    ss,
		report:   rs,
		category: NewCategoryService(memCategoryRepo{categories: []model.Category{{Name: "食品"}}}),
	}
}

func seedProduct(s *memStore, stock, minStock int) model.Product {
	p := model.Product{
		ID:           uuid.Must(uuid.NewV7()),
		Sku:          "SKU-" + uuid.NewString()[:8],
		Name:         "Gadget",
		Category:     "其他",
		Price:        decimal.NewFromInt(10),
		CurrentStock: stock,
		MinStock:     minStock,
		CreatedAt:    fixedNow.Add(-time.Hour),
	}
	s.seed(p)
	return p
}

func TestRegisterProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should register Widget with its initial stock-in", func(t *testing.T) {
		svc := newServices(t, false)

		res, err := svc.product.RegisterProduct(ctx, RegisterProductParams{
			Name:            "Widget",
			Sku:             "SKU001",
			Category:        "Electronics",
			Price:           decimal.RequireFromString("9.99"),
			MinStock:        5,
			InitialQuantity: 20,
		})
		require.NoError(t, err)

		assert.Equal(t, 20, res.Product.CurrentStock)
		assert.Equal(t, 20, svc.store.product(res.Product.ID).CurrentStock)
		require.NotNil(t, res.Transaction)
		assert.Equal(t, 20, res.Transaction.Quantity)
		assert.Equal(t, model.TransactionTypeIn, res.Transaction.TransactionType)
		assert.Equal(t, operator.Default, res.Transaction.Operator)

		txns := svc.store.transactions()
		require.Len(t, txns, 1)
		assert.Equal(t, res.Product.ID, txns[0].ProductID)

		assert.Equal(t, inventory.StatusNormal, inventory.Classify(res.Product.CurrentStock, res.Product.MinStock))
		assert.Equal(t, []string{event.TopicProductCreated, event.TopicStockChanged}, svc.store.outboxTopics())
	})

	t.Run("Should not record a transaction without initial quantity", func(t *testing.T) {
		svc := newServices(t, false)

		res, err := svc.product.RegisterProduct(ctx, RegisterProductParams{
			Name:     "Widget",
			Sku:      "SKU001",
			Category: "Electronics",
		})
		require.NoError(t, err)

		assert.Equal(t, 0, res.Product.CurrentStock)
		assert.Nil(t, res.Transaction)
		assert.Empty(t, svc.store.transactions())
	})

	t.Run("Should generate a SKU when requested", func(t *testing.T) {
		svc := newServices(t, false)

		res, err := svc.product.RegisterProduct(ctx, RegisterProductParams{
			Name:     "Widget",
			Category: "Electronics",
			AutoSku:  true,
		})
		require.NoError(t, err)

		assert.Regexp(t, `^SKU\d{9}$`, res.Product.Sku)
	})

	t.Run("Should reject missing required fields", func(t *testing.T) {
		svc := newServices(t, false)

		_, err := svc.product.RegisterProduct(ctx, RegisterProductParams{Name: "  ", Sku: "SKU001"})

		assert.True(t, validator.IsValidationError(err))
		assert.Empty(t, svc.store.outboxTopics())
	})

	t.Run("Should reject negative price", func(t *testing.T) {
		svc := newServices(t, false)

		_, err := svc.product.RegisterProduct(ctx, RegisterProductParams{
			Name:     "Widget",
			Sku:      "SKU001",
			Category: "Electronics",
			Price:    decimal.RequireFromString("-1"),
		})

		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("Should reject price and min stock beyond the column range", func(t *testing.T) {
		svc := newServices(t, false)

		_, err := svc.product.RegisterProduct(ctx, RegisterProductParams{
			Name:     "Widget",
			Sku:      "SKU001",
			Category: "Electronics",
			Price:    decimal.RequireFromString("1e13"),
			MinStock: 1 << 40,
		})

		assert.True(t, validator.IsValidationError(err))
		assert.Empty(t, svc.store.outboxTopics())
	})

	t.Run("Should reject duplicate SKU", func(t *testing.T) {
		svc := newServices(t, false)
		params := RegisterProductParams{Name: "Widget", Sku: "SKU001", Category: "Electronics"}

		_, err := svc.product.RegisterProduct(ctx, params)
		require.NoError(t, err)
		_, err = svc.product.RegisterProduct(ctx, params)

		assert.ErrorIs(t, err, apperr.SkuAlreadyExistsErr)
	})

	t.Run("Should leave nothing behind when the outbox write fails", func(t *testing.T) {
		svc := newServices(t, false)
		svc.store.failOutbox = errors.New("disk full")

		_, err := svc.product.RegisterProduct(ctx, RegisterProductParams{
			Name:            "Widget",
			Sku:             "SKU001",
			Category:        "Electronics",
			InitialQuantity: 20,
		})
		require.Error(t, err)

		products, err := svc.product.ListProducts(ctx, inventory.Filter{})
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.Empty(t, svc.store.transactions())
	})
}

func TestApplyStockChange(t *testing.T) {
	ctx := context.Background()

	t.Run("Should add inbound quantity and record one transaction", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 10, 5)

		change, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{
			ProductID: p.ID,
			Delta:     7,
			Meta: StockMeta{
				UnitPrice: ptr.New(decimal.RequireFromString("2.50")),
				Supplier:  "ACME",
				Operator:  "alice",
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 17, change.Product.CurrentStock)
		assert.Equal(t, 17, svc.store.product(p.ID).CurrentStock)
		assert.Equal(t, model.TransactionTypeIn, change.Transaction.TransactionType)
		assert.Equal(t, 7, change.Transaction.Quantity)
		assert.Equal(t, "alice", change.Transaction.Operator)
		assert.Equal(t, "17.5", change.Transaction.TotalPrice().String())
		assert.Len(t, svc.store.transactions(), 1)
	})

	t.Run("Should use the authenticated operator by default", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 10, 5)

		change, err := svc.stock.ApplyStockChange(operator.NewContext(ctx, "bob"), ApplyStockChangeParams{ProductID: p.ID, Delta: 1})
		require.NoError(t, err)

		assert.Equal(t, "bob", change.Transaction.Operator)
	})

	t.Run("Should not let the request body override the authenticated operator", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 10, 5)

		change, err := svc.stock.ApplyStockChange(operator.NewContext(ctx, "alice"), ApplyStockChangeParams{
			ProductID: p.ID,
			Delta:     1,
			Meta:      StockMeta{Operator: "mallory"},
		})
		require.NoError(t, err)

		assert.Equal(t, "alice", change.Transaction.Operator)
		assert.Equal(t, "alice", svc.store.transactions()[0].Operator)
	})

	t.Run("Should record outbound quantity as positive", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 10, 5)

		change, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: p.ID, Delta: -4})
		require.NoError(t, err)

		assert.Equal(t, 6, change.Product.CurrentStock)
		assert.Equal(t, model.TransactionTypeOut, change.Transaction.TransactionType)
		assert.Equal(t, 4, change.Transaction.Quantity)
		assert.Equal(t, -4, change.Transaction.SignedQuantity())
	})

	t.Run("Should reject going below zero by default", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 3, 5)

		_, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: p.ID, Delta: -4})

		assert.ErrorIs(t, err, apperr.InsufficientStockErr)
		assert.Equal(t, 3, svc.store.product(p.ID).CurrentStock)
		assert.Empty(t, svc.store.transactions())
		assert.Empty(t, svc.store.outboxTopics())
	})

	t.Run("Should allow negative stock when configured", func(t *testing.T) {
		svc := newServices(t, true)
		p := seedProduct(svc.store, 3, 5)

		change, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: p.ID, Delta: -4})
		require.NoError(t, err)

		assert.Equal(t, -1, change.Product.CurrentStock)
		assert.Equal(t, inventory.StatusOutOfStock, inventory.Classify(change.Product.CurrentStock, change.Product.MinStock))
	})

	t.Run("Should reject zero delta", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 3, 5)

		_, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: p.ID})

		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("Should reject delta beyond the stock column range", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 3, 5)

		_, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: p.ID, Delta: 1 << 40})

		assert.True(t, validator.IsValidationError(err))
		assert.Equal(t, 3, svc.store.product(p.ID).CurrentStock)
	})

	t.Run("Should report stock overflow as a validation error", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, math.MaxInt32-1, 5)

		_, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: p.ID, Delta: 5})

		assert.ErrorIs(t, err, apperr.ValidationErr)
		assert.Equal(t, math.MaxInt32-1, svc.store.product(p.ID).CurrentStock)
		assert.Empty(t, svc.store.transactions())
	})

	t.Run("Should return not found for unknown product", func(t *testing.T) {
		svc := newServices(t, false)

		_, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: uuid.New(), Delta: 1})

		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestStockIn(t *testing.T) {
	ctx := context.Background()

	t.Run("Should add stock to an existing product", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 10, 5)

		change, err := svc.stock.StockIn(ctx, StockInParams{ProductID: &p.ID, Quantity: 5})
		require.NoError(t, err)

		assert.Equal(t, 15, change.Product.CurrentStock)
	})

	t.Run("Should register a new product with the quantity", func(t *testing.T) {
		svc := newServices(t, false)

		change, err := svc.stock.StockIn(ctx, StockInParams{
			NewProduct: &RegisterProductParams{Name: "Widget", Category: "电子产品", AutoSku: true},
			Quantity:   8,
			Meta:       StockMeta{BatchNumber: "B-1"},
		})
		require.NoError(t, err)

		assert.Equal(t, 8, change.Product.CurrentStock)
		assert.Equal(t, 8, change.Transaction.Quantity)
		assert.Equal(t, "B-1", change.Transaction.BatchNumber)
	})

	t.Run("Should require exactly one target", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 10, 5)

		_, err := svc.stock.StockIn(ctx, StockInParams{Quantity: 5})
		assert.True(t, validator.IsValidationError(err))

		_, err = svc.stock.StockIn(ctx, StockInParams{
			ProductID:  &p.ID,
			NewProduct: &RegisterProductParams{Name: "Widget", Sku: "SKU9", Category: "其他"},
			Quantity:   5,
		})
		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("Should reject non-positive quantity", func(t *testing.T) {
		svc := newServices(t, false)
		p := seedProduct(svc.store, 10, 5)

		_, err := svc.stock.StockIn(ctx, StockInParams{ProductID: &p.ID, Quantity: -1})

		assert.True(t, validator.IsValidationError(err))
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, false)
	p := seedProduct(svc.store, 10, 5)

	_, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: p.ID, Delta: 3})
	require.NoError(t, err)
	_, err = svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: p.ID, Delta: -2})
	require.NoError(t, err)

	all, err := svc.stock.ListTransactions(ctx, ListTransactionsParams{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	in, err := svc.stock.ListTransactions(ctx, ListTransactionsParams{
		TransactionType: ptr.New(model.TransactionTypeIn),
		Today:           true,
	})
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, 3, in[0].Quantity)

	_, err = svc.stock.ListTransactions(ctx, ListTransactionsParams{TransactionType: ptr.New(model.TransactionType("sideways"))})
	assert.True(t, validator.IsValidationError(err))
}

func TestProductMaintenance(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, false)
	low := seedProduct(svc.store, 2, 5)
	seedProduct(svc.store, 0, 5)

	t.Run("Should filter by status", func(t *testing.T) {
		products, err := svc.product.ListProducts(ctx, inventory.Filter{Status: ptr.New(inventory.StatusLow)})
		require.NoError(t, err)

		require.Len(t, products, 1)
		assert.Equal(t, low.ID, products[0].ID)
	})

	t.Run("Should update descriptive fields only", func(t *testing.T) {
		updated, err := svc.product.UpdateProduct(ctx, UpdateProductParams{
			ID:    low.ID,
			Name:  ptr.New(" Gizmo "),
			Price: ptr.New(decimal.RequireFromString("3.456")),
		})
		require.NoError(t, err)

		assert.Equal(t, "Gizmo", updated.Name)
		assert.Equal(t, "3.46", updated.Price.String())
		assert.Equal(t, 2, updated.CurrentStock)
	})

	t.Run("Should reject empty name on update", func(t *testing.T) {
		_, err := svc.product.UpdateProduct(ctx, UpdateProductParams{ID: low.ID, Name: ptr.New("")})

		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("Should delete and then report not found", func(t *testing.T) {
		require.NoError(t, svc.product.DeleteProduct(ctx, low.ID))

		_, err := svc.product.GetProduct(ctx, low.ID)
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
		assert.ErrorIs(t, svc.product.DeleteProduct(ctx, low.ID), apperr.ProductNotFoundErr)
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, false)
	p := seedProduct(svc.store, 3, 5)

	// 23:00 and 01:00 local time around midnight of the current day in Asia/Shanghai
	svc.store.txns = append(svc.store.txns,
		model.StockTransaction{
			ID:              uuid.New(),
			ProductID:       p.ID,
			TransactionType: model.TransactionTypeIn,
			Quantity:        50,
			CreatedAt:       time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC),
		},
		model.StockTransaction{
			ID:              uuid.New(),
			ProductID:       p.ID,
			TransactionType: model.TransactionTypeIn,
			Quantity:        100,
			CreatedAt:       time.Date(2024, 2, 29, 17, 0, 0, 0, time.UTC),
		},
	)
	_, err := svc.stock.ApplyStockChange(ctx, ApplyStockChangeParams{ProductID: p.ID, Delta: 4})
	require.NoError(t, err)

	dashboard, err := svc.report.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, dashboard.ProductCount)
	assert.Equal(t, "70", dashboard.TotalValue.String())
	assert.Equal(t, 104, dashboard.TodayInbound)
	assert.Equal(t, db.SnapshotRead, svc.store.lastTxOptions)
	assert.Len(t, dashboard.RecentTransactions, 3)
	assert.Equal(t, "Asia/Shanghai", dashboard.GeneratedAt.Location().String())
}

func TestExportInventory(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, false)

	t.Run("Should name the file after the local date", func(t *testing.T) {
		file, err := svc.report.ExportInventory(ctx, export.FormatCSV)
		require.NoError(t, err)

		assert.Equal(t, "库存数据_2024-03-01.csv", file.Name)
		assert.Equal(t, "\uFEFFSKU,商品名称,类别,当前库存,单价,总价值,安全库存,创建时间\n", string(file.Body))
	})

	t.Run("Should reject unknown format", func(t *testing.T) {
		_, err := svc.report.ExportInventory(ctx, export.Format("pdf"))

		assert.ErrorIs(t, err, apperr.ValidationErr)
	})
}

func TestListCategories(t *testing.T) {
	svc := newServices(t, false)

	categories, err := svc.category.ListCategories(context.Background())
	require.NoError(t, err)

	assert.Len(t, categories, 1)
}
