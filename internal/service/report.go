package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/config"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/export"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/repository"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/ptr"
)

type Dashboard struct {
	inventory.Totals
	TodayInbound       int
	RecentTransactions []model.StockTransaction
	GeneratedAt        time.Time
}

type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

type ReportService interface {
	Dashboard(ctx context.Context) (Dashboard, error)
	ExportInventory(ctx context.Context, format export.Format) (ExportFile, error)
}

type reportService struct {
	db          db.DB
	productRepo repository.ProductRepository
	stockTxRepo repository.StockTransactionRepository
	cfg         config.Inventory
	now         func() time.Time
}

func NewReportService(
	db db.DB,
	productRepo repository.ProductRepository,
	stockTxRepo repository.StockTransactionRepository,
	cfg config.Inventory,
) ReportService {
	return &reportService{
		db:          db,
		productRepo: productRepo,
		stockTxRepo: stockTxRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *reportService) today() time.Time {
	return s.now().In(&s.cfg.Timezone)
}

func (s *reportService) Dashboard(ctx context.Context) (Dashboard, error) {
	today := s.today()
	start, end := inventory.DayBounds(today)

	var (
		products []model.Product
		inbound  []model.StockTransaction
		recent   []model.StockTransaction
	)
	// one snapshot for all three reads
	if err := s.db.WithTx(db.WithTxOptions(ctx, db.SnapshotRead), func(tx db.DB) error {
		var err error
		if products, err = s.productRepo.WithDB(tx).ListProducts(ctx); err != nil {
			return fmt.Errorf("product repository list products: %w", err)
		}

		if inbound, err = s.stockTxRepo.WithDB(tx).ListStockTransactions(ctx, repository.ListStockTransactionsParams{
			TransactionType: ptr.New(model.TransactionTypeIn),
			CreatedFrom:     &start,
			CreatedTo:       &end,
		}); err != nil {
			return fmt.Errorf("stock transaction repository list today inbound: %w", err)
		}

		if recent, err = s.stockTxRepo.WithDB(tx).ListStockTransactions(ctx, repository.ListStockTransactionsParams{
			Limit: int32(s.cfg.RecentLimit),
		}); err != nil {
			return fmt.Errorf("stock transaction repository list recent: %w", err)
		}

		return nil
	}); err != nil {
		return Dashboard{}, translateErr(fmt.Errorf("db with tx: %w", err))
	}

	return Dashboard{
		Totals:             inventory.ComputeTotals(products),
		TodayInbound:       inventory.ComputeTodayInbound(inbound, today),
		RecentTransactions: recent,
		GeneratedAt:        today,
	}, nil
}

func (s *reportService) ExportInventory(ctx context.Context, format export.Format) (ExportFile, error) {
	if err := format.Validate(); err != nil {
		return ExportFile{}, apperr.ValidationErr.WithMsg("format must be one of csv, xlsx").WrapParent(err)
	}

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return ExportFile{}, translateErr(fmt.Errorf("product repository list products: %w", err))
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, products); err != nil {
		return ExportFile{}, fmt.Errorf("export write %s: %w", format, err)
	}

	return ExportFile{
		Name:        export.FileName(s.cfg.ExportLabel, s.today(), format),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}
