package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/config"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/log"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/repository"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	logger.InfoContext(ctx, "migrating inventory database",
		slog.String("host", cfg.Postgres.Host),
		slog.String("database", cfg.Postgres.DB),
	)

	if err := db.Migrate(pgxPool); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	// the categories migration seeds the defaults offered by the stock-in form
	categories, err := repository.NewCategoryRepository(db.NewClient(pgxPool)).ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("error listing categories: %w", err)
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}

	logger.InfoContext(ctx, "inventory database is up to date",
		slog.Int("category_count", len(categories)),
		slog.Any("categories", names),
	)

	return nil
}
