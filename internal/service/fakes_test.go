package service

import (
	"context"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/repository"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
)

// memStore is an in-memory record store. WithTx serialises transactions and
// restores the previous state when the callback fails.
type memStore struct {
	db.DB

	txMu sync.Mutex
	mu   sync.Mutex

	products map[uuid.UUID]model.Product
	txns     []model.StockTransaction
	outbox   []repository.CreateOutboxMsgParams
	// failOutbox makes CreateOutboxMsg fail, to exercise rollbacks.
	failOutbox error
	// lastTxOptions records the options the last WithTx was asked for.
	lastTxOptions pgx.TxOptions
}

func newMemStore() *memStore {
	return &memStore{products: make(map[uuid.UUID]model.Product)}
}

func (s *memStore) WithTx(ctx context.Context, fn func(db.DB) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.lastTxOptions = db.TxOptionsFromContext(ctx)

	s.mu.Lock()
	products := maps.Clone(s.products)
	txns := slices.Clone(s.txns)
	outbox := slices.Clone(s.outbox)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.products, s.txns, s.outbox = products, txns, outbox
		s.mu.Unlock()
		return err
	}

	return nil
}

func (s *memStore) seed(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *memStore) product(id uuid.UUID) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func (s *memStore) transactions() []model.StockTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txns)
}

func (s *memStore) outboxTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]string, 0, len(s.outbox))
	for _, m := range s.outbox {
		topics = append(topics, m.Topic)
	}
	return topics
}

type memProductRepo struct{ s *memStore }

func (r memProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r memProductRepo) CreateProduct(_ context.Context, p model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.Sku == p.Sku {
			return db.ErrDuplicate
		}
	}
	r.s.products[p.ID] = p
	return nil
}

func (r memProductRepo) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, db.ErrNotFound
	}
	return p, nil
}

func (r memProductRepo) ListProducts(context.Context) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	products := slices.Collect(maps.Values(r.s.products))
	slices.SortFunc(products, func(a, b model.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return products, nil
}

func (r memProductRepo) UpdateProduct(_ context.Context, params repository.UpdateProductParams) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[params.ID]
	if !ok {
		return model.Product{}, db.ErrNotFound
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Category != nil {
		p.Category = *params.Category
	}
	if params.Price != nil {
		p.Price = *params.Price
	}
	if params.MinStock != nil {
		p.MinStock = *params.MinStock
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	p.UpdatedAt = params.UpdatedAt
	r.s.products[p.ID] = p
	return p, nil
}

func (r memProductRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return db.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r memProductRepo) AdjustStock(_ context.Context, params repository.AdjustStockParams) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[params.ID]
	if !ok {
		return model.Product{}, db.ErrNotFound
	}
	next := int64(p.CurrentStock) + int64(params.Delta)
	if next > math.MaxInt32 || next < math.MinInt32 {
		return model.Product{}, db.Classify(&pgconn.PgError{Code: "22003", Message: "integer out of range"})
	}
	if !params.AllowNegative && p.CurrentStock+params.Delta < 0 {
		return model.Product{}, repository.ErrInsufficientStock
	}
	p.CurrentStock += params.Delta
	p.UpdatedAt = params.UpdatedAt
	r.s.products[p.ID] = p
	return p, nil
}

type memStockTxRepo struct{ s *memStore }

func (r memStockTxRepo) WithDB(db.DB) repository.StockTransactionRepository { return r }

func (r memStockTxRepo) CreateStockTransaction(_ context.Context, txn model.StockTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.txns = append(r.s.txns, txn)
	return nil
}

func (r memStockTxRepo) ListStockTransactions(_ context.Context, params repository.ListStockTransactionsParams) ([]model.StockTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.StockTransaction
	for i := len(r.s.txns) - 1; i >= 0; i-- {
		t := r.s.txns[i]
		if params.TransactionType != nil && t.TransactionType != *params.TransactionType {
			continue
		}
		if params.ProductID != nil && t.ProductID != *params.ProductID {
			continue
		}
		if params.CreatedFrom != nil && t.CreatedAt.Before(*params.CreatedFrom) {
			continue
		}
		if params.CreatedTo != nil && !t.CreatedAt.Before(*params.CreatedTo) {
			continue
		}
		out = append(out, t)
		if params.Limit > 0 && len(out) == int(params.Limit) {
			break
		}
	}
	return out, nil
}

type memOutboxRepo struct{ s *memStore }

func (r memOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r memOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failOutbox != nil {
		return r.s.failOutbox
	}
	r.s.outbox = append(r.s.outbox, params)
	return nil
}

func (r memOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r memOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

type memCategoryRepo struct {
	categories []model.Category
	err        error
}

func (r memCategoryRepo) ListCategories(context.Context) ([]model.Category, error) {
	return r.categories, r.err
}
