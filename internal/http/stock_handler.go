package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/http/dto"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/service"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/ptr"
)

type stockHandler struct {
	stockSvc service.StockService
}

func newStockHandler(stockSvc service.StockService) *stockHandler {
	return &stockHandler{
		stockSvc: stockSvc,
	}
}

func (h *stockHandler) ApplyStockChange(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	var body dto.StockChangeRequest
	if err := decodeJSON(w, r, &body); err != nil {
		return err
	}

	change, err := h.stockSvc.ApplyStockChange(r.Context(), service.ApplyStockChangeParams{
		ProductID: id,
		Delta:     body.Delta,
		Meta:      toStockMeta(body.StockMeta),
	})
	if err != nil {
		return fmt.Errorf("stock service apply stock change: %w", err)
	}

	return writeJSON(w, http.StatusCreated, toStockChangeResponse(change))
}

func (h *stockHandler) StockIn(w http.ResponseWriter, r *http.Request) error {
	var body dto.StockInRequest
	if err := decodeJSON(w, r, &body); err != nil {
		return err
	}

	params := service.StockInParams{
		ProductID: body.ProductID,
		Quantity:  body.Quantity,
		Meta:      toStockMeta(body.StockMeta),
	}
	if body.NewProduct != nil {
		params.NewProduct = ptr.New(toRegisterProductParams(*body.NewProduct, body.Quantity, body.StockMeta))
	}

	change, err := h.stockSvc.StockIn(r.Context(), params)
	if err != nil {
		return fmt.Errorf("stock service stock in: %w", err)
	}

	return writeJSON(w, http.StatusCreated, toStockChangeResponse(change))
}

func (h *stockHandler) ListTransactions(w http.ResponseWriter, r *http.Request) error {
	var (
		txType    *string
		productID *uuid.UUID
		today     *bool
		limit     *int
	)
	if err := queryParam(r, "type", &txType); err != nil {
		return err
	}
	if err := queryParam(r, "product_id", &productID); err != nil {
		return err
	}
	if err := queryParam(r, "today", &today); err != nil {
		return err
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		return err
	}

	params := service.ListTransactionsParams{
		ProductID: productID,
		Today:     ptr.Deref(today, false),
		Limit:     ptr.Deref(limit, 0),
	}
	if txType != nil && *txType != "" {
		params.TransactionType = ptr.New(model.TransactionType(*txType))
	}

	txns, err := h.stockSvc.ListTransactions(r.Context(), params)
	if err != nil {
		return fmt.Errorf("stock service list transactions: %w", err)
	}

	return writeJSON(w, http.StatusOK, dto.NewTransactionResponses(txns))
}

func toStockChangeResponse(change service.StockChange) dto.StockChangeResponse {
	return dto.StockChangeResponse{
		Product:     dto.NewProductResponse(change.Product),
		Transaction: ptr.New(dto.NewTransactionResponse(change.Transaction)),
	}
}
