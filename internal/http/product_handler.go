package http

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/http/dto"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/service"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/ptr"
)

type productHandler struct {
	productSvc service.ProductService
}

func newProductHandler(productSvc service.ProductService) *productHandler {
	return &productHandler{
		productSvc: productSvc,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	var search, category, status *string
	if err := queryParam(r, "search", &search); err != nil {
		return err
	}
	if err := queryParam(r, "category", &category); err != nil {
		return err
	}
	if err := queryParam(r, "status", &status); err != nil {
		return err
	}

	filter := inventory.Filter{
		Search:   ptr.Deref(search, ""),
		Category: ptr.Deref(category, ""),
	}
	if status != nil && *status != "" {
		st, err := inventory.ParseStockStatus(*status)
		if err != nil {
			return requestError{fmt.Errorf("invalid format for parameter status: %w", err)}
		}
		filter.Status = &st
	}

	products, err := h.productSvc.ListProducts(r.Context(), filter)
	if err != nil {
		return fmt.Errorf("product service list products: %w", err)
	}

	return writeJSON(w, http.StatusOK, dto.NewProductResponses(products))
}

func (h *productHandler) RegisterProduct(w http.ResponseWriter, r *http.Request) error {
	var body dto.RegisterProductRequest
	if err := decodeJSON(w, r, &body); err != nil {
		return err
	}

	res, err := h.productSvc.RegisterProduct(r.Context(), toRegisterProductParams(body.NewProduct, body.InitialQuantity, body.StockMeta))
	if err != nil {
		return fmt.Errorf("product service register product: %w", err)
	}

	out := dto.StockChangeResponse{Product: dto.NewProductResponse(res.Product)}
	if res.Transaction != nil {
		out.Transaction = ptr.New(dto.NewTransactionResponse(*res.Transaction))
	}

	return writeJSON(w, http.StatusCreated, out)
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product: %w", err)
	}

	return writeJSON(w, http.StatusOK, dto.NewProductResponse(product))
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	var body dto.UpdateProductRequest
	if err := decodeJSON(w, r, &body); err != nil {
		return err
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), service.UpdateProductParams{
		ID:          id,
		Name:        body.Name,
		Category:    body.Category,
		Price:       body.Price,
		MinStock:    body.MinStock,
		Description: body.Description,
	})
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	return writeJSON(w, http.StatusOK, dto.NewProductResponse(product))
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func toStockMeta(m dto.StockMeta) service.StockMeta {
	return service.StockMeta{
		UnitPrice:   m.UnitPrice,
		BatchNumber: m.BatchNumber,
		Supplier:    m.Supplier,
		Operator:    m.Operator,
		Notes:       m.Notes,
	}
}

func toRegisterProductParams(p dto.NewProduct, quantity int, meta dto.StockMeta) service.RegisterProductParams {
	return service.RegisterProductParams{
		Name:            p.Name,
		Sku:             p.Sku,
		AutoSku:         p.AutoSku,
		Category:        p.Category,
		Price:           ptr.Deref(p.Price, decimal.Zero),
		MinStock:        ptr.Deref(p.MinStock, 0),
		Description:     p.Description,
		InitialQuantity: quantity,
		Meta:            toStockMeta(meta),
	}
}
