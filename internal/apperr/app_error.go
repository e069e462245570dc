package apperr

import "github.com/tuanvumaihuynh/inventory-tracker/pkg/zerror"

const (
	ValidationErrorCode   = "VALIDATION_FAILED"
	UnauthorizedCode      = "UNAUTHORIZED"
	RouteNotFoundCode     = "ROUTE_NOT_FOUND"
	ProductNotFoundCode   = "PRODUCT_NOT_FOUND"
	InsufficientStockCode = "INSUFFICIENT_STOCK"
	SkuAlreadyExistsCode  = "SKU_ALREADY_EXISTS"
	StoreUnavailableCode  = "STORE_UNAVAILABLE"
)

var (
	ValidationErr        = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	UnauthorizedErr      = zerror.NewUnauthorized(UnauthorizedCode, "invalid bearer token")
	RouteNotFoundErr     = zerror.NewNotFound(RouteNotFoundCode, "route not found")
	ProductNotFoundErr   = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	InsufficientStockErr = zerror.NewUnprocessableEntity(InsufficientStockCode, "insufficient stock")
	SkuAlreadyExistsErr  = zerror.NewConflict(SkuAlreadyExistsCode, "sku already exists")
	StoreUnavailableErr  = zerror.NewServiceUnavailable(StoreUnavailableCode, "record store is unavailable")
)
