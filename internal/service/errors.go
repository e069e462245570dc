package service

import (
	"errors"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/repository"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/validator"
)

// translateErr maps storage and validation failures onto the application
// errors the HTTP layer knows how to report. Unknown errors pass through.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case validator.IsValidationError(err):
		return err
	case errors.Is(err, db.ErrNotFound):
		return apperr.ProductNotFoundErr.WrapParent(err)
	case errors.Is(err, db.ErrDuplicate):
		return apperr.SkuAlreadyExistsErr.WrapParent(err)
	case errors.Is(err, repository.ErrInsufficientStock):
		return apperr.InsufficientStockErr.WrapParent(err)
	case errors.Is(err, db.ErrOutOfRange):
		return apperr.ValidationErr.WithMsg("numeric value out of range").WrapParent(err)
	case errors.Is(err, db.ErrUnavailable):
		return apperr.StoreUnavailableErr.WrapParent(err)
	default:
		return err
	}
}
