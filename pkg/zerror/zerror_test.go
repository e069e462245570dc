package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/inventory-tracker/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

	t.Run("Should match predefined error after wrapping", func(t *testing.T) {
		parent := errors.New("no rows")
		err := fmt.Errorf("get product: %w", notFound.WrapParent(parent))

		assert.ErrorIs(t, err, notFound)
		assert.ErrorIs(t, err, parent)
	})

	t.Run("Should keep code when message is overridden", func(t *testing.T) {
		err := notFound.WithMsg("product %s not found", "p-1")

		assert.ErrorIs(t, err, notFound)
		assert.Equal(t, "product p-1 not found", err.Msg())
		assert.Equal(t, "PRODUCT_NOT_FOUND", err.Code())
	})

	t.Run("Should not match a different code", func(t *testing.T) {
		other := zerror.NewNotFound("CATEGORY_NOT_FOUND", "category not found")

		assert.NotErrorIs(t, notFound, other)
	})

	t.Run("Should extract with errors.As", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", notFound)

		var zErr zerror.ZError
		assert.True(t, errors.As(err, &zErr))
		assert.Equal(t, zerror.StatusNotFound, zErr.Status())
		assert.Equal(t, "NOT_FOUND", zErr.Status().String())
	})
}
