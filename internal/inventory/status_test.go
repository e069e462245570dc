package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/inventory"
)

func TestClassify(t *testing.T) {
	t.Run("Should be out of stock at zero regardless of threshold", func(t *testing.T) {
		for _, minStock := range []int{0, 1, 5, 1000} {
			assert.Equal(t, inventory.StatusOutOfStock, inventory.Classify(0, minStock))
		}
	})

	t.Run("Should be low when stock is at or below threshold", func(t *testing.T) {
		for s := 1; s <= 20; s++ {
			for m := s; m <= s+5; m++ {
				assert.Equal(t, inventory.StatusLow, inventory.Classify(s, m), "s=%d m=%d", s, m)
			}
		}
	})

	t.Run("Should be normal when stock is above threshold", func(t *testing.T) {
		for s := 1; s <= 20; s++ {
			for m := 0; m < s; m++ {
				assert.Equal(t, inventory.StatusNormal, inventory.Classify(s, m), "s=%d m=%d", s, m)
			}
		}
	})

	t.Run("Should treat negative stock as out of stock", func(t *testing.T) {
		assert.Equal(t, inventory.StatusOutOfStock, inventory.Classify(-3, 5))
	})
}

func TestParseStockStatus(t *testing.T) {
	tests := []struct {
		in   string
		want inventory.StockStatus
	}{
		{"normal", inventory.StatusNormal},
		{"LOW", inventory.StatusLow},
		{"out", inventory.StatusOutOfStock},
		{" out_of_stock ", inventory.StatusOutOfStock},
	}
	for _, tt := range tests {
		got, err := inventory.ParseStockStatus(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := inventory.ParseStockStatus("plenty")
	assert.Error(t, err)
}

func TestStockStatusText(t *testing.T) {
	b, err := inventory.StatusOutOfStock.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "out_of_stock", string(b))
	assert.Equal(t, "缺货", inventory.StatusOutOfStock.Label())
	assert.Equal(t, "低库存", inventory.StatusLow.Label())
	assert.Equal(t, "正常", inventory.StatusNormal.Label())

	var s inventory.StockStatus
	require.NoError(t, s.UnmarshalText([]byte("low")))
	assert.Equal(t, inventory.StatusLow, s)
	assert.True(t, s.NeedsRestock())
	assert.False(t, inventory.StatusNormal.NeedsRestock())
}
