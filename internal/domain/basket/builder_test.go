package basket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-checkout/internal/domain/catalog"
	"github.com/your-org/storefront-checkout/internal/domain/pricing"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testProduct(id uint, priceMinor int64, discountPercent, availableToShow int, weight float64) *catalog.Product {
	p := &catalog.Product{
		ID:              id,
		Title:           "Test Product",
		AvailableToShow: availableToShow,
		Weight:          weight,
		IsActive:        true,
		PriceHistory: []catalog.PriceEntry{
			{ProductID: id, PriceMinor: priceMinor, EffectiveAt: now.Add(-24 * time.Hour)},
		},
	}
	if discountPercent > 0 {
		p.DiscountHistory = []catalog.DiscountEntry{
			{ProductID: id, Percent: discountPercent, ExpiresAt: now.Add(time.Hour)},
		}
	}
	return p
}

func TestBuildLineItemConcreteScenario(t *testing.T) {
	// price 100000, discount 10% expiring in 1h, quantity 2
	product := testProduct(1, 100000, 10, 10, 500)

	item, err := BuildLineItem(Entry{ProductID: 1, Count: 2}, product, now)
	require.NoError(t, err)

	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, int64(100000), item.UnitPriceMinor)
	assert.Equal(t, 10, item.UnitDiscountPercent)
	assert.Equal(t, int64(200000), item.LineSubtotalMinor)
	assert.Equal(t, int64(20000), item.LineDiscountMinor)
	assert.Equal(t, 1000.0, item.LineWeight)
}

func TestBuildLineItemClampsToStockCeiling(t *testing.T) {
	product := testProduct(1, 100000, 0, 1, 0)

	item, err := BuildLineItem(Entry{ProductID: 1, Count: 5}, product, now)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestBuildLineItemRaisesZeroCount(t *testing.T) {
	product := testProduct(1, 100000, 0, 10, 0)

	item, err := BuildLineItem(Entry{ProductID: 1, Count: 0}, product, now)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestBuildLineItemUnavailable(t *testing.T) {
	t.Run("missing product", func(t *testing.T) {
		_, err := BuildLineItem(Entry{ProductID: 1, Count: 1}, nil, now)
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("zero stock ceiling", func(t *testing.T) {
		product := testProduct(1, 100000, 0, 0, 0)
		_, err := BuildLineItem(Entry{ProductID: 1, Count: 1}, product, now)
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("inactive product", func(t *testing.T) {
		product := testProduct(1, 100000, 0, 5, 0)
		product.IsActive = false
		_, err := BuildLineItem(Entry{ProductID: 1, Count: 1}, product, now)
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})
}

func TestBuildLineItemNoPriceData(t *testing.T) {
	product := testProduct(1, 100000, 0, 5, 0)
	product.PriceHistory = nil

	_, err := BuildLineItem(Entry{ProductID: 1, Count: 1}, product, now)
	assert.ErrorIs(t, err, pricing.ErrNoPriceData)
}

func TestBuildLineItemExpiredDiscount(t *testing.T) {
	product := testProduct(1, 100000, 0, 5, 0)
	product.DiscountHistory = []catalog.DiscountEntry{
		{ProductID: 1, Percent: 10, ExpiresAt: now.Add(-time.Minute)},
	}

	item, err := BuildLineItem(Entry{ProductID: 1, Count: 2}, product, now)
	require.NoError(t, err)
	assert.Equal(t, 0, item.UnitDiscountPercent)
	assert.Equal(t, int64(0), item.LineDiscountMinor)
}
