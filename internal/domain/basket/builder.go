// internal/domain/basket/builder.go
package basket

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-checkout/internal/domain/catalog"
)

// ErrProductUnavailable is returned when an entry references a product that is
// missing, unpublished, or has no stock left to show. The entry is dropped
// from display; callers log the drop.
var ErrProductUnavailable = errors.New("product unavailable")

// StockExceededError reports a requested quantity above the product's stock
// ceiling. The quantity is clamped, not rejected; the basket stays intact.
type StockExceededError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("requested quantity %d for product %d exceeds available %d", e.Requested, e.ProductID, e.Available)
}

// ClampCount clamps a requested count to the product's stock ceiling. A nil
// or inactive product, or a ceiling of zero, yields 0: the entry is
// effectively unavailable.
func ClampCount(count int, product *catalog.Product) int {
	if product == nil || !product.IsAvailable() {
		return 0
	}
	if count < 1 {
		count = 1
	}
	if count > product.AvailableToShow {
		count = product.AvailableToShow
	}
	return count
}

// BuildLineItem derives a priced line item from a raw entry. It returns
// ErrProductUnavailable for missing or out-of-stock products and
// pricing.ErrNoPriceData when the price history is empty; in both cases the
// caller drops the entry. All monetary math is integer arithmetic in the
// minor unit; the single floor happens at the discount multiplication.
func BuildLineItem(entry Entry, product *catalog.Product, now time.Time) (*LineItem, error) {
	quantity := ClampCount(entry.Count, product)
	if quantity == 0 {
		return nil, ErrProductUnavailable
	}

	quote, err := product.CurrentQuote(now)
	if err != nil {
		return nil, err
	}

	// The one floor happens per unit, so the same quantity split across
	// several entries sums to exactly the same totals as a single entry.
	lineSubtotal := quote.UnitPriceMinor * int64(quantity)
	lineDiscount := quote.UnitPriceMinor * int64(quote.DiscountPercent) / 100 * int64(quantity)

	return &LineItem{
		Product:             product,
		Quantity:            quantity,
		UnitPriceMinor:      quote.UnitPriceMinor,
		UnitDiscountPercent: quote.DiscountPercent,
		LineSubtotalMinor:   lineSubtotal,
		LineDiscountMinor:   lineDiscount,
		LineWeight:          product.Weight * float64(quantity),
	}, nil
}
