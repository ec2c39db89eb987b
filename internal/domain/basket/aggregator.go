// internal/domain/basket/aggregator.go
package basket

import (
	"time"

	"github.com/your-org/storefront-checkout/internal/domain/catalog"
)

// Aggregation is the result of one full aggregation pass over a basket
type Aggregation struct {
	LineItems []LineItem  `json:"line_items"`
	Totals    OrderTotals `json:"totals"`
	Dropped   []Entry     `json:"-"` // Entries excluded from the order; callers log them
}

// Aggregate runs the line-item builder over every entry in insertion order,
// drops unbuildable entries, and sums order-level totals over the full list.
// It is a pure function of its inputs plus the supplied instant.
func Aggregate(entries []Entry, products map[uint]*catalog.Product, shippingCost int64, now time.Time) Aggregation {
	agg := Aggregation{
		LineItems: make([]LineItem, 0, len(entries)),
	}

	for _, entry := range entries {
		item, err := BuildLineItem(entry, products[entry.ProductID], now)
		if err != nil {
			agg.Dropped = append(agg.Dropped, entry)
			continue
		}
		agg.LineItems = append(agg.LineItems, *item)
	}

	for _, item := range agg.LineItems {
		agg.Totals.SubtotalMinor += item.LineSubtotalMinor
		agg.Totals.TotalDiscountMinor += item.LineDiscountMinor
		agg.Totals.TotalWeight += item.LineWeight
	}

	agg.Totals.TotalMinor = agg.Totals.SubtotalMinor - agg.Totals.TotalDiscountMinor
	agg.Totals.ShippingCostMinor = shippingCost
	agg.Totals.GrandTotalMinor = agg.Totals.TotalMinor + shippingCost

	return agg
}

// Page returns a display slice of the line items. Totals are always computed
// over the full list; charging never depends on the visible page.
func (a Aggregation) Page(page, pageSize int) []LineItem {
	if pageSize <= 0 {
		return a.LineItems
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(a.LineItems) {
		return []LineItem{}
	}

	end := start + pageSize
	if end > len(a.LineItems) {
		end = len(a.LineItems)
	}

	return a.LineItems[start:end]
}
