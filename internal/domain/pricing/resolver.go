// internal/domain/pricing/resolver.go
package pricing

import (
	"errors"
	"sort"
	"time"
)

// ErrNoPriceData is returned when a product has no price entry effective at the
// requested instant. The affected line item is excluded from aggregation.
var ErrNoPriceData = errors.New("no price data available for product")

// PricePoint is one entry in a product's append-only price history
type PricePoint struct {
	PriceMinor  int64     `json:"price_minor"` // Price in the minor currency unit
	EffectiveAt time.Time `json:"effective_at"`
}

// DiscountPoint is one entry in a product's append-only discount history.
// The single timestamp on an entry is its expiry.
type DiscountPoint struct {
	Percent   int       `json:"percent"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Quote is the resolved unit price and effective discount for a product at an instant
type Quote struct {
	UnitPriceMinor  int64 `json:"unit_price_minor"`
	DiscountPercent int   `json:"discount_percent"`
}

// Resolve computes the effective unit price and discount percent at the given
// instant. Storage order of the histories is not trusted; both are sorted before
// resolution. Resolve has no side effects.
func Resolve(prices []PricePoint, discounts []DiscountPoint, now time.Time) (Quote, error) {
	price, ok := effectivePrice(prices, now)
	if !ok {
		return Quote{}, ErrNoPriceData
	}

	return Quote{
		UnitPriceMinor:  price,
		DiscountPercent: effectiveDiscount(discounts, now),
	}, nil
}

// effectivePrice returns the price entry with the latest effective date <= now
func effectivePrice(prices []PricePoint, now time.Time) (int64, bool) {
	if len(prices) == 0 {
		return 0, false
	}

	sorted := make([]PricePoint, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveAt.Before(sorted[j].EffectiveAt)
	})

	found := false
	var price int64
	for _, p := range sorted {
		if p.EffectiveAt.After(now) {
			break
		}
		price = p.PriceMinor
		found = true
	}

	return price, found
}

// effectiveDiscount returns the latest discount entry's percent, but only while
// that entry has not expired. An expired entry never yields a residual rate.
func effectiveDiscount(discounts []DiscountPoint, now time.Time) int {
	if len(discounts) == 0 {
		return 0
	}

	latest := discounts[0]
	for _, d := range discounts[1:] {
		if d.ExpiresAt.After(latest.ExpiresAt) {
			latest = d
		}
	}

	if !latest.ExpiresAt.After(now) {
		return 0
	}

	return clampPercent(latest.Percent)
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
