// internal/domain/basket/entity.go
package basket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/domain/catalog"
)

// ShipmentMethod selects how an order is delivered. Postal shipping is prepaid
// and included in the grand total; courier and pickup are paid on delivery.
type ShipmentMethod string

const (
	ShipmentPostal  ShipmentMethod = "postal"
	ShipmentCourier ShipmentMethod = "courier"
	ShipmentPickup  ShipmentMethod = "pickup"
)

// Valid reports whether the method is one of the known shipment methods
func (m ShipmentMethod) Valid() bool {
	switch m {
	case ShipmentPostal, ShipmentCourier, ShipmentPickup:
		return true
	}
	return false
}

// Entry is a raw basket entry: a product reference plus a requested count.
// Its JSON form is the persisted anonymous-basket shape and must round-trip
// exactly: {"productId": "<id as string>", "count": <int>}.
type Entry struct {
	ProductID uint
	Count     int
}

type entryJSON struct {
	ProductID string `json:"productId"`
	Count     int    `json:"count"`
}

// MarshalJSON encodes the entry in the persisted anonymous-basket shape
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		ProductID: strconv.FormatUint(uint64(e.ProductID), 10),
		Count:     e.Count,
	})
}

// UnmarshalJSON decodes the persisted anonymous-basket shape
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := strconv.ParseUint(raw.ProductID, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid productId %q: %w", raw.ProductID, err)
	}

	e.ProductID = uint(id)
	e.Count = raw.Count
	return nil
}

// BasketItem represents a basket entry stored in the database for
// authenticated users. Insertion order (id) is the display order.
type BasketItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Count     int            `gorm:"not null;default:1" json:"count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (BasketItem) TableName() string {
	return "basket_items"
}

// Entry converts the stored row to a raw entry
func (i *BasketItem) Entry() Entry {
	return Entry{ProductID: i.ProductID, Count: i.Count}
}

// LineItem is a priced, discount-aware basket line. It is derived fresh on
// every aggregation pass and never mutated in place.
type LineItem struct {
	Product             *catalog.Product `json:"product"`
	Quantity            int              `json:"quantity"`
	UnitPriceMinor      int64            `json:"unit_price_minor"`
	UnitDiscountPercent int              `json:"unit_discount_percent"`
	LineSubtotalMinor   int64            `json:"line_subtotal_minor"`
	LineDiscountMinor   int64            `json:"line_discount_minor"`
	LineWeight          float64          `json:"line_weight"`
}

// OrderTotals holds order-level sums over the full line-item list
type OrderTotals struct {
	SubtotalMinor      int64   `json:"subtotal_minor"`       // Sum of line subtotals, pre-discount
	TotalDiscountMinor int64   `json:"total_discount_minor"` // Per-product discounts only; promo codes are layered on later
	TotalMinor         int64   `json:"total_minor"`          // Subtotal minus discount
	TotalWeight        float64 `json:"total_weight"`
	ShippingCostMinor  int64   `json:"shipping_cost_minor"`
	GrandTotalMinor    int64   `json:"grand_total_minor"` // Total plus shipping
}

// PayableBase is the single place that branches on shipment method: postal
// shipping is prepaid so the base includes it, courier and pickup pay shipping
// on delivery so the base excludes it. Both the discount engine and the
// receipt generator must derive the payable amount from this.
func (t OrderTotals) PayableBase(method ShipmentMethod) int64 {
	if method == ShipmentPostal {
		return t.GrandTotalMinor
	}
	return t.TotalMinor
}

// FinalPayable applies a promotional discount percent on top of the payable
// base, floored to the minor unit.
func (t OrderTotals) FinalPayable(method ShipmentMethod, discountPercent int) int64 {
	if discountPercent < 0 {
		discountPercent = 0
	}
	if discountPercent > 100 {
		discountPercent = 100
	}
	return t.PayableBase(method) * int64(100-discountPercent) / 100
}
