// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/domain/basket"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order captures a placed order with the totals and recipient it was charged
// with. Order items carry their historical unit prices so invoices can be
// reproduced long after the live price changed.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	Status      OrderStatus `gorm:"not null;default:'pending'" json:"status"`

	// Financial information, minor currency unit
	SubtotalMinor      int64 `gorm:"not null" json:"subtotal_minor"`
	TotalDiscountMinor int64 `gorm:"default:0" json:"total_discount_minor"`
	ShippingMinor      int64 `gorm:"default:0" json:"shipping_minor"`
	TotalMinor         int64 `gorm:"not null" json:"total_minor"`
	PayableMinor       int64 `gorm:"not null" json:"payable_minor"` // After promo code, floored

	// Promo code layered on at placement time
	CouponCode    string `gorm:"size:50" json:"coupon_code"`
	CouponPercent int    `gorm:"default:0" json:"coupon_percent"`

	ShipmentMethod string    `gorm:"not null;size:20" json:"shipment_method"`
	Recipient      Recipient `gorm:"embedded;embeddedPrefix:recipient_" json:"recipient"`

	TotalWeight float64 `json:"total_weight"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is one captured line of an order
type OrderItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"not null;index" json:"order_id"`
	ProductID       uint      `gorm:"not null;index" json:"product_id"`
	Title           string    `gorm:"not null;size:255" json:"title"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	UnitPriceMinor  int64     `gorm:"not null" json:"unit_price_minor"` // Historical price at placement
	DiscountPercent int       `gorm:"default:0" json:"discount_percent"`
	LineTotalMinor  int64     `gorm:"not null" json:"line_total_minor"`
	Weight          float64   `json:"weight"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Recipient is the delivery recipient captured from the checkout session
type Recipient struct {
	Name     string `gorm:"size:100" json:"name"`
	Phone    string `gorm:"size:20" json:"phone"`
	Province string `gorm:"size:100" json:"province"`
	City     string `gorm:"size:100" json:"city"`
	Address  string `gorm:"size:255" json:"address"`
	PostCode string `gorm:"size:20" json:"post_code"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// Totals reconstructs the order-level totals the order was charged with
func (o *Order) Totals() basket.OrderTotals {
	return basket.OrderTotals{
		SubtotalMinor:      o.SubtotalMinor,
		TotalDiscountMinor: o.TotalDiscountMinor,
		TotalMinor:         o.TotalMinor,
		ShippingCostMinor:  o.ShippingMinor,
		GrandTotalMinor:    o.TotalMinor + o.ShippingMinor,
		TotalWeight:        o.TotalWeight,
	}
}

// GenerateOrderNumber generates a unique order number
func (o *Order) GenerateOrderNumber() string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", o.CreatedAt.Format("20060102"), o.ID)
}
