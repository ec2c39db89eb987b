// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/domain/basket"
	"github.com/your-org/storefront-checkout/internal/domain/discount"
)

// ErrOrderNotFound is returned when an order lookup misses
var ErrOrderNotFound = errors.New("order not found")

// Service handles order persistence
type Service struct {
	db *gorm.DB
}

// NewService creates a new order service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// CreateFromCheckout persists an order from a final aggregation pass plus the
// recipient form and any applied promo code, inside one transaction. An
// applied code is marked used as part of the same transaction.
func (s *Service) CreateFromCheckout(ctx context.Context, userID uint, agg *basket.Aggregation, recipient Recipient, method basket.ShipmentMethod, applied *discount.Applied) (*Order, error) {
	if len(agg.LineItems) == 0 {
		return nil, fmt.Errorf("cannot create an order from an empty basket")
	}

	percent := 0
	code := ""
	if applied != nil {
		percent = applied.Percent
		code = applied.Code
	}

	newOrder := Order{
		UserID:             userID,
		Status:             OrderStatusPending,
		SubtotalMinor:      agg.Totals.SubtotalMinor,
		TotalDiscountMinor: agg.Totals.TotalDiscountMinor,
		ShippingMinor:      agg.Totals.ShippingCostMinor,
		TotalMinor:         agg.Totals.TotalMinor,
		PayableMinor:       agg.Totals.FinalPayable(method, percent),
		CouponCode:         code,
		CouponPercent:      percent,
		ShipmentMethod:     string(method),
		Recipient:          recipient,
		TotalWeight:        agg.Totals.TotalWeight,
	}

	for _, item := range agg.LineItems {
		newOrder.Items = append(newOrder.Items, OrderItem{
			ProductID:       item.Product.ID,
			Title:           item.Product.Title,
			Quantity:        item.Quantity,
			UnitPriceMinor:  item.UnitPriceMinor,
			DiscountPercent: item.UnitDiscountPercent,
			LineTotalMinor:  item.LineSubtotalMinor - item.LineDiscountMinor,
			Weight:          item.LineWeight,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newOrder).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		newOrder.OrderNumber = newOrder.GenerateOrderNumber()
		if err := tx.Model(&newOrder).Update("order_number", newOrder.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to assign order number: %w", err)
		}

		if applied != nil {
			if err := tx.Model(&discount.Code{}).
				Where("user_id = ? AND code = ?", userID, applied.Code).
				Update("status", discount.CodeStatusUsed).Error; err != nil {
				return fmt.Errorf("failed to mark discount code used: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &newOrder, nil
}

// GetOrder retrieves a user's order with its items
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}
