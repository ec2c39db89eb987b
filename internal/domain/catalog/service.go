// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a single product lookup misses
var ErrProductNotFound = errors.New("product not found")

// Service handles product lookups for the checkout core
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// GetProducts retrieves active products by id with their pricing histories.
// Missing or inactive ids are silently excluded from the result; callers decide
// how to treat the gaps.
func (s *Service) GetProducts(ctx context.Context, ids []uint) (map[uint]*Product, error) {
	result := make(map[uint]*Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []Product
	err := s.db.WithContext(ctx).
		Preload("PriceHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("effective_at ASC")
		}).
		Preload("DiscountHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("expires_at ASC")
		}).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	for i := range products {
		result[products[i].ID] = &products[i]
	}

	return result, nil
}

// GetProduct retrieves a single active product with its pricing histories
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	products, err := s.GetProducts(ctx, []uint{id})
	if err != nil {
		return nil, err
	}

	product, ok := products[id]
	if !ok {
		return nil, ErrProductNotFound
	}

	return product, nil
}
