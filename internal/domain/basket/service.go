// internal/domain/basket/service.go
package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/domain/catalog"
	"github.com/your-org/storefront-checkout/internal/domain/shipping"
)

const guestBasketTTL = 30 * 24 * time.Hour

// Service handles basket state and aggregation. Anonymous baskets live in
// Redis as small JSON blobs keyed by a basket token; authenticated baskets
// live in the database per user. The server basket wins when a session is
// authenticated.
type Service struct {
	db       *gorm.DB
	redis    *redis.Client
	catalog  *catalog.Service
	shipping *shipping.Service
	logger   *logrus.Logger
}

// NewService creates a new basket service
func NewService(db *gorm.DB, redisClient *redis.Client, catalogService *catalog.Service, shippingService *shipping.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:       db,
		redis:    redisClient,
		catalog:  catalogService,
		shipping: shippingService,
		logger:   logger,
	}
}

// MutationResult describes the outcome of one basket mutation. Clamped is set
// when the requested quantity was reduced to the stock ceiling; the basket is
// never corrupted by an over-request.
type MutationResult struct {
	ProductID uint `json:"product_id"`
	Count     int  `json:"count"`
	Clamped   bool `json:"clamped"`
	Available int  `json:"available"`
}

// Entries returns the authoritative raw entries: the server basket for an
// authenticated user, the anonymous blob otherwise.
func (s *Service) Entries(ctx context.Context, userID *uint, token string) ([]Entry, error) {
	if userID != nil {
		var items []BasketItem
		err := s.db.WithContext(ctx).Where("user_id = ?", *userID).Order("id ASC").Find(&items).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve basket: %w", err)
		}

		entries := make([]Entry, len(items))
		for i, item := range items {
			entries[i] = item.Entry()
		}
		return entries, nil
	}

	return s.guestEntries(ctx, token)
}

// AddItem adds a quantity delta to the basket. The call is self-contained: it
// carries only the delta, never a previously fetched snapshot, so last-write
// ordering in storage is sufficient against racing mutations.
func (s *Service) AddItem(ctx context.Context, userID *uint, token string, productID uint, quantity int) (*MutationResult, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsAvailable() {
		return nil, ErrProductUnavailable
	}

	if userID != nil {
		return s.addToUserBasket(ctx, *userID, product, quantity)
	}
	return s.addToGuestBasket(ctx, token, product, quantity)
}

// SetItemCount sets an item's count to an absolute value, clamped to the
// stock ceiling. A count of zero removes the entry.
func (s *Service) SetItemCount(ctx context.Context, userID *uint, token string, productID uint, count int) (*MutationResult, error) {
	if count < 0 {
		return nil, fmt.Errorf("count cannot be negative")
	}
	if count == 0 {
		if err := s.RemoveItem(ctx, userID, token, productID); err != nil {
			return nil, err
		}
		return &MutationResult{ProductID: productID, Count: 0}, nil
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}

	clamped := ClampCount(count, product)
	if clamped == 0 {
		if err := s.RemoveItem(ctx, userID, token, productID); err != nil {
			return nil, err
		}
		return nil, ErrProductUnavailable
	}

	if userID != nil {
		err = s.db.WithContext(ctx).Model(&BasketItem{}).
			Where("user_id = ? AND product_id = ?", *userID, productID).
			Update("count", clamped).Error
	} else {
		err = s.setGuestCount(ctx, token, productID, clamped)
	}
	if err != nil {
		return nil, err
	}

	return &MutationResult{
		ProductID: productID,
		Count:     clamped,
		Clamped:   clamped < count,
		Available: product.AvailableToShow,
	}, nil
}

// RemoveItem removes an entry from the basket
func (s *Service) RemoveItem(ctx context.Context, userID *uint, token string, productID uint) error {
	if userID != nil {
		return s.db.WithContext(ctx).
			Where("user_id = ? AND product_id = ?", *userID, productID).
			Delete(&BasketItem{}).Error
	}

	entries, err := s.guestEntries(ctx, token)
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	return s.saveGuestEntries(ctx, token, kept)
}

// Clear removes every entry from the basket
func (s *Service) Clear(ctx context.Context, userID *uint, token string) error {
	if userID != nil {
		return s.db.WithContext(ctx).Where("user_id = ?", *userID).Delete(&BasketItem{}).Error
	}
	return s.redis.Del(ctx, guestBasketKey(token)).Err()
}

// Aggregate resolves the authoritative basket into line items and totals.
// Unresolvable entries are dropped from the result and logged, never aborting
// the whole pass.
func (s *Service) Aggregate(ctx context.Context, userID *uint, token string, now time.Time) (*Aggregation, error) {
	entries, err := s.Entries(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(entries))
	seen := make(map[uint]bool, len(entries))
	for _, e := range entries {
		if !seen[e.ProductID] {
			seen[e.ProductID] = true
			ids = append(ids, e.ProductID)
		}
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	agg := Aggregate(entries, products, s.shipping.FlatRate(), now)

	for _, dropped := range agg.Dropped {
		s.logger.WithFields(logrus.Fields{
			"product_id": dropped.ProductID,
			"count":      dropped.Count,
		}).Warn("Dropped unresolvable basket entry")
	}

	return &agg, nil
}

// Private helper methods

func (s *Service) addToUserBasket(ctx context.Context, userID uint, product *catalog.Product, quantity int) (*MutationResult, error) {
	var existing BasketItem
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, product.ID).
		First(&existing)

	requested := quantity
	if result.Error == nil {
		requested = existing.Count + quantity
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to read basket item: %w", result.Error)
	}

	clamped := ClampCount(requested, product)

	if result.Error == nil {
		existing.Count = clamped
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
	} else {
		item := BasketItem{UserID: userID, ProductID: product.ID, Count: clamped}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
	}

	return &MutationResult{
		ProductID: product.ID,
		Count:     clamped,
		Clamped:   clamped < requested,
		Available: product.AvailableToShow,
	}, nil
}

func (s *Service) addToGuestBasket(ctx context.Context, token string, product *catalog.Product, quantity int) (*MutationResult, error) {
	entries, err := s.guestEntries(ctx, token)
	if err != nil {
		return nil, err
	}

	requested := quantity
	found := false
	for i := range entries {
		if entries[i].ProductID == product.ID {
			requested = entries[i].Count + quantity
			entries[i].Count = ClampCount(requested, product)
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, Entry{ProductID: product.ID, Count: ClampCount(quantity, product)})
	}

	if err := s.saveGuestEntries(ctx, token, entries); err != nil {
		return nil, err
	}

	clamped := ClampCount(requested, product)
	return &MutationResult{
		ProductID: product.ID,
		Count:     clamped,
		Clamped:   clamped < requested,
		Available: product.AvailableToShow,
	}, nil
}

func (s *Service) setGuestCount(ctx context.Context, token string, productID uint, count int) error {
	entries, err := s.guestEntries(ctx, token)
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].ProductID == productID {
			entries[i].Count = count
			return s.saveGuestEntries(ctx, token, entries)
		}
	}

	return fmt.Errorf("item not found in basket")
}

func (s *Service) guestEntries(ctx context.Context, token string) ([]Entry, error) {
	if token == "" {
		return nil, fmt.Errorf("basket token required for anonymous basket")
	}

	data, err := s.redis.Get(ctx, guestBasketKey(token)).Result()
	if err == redis.Nil {
		return []Entry{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load anonymous basket: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, fmt.Errorf("corrupt anonymous basket: %w", err)
	}

	return entries, nil
}

func (s *Service) saveGuestEntries(ctx context.Context, token string, entries []Entry) error {
	if token == "" {
		return fmt.Errorf("basket token required for anonymous basket")
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	return s.redis.Set(ctx, guestBasketKey(token), data, guestBasketTTL).Err()
}

func guestBasketKey(token string) string {
	return fmt.Sprintf("basket:token:%s", token)
}
